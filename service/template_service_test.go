package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/service"
)

func newTemplateService(t *testing.T, templates *memTemplates, packs *memPacks) *service.TemplateService {
	t.Helper()
	return service.NewTemplateService(
		service.TemplateWithStore(templates),
		service.TemplateWithProfileStore(&memProfiles{profile: &models.ContractorProfile{FirmName: "Sharma Constructions"}}),
		service.TemplateWithPackStore(packs),
		service.TemplateWithLibrary(defaultLibrary(t)),
		service.TemplateWithClock(clock),
	)
}

func TestSaveTemplateMigratesAndWarns(t *testing.T) {
	store := newMemTemplates()
	svc := newTemplateService(t, store, newMemPacks())

	res, err := svc.SaveTemplate(context.Background(), service.SaveTemplateRequest{
		Owner: owner,
		Name:  " Cover letter ",
		Body:  "<p>{{firmName}} {{field:Tender.Number}} {{field:custom.thing}}</p>",
	})
	require.NoError(t, err)

	tpl := res.Template
	_, err = uuid.Parse(tpl.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Cover letter", tpl.Name)
	assert.Equal(t, models.KindTemplate, tpl.Kind)
	assert.Equal(t, "<p>{{field:contractor.firmname}} {{field:tender.number}} {{field:custom.thing}}</p>", tpl.Body)
	assert.Equal(t, 2, res.Migration.Total)
	assert.Equal(t, []placeholder.FieldKey{"custom.thing"}, res.UnknownKeys)
	assert.Equal(t, fixedNow, tpl.CreatedAt)
	assert.Contains(t, store.templates, tpl.ID)
}

func TestSaveTemplateRejectsInvalidTokens(t *testing.T) {
	store := newMemTemplates()
	svc := newTemplateService(t, store, newMemPacks())

	_, err := svc.SaveTemplate(context.Background(), service.SaveTemplateRequest{
		Owner: owner,
		Name:  "Broken",
		Body:  "<p>{{field:}} and {field:contractor.pan}</p>",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, placeholder.ErrInvalidToken)
	var tokenErr *placeholder.InvalidTokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.NotEmpty(t, tokenErr.Tokens)
	assert.Empty(t, store.templates)
}

func TestSaveTemplateRequestChecks(t *testing.T) {
	svc := newTemplateService(t, newMemTemplates(), newMemPacks())
	ctx := context.Background()

	_, err := svc.SaveTemplate(ctx, service.SaveTemplateRequest{Owner: owner, Name: "  "})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = svc.SaveTemplate(ctx, service.SaveTemplateRequest{Owner: owner, Name: "x", Kind: "letter"})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = svc.SaveTemplate(ctx, service.SaveTemplateRequest{Owner: owner, ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)
}

func TestSaveTemplateUpdateKeepsCreatedAt(t *testing.T) {
	created := fixedNow.Add(-48 * time.Hour)
	store := newMemTemplates(models.Template{ID: "cover", YojID: owner, Name: "Cover", Body: "old", CreatedAt: created})
	svc := newTemplateService(t, store, newMemPacks())

	res, err := svc.SaveTemplate(context.Background(), service.SaveTemplateRequest{
		Owner: owner, ID: "cover", Name: "Cover v2", Kind: models.KindAnnexure, Body: "<p>new</p>", ChecklistItemID: "cover-letter",
	})
	require.NoError(t, err)
	assert.Equal(t, created, res.Template.CreatedAt)
	assert.Equal(t, fixedNow, res.Template.UpdatedAt)
	assert.Equal(t, "Cover v2", store.templates["cover"].Name)
	assert.Equal(t, models.KindAnnexure, store.templates["cover"].Kind)
}

func TestPreviewLibraryTemplateAgainstPack(t *testing.T) {
	p := tenderPack()
	svc := newTemplateService(t, newMemTemplates(), newMemPacks(p))

	res, err := svc.PreviewTemplate(context.Background(), service.PreviewTemplateRequest{
		Owner: owner, TemplateID: "annex-undertaking", PackID: &p.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "of Sharma Constructions")
	assert.Contains(t, res.HTML, "tender no. RD/2026/44")
	assert.Contains(t, res.MissingFields, "bid.emdmode")
	assert.Empty(t, res.Validation.InvalidTokens)
	assert.Empty(t, res.Validation.UnknownKeys)
}

func TestPreviewBodyWithTables(t *testing.T) {
	svc := newTemplateService(t, newMemTemplates(), newMemPacks())

	res, err := svc.PreviewTemplate(context.Background(), service.PreviewTemplateRequest{
		Owner: owner,
		Body:  "<b>{{firmName}}</b><table>{{field:table:itemslist}}</table>",
		Tables: map[string]placeholder.TableRows{
			"itemslist": {{"description": "Cement", "quantity": "10", "unit": "bag"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"<b>Sharma Constructions</b><table><tr><td>1</td><td>Cement</td><td>10</td><td>bag</td><td></td><td></td></tr></table>",
		res.HTML)
	assert.Empty(t, res.MissingFields)
}

func TestPreviewErrors(t *testing.T) {
	svc := newTemplateService(t, newMemTemplates(), newMemPacks())
	ctx := context.Background()

	_, err := svc.PreviewTemplate(ctx, service.PreviewTemplateRequest{Owner: owner, TemplateID: "nope"})
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)

	id := uuid.New()
	_, err = svc.PreviewTemplate(ctx, service.PreviewTemplateRequest{Owner: owner, TemplateID: "annex-machinery", PackID: &id})
	assert.ErrorIs(t, err, service.ErrPackNotFound)
}

func TestListTemplatesIncludesLibrary(t *testing.T) {
	store := newMemTemplates(models.Template{ID: "annex-machinery", YojID: owner, Name: "My machinery", Kind: models.KindAnnexure})
	svc := newTemplateService(t, store, newMemPacks())

	list, err := svc.ListTemplates(context.Background(), owner)
	require.NoError(t, err)
	lib := defaultLibrary(t)
	assert.Len(t, list, len(lib.Annexures))
	assert.Equal(t, "My machinery", list[0].Name)
}

func TestDeleteTemplate(t *testing.T) {
	store := newMemTemplates(models.Template{ID: "cover", YojID: owner, Name: "Cover"})
	svc := newTemplateService(t, store, newMemPacks())
	ctx := context.Background()

	require.NoError(t, svc.DeleteTemplate(ctx, service.GetTemplateRequest{Owner: owner, ID: "cover"}))
	assert.Empty(t, store.templates)

	err := svc.DeleteTemplate(ctx, service.GetTemplateRequest{Owner: owner, ID: "annex-machinery"})
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)
}
