package assembler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/assembler"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

func sampleInputs() assembler.Inputs {
	return assembler.Inputs{
		Profile: models.ContractorProfile{YojID: "yoj-42", FirmName: "Sharma & Sons", GSTIN: "27AAAPL1234C1ZV"},
		Memory:  map[string]string{"bill.amount": "125000"},
	}
}

func sampleTemplates() []models.Template {
	return []models.Template{
		{
			ID:              "annex-a",
			Name:            "Annexure A",
			Kind:            models.KindAnnexure,
			ChecklistItemID: "gst",
			Body:            "<p>{{field:contractor.firmName}} / {{field:contractor.gstin}} / {{field:bill.amountText}}</p>",
		},
		{
			ID:              "cover",
			Name:            "Cover letter",
			Kind:            models.KindTemplate,
			ChecklistItemID: "form-a",
			Body:            "<h1>{{field:pack.title}}</h1><p>{{field:tender.number}}</p>",
		},
		{
			ID:   "boq",
			Name: "Bill of quantities",
			Kind: models.KindTemplate,
			Body: "<table>{{field:table:itemslist}}</table>",
		},
	}
}

func TestGenerateAnnexures(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.AnnexureList = []string{"annex-a", "annex-z"}

	out, res, err := a.GenerateAnnexures(p, sampleInputs(), sampleTemplates())
	require.NoError(t, err)

	require.Len(t, res.Generated, 1)
	assert.Equal(t, []string{"annex-z"}, res.NotFound)
	doc := res.Generated[0]
	assert.Equal(t, "<p>Sharma &amp; Sons / 27AAAPL1234C1ZV / </p>", doc.RenderedHTML)
	assert.Equal(t, []string{"bill.amountText"}, doc.MissingFields)

	require.Len(t, out.GeneratedAnnexures, 1)
	assert.Equal(t, models.ItemGenerated, out.Checklist[1].Status)
	assert.Equal(t, later, out.UpdatedAt)
	assert.Empty(t, p.GeneratedAnnexures)

	// regenerating replaces rather than appends
	again, _, err := a.GenerateAnnexures(out, sampleInputs(), sampleTemplates())
	require.NoError(t, err)
	assert.Len(t, again.GeneratedAnnexures, 1)
}

func TestGenerateAnnexuresNothingListed(t *testing.T) {
	a := newAssembler()
	p := samplePack()

	out, _, err := a.GenerateAnnexures(p, sampleInputs(), sampleTemplates())
	require.ErrorIs(t, err, assembler.ErrNothingToGenerate)
	assert.Equal(t, created, out.UpdatedAt)
}

func TestGenerateAnnexuresNoneResolved(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.AnnexureList = []string{"annex-z"}

	out, res, err := a.GenerateAnnexures(p, sampleInputs(), sampleTemplates())
	require.ErrorIs(t, err, assembler.ErrTemplateNotFound)
	assert.Equal(t, []string{"annex-z"}, res.NotFound)
	assert.Empty(t, out.GeneratedAnnexures)
}

func TestGenerateTemplates(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.Tables = models.TableData{
		"itemslist": {{"description": "Excavation", "quantity": "40", "unit": "cum"}},
	}
	w := &memWriter{}

	out, generated, err := a.GenerateTemplates(context.Background(), p, sampleInputs(), sampleTemplates(), w)
	require.NoError(t, err)

	require.Len(t, generated, 2)
	assert.Equal(t, "cover", generated[0].TplID)
	assert.Equal(t, "boq", generated[1].TplID)
	assert.Empty(t, generated[0].MissingFields)

	coverKey := assembler.GeneratedKey(p, "cover")
	assert.Equal(t, "yoj-42/packs/"+p.ID.String()+"/generated/cover.html", coverKey)
	assert.Equal(t, "<h1>Construction of CC road</h1><p>PWD/2026/118</p>", w.files[coverKey])
	assert.Contains(t, w.files[assembler.GeneratedKey(p, "boq")], "<td>Excavation</td>")

	// form-a is already done and must not regress to generated
	assert.Equal(t, models.ItemDone, out.Checklist[2].Status)
	assert.Len(t, out.GeneratedTemplates, 2)

	again, _, err := a.GenerateTemplates(context.Background(), out, sampleInputs(), sampleTemplates(), w)
	require.NoError(t, err)
	assert.Len(t, again.GeneratedTemplates, 2)
}

func TestGenerateTemplatesSelection(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.TemplateIDs = []string{"boq", "annex-a", "missing"}

	_, generated, err := a.GenerateTemplates(context.Background(), p, sampleInputs(), sampleTemplates(), &memWriter{})
	require.NoError(t, err)
	require.Len(t, generated, 1)
	assert.Equal(t, "boq", generated[0].TplID)
	assert.Equal(t, []string{"table:itemslist"}, generated[0].MissingFields)
}

func TestGenerateTemplatesWriteFailure(t *testing.T) {
	a := newAssembler()
	p := samplePack()

	out, generated, err := a.GenerateTemplates(context.Background(), p, sampleInputs(), sampleTemplates(), &memWriter{fail: true})
	require.Error(t, err)
	assert.Nil(t, generated)
	assert.Empty(t, out.GeneratedTemplates)
	assert.Equal(t, created, out.UpdatedAt)
}

func TestGenerateTemplatesNoneApplicable(t *testing.T) {
	a := newAssembler()
	annexOnly := []models.Template{{ID: "annex-a", Kind: models.KindAnnexure, Body: "x"}}

	_, _, err := a.GenerateTemplates(context.Background(), samplePack(), sampleInputs(), annexOnly, &memWriter{})
	require.ErrorIs(t, err, assembler.ErrNothingToGenerate)
}

func TestGenerateDocument(t *testing.T) {
	a := newAssembler()
	w := &memWriter{}
	tpl := sampleTemplates()[0]

	out, doc, err := a.GenerateDocument(context.Background(), samplePack(), sampleInputs(), tpl, w)
	require.NoError(t, err)
	assert.Equal(t, assembler.GeneratedKey(out, "doc-annex-a"), doc.StoredPath)
	assert.Equal(t, doc.RenderedHTML, w.files[doc.StoredPath])
	require.Len(t, out.GeneratedDocs, 1)
}

func TestPackCatalog(t *testing.T) {
	tpl := sampleTemplates()[0]
	tpl.Fields = []placeholder.FieldDescriptor{{Key: "contractor.gstin", Kind: placeholder.KindText, MaxLength: 15}}

	c := assembler.PackCatalog(nil, tpl, sampleTemplates()[2])

	d, ok := c.Lookup("contractor.gstin")
	require.True(t, ok)
	assert.Equal(t, 15, d.MaxLength)
	assert.True(t, c.Has("bill.amounttext"))
	assert.True(t, c.Has(placeholder.TableKey("itemslist")))
}
