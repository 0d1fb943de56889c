package assembler_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/assembler"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

var (
	created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later   = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
)

func newAssembler() *assembler.Assembler {
	return assembler.New(assembler.WithClock(func() time.Time { return later }))
}

func samplePack() models.Pack {
	return models.Pack{
		ID:       uuid.MustParse("7b0c5a52-9f0e-4c55-8a53-1f4a2b5e0c11"),
		YojID:    "yoj-42",
		Title:    "Construction of CC road",
		TenderNo: "PWD/2026/118",
		Checklist: []models.ChecklistItem{
			{ItemID: "emd", Title: "EMD receipt", Required: true, Status: models.ItemPending},
			{ItemID: "gst", Title: "GST certificate", Required: true, Status: models.ItemPending},
			{ItemID: "form-a", Title: "Annexure A", Required: true, Status: models.ItemDone, TemplateID: "annex-a"},
			{ItemID: "photo", Title: "Site photos", Required: false, Status: models.ItemPending},
		},
		Items: []models.PackItem{
			{ItemID: "emd", Title: "EMD receipt", Status: models.ItemPending},
			{ItemID: "gst", Title: "GST certificate", Status: models.ItemPending},
			{ItemID: "form-a", Title: "Annexure A", Status: models.ItemDone},
		},
		FieldOverrides: map[string]string{},
		FieldRegistry:  map[string]string{},
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

type memWriter struct {
	files map[string]string
	fail  bool
}

func (w *memWriter) Put(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	if w.fail {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if w.files == nil {
		w.files = make(map[string]string)
	}
	w.files[key] = string(b)
	return key, nil
}

func TestApplyChecklistToggle(t *testing.T) {
	a := newAssembler()
	p := samplePack()

	out, err := a.ApplyChecklistToggle(p, "emd", models.ItemDone)
	require.NoError(t, err)
	assert.Equal(t, models.ItemDone, out.Checklist[0].Status)
	assert.Equal(t, models.ItemDone, out.Items[0].Status)
	assert.Equal(t, later, out.UpdatedAt)

	// input untouched
	assert.Equal(t, models.ItemPending, p.Checklist[0].Status)
	assert.Equal(t, created, p.UpdatedAt)

	back, err := a.ApplyChecklistToggle(out, "emd", models.ItemPending)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPending, back.Checklist[0].Status)
}

func TestApplyChecklistToggleUnknownItem(t *testing.T) {
	a := newAssembler()
	p := samplePack()

	out, err := a.ApplyChecklistToggle(p, "does-not-exist", models.ItemDone)

	require.ErrorIs(t, err, assembler.ErrItemNotFound)
	assert.Equal(t, created, out.UpdatedAt)
	assert.Equal(t, p.Checklist, out.Checklist)
}

func TestApplyChecklistToggleRejectsWideStatus(t *testing.T) {
	a := newAssembler()
	_, err := a.ApplyChecklistToggle(samplePack(), "emd", models.ItemGenerated)
	require.ErrorIs(t, err, assembler.ErrInvalidStatus)

	out, err := a.SetItemStatus(samplePack(), "emd", models.ItemUploaded)
	require.NoError(t, err)
	assert.Equal(t, models.ItemUploaded, out.Items[0].Status)

	_, err = a.SetItemStatus(samplePack(), "emd", "archived")
	require.ErrorIs(t, err, assembler.ErrInvalidStatus)
}

func TestToggleSameStatusIsNoop(t *testing.T) {
	a := newAssembler()
	out, err := a.ApplyChecklistToggle(samplePack(), "form-a", models.ItemDone)
	require.NoError(t, err)
	assert.Equal(t, created, out.UpdatedAt)
}

func choiceCatalog() *placeholder.Catalog {
	return placeholder.NewCatalog(
		placeholder.FieldDescriptor{Key: "firm.type", Kind: placeholder.KindChoice, Choices: []string{"Proprietorship", "Partnership", "Company"}},
		placeholder.FieldDescriptor{Key: "work.name", Kind: placeholder.KindText, MaxLength: 12},
		placeholder.FieldDescriptor{Key: "contractor.address", Kind: placeholder.KindText},
		placeholder.FieldDescriptor{Key: "itemslist", Kind: placeholder.KindTable},
	)
}

func TestSetChoiceField(t *testing.T) {
	a := newAssembler()
	p := samplePack()

	out, changed, err := a.SetChoiceField(p, "Firm.Type", "partnership", choiceCatalog())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Partnership", out.FieldRegistry["firm.type"])
	require.Len(t, out.Audit, 1)
	assert.Equal(t, "field.choice", out.Audit[0].Action)
	assert.Equal(t, "Partnership", out.Audit[0].To)

	again, changed, err := a.SetChoiceField(out, "firm.type", "PARTNERSHIP", choiceCatalog())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, again.Audit, 1)
}

func TestSetChoiceFieldRejectsOutOfEnum(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.FieldRegistry["firm.type"] = "Company"

	out, changed, err := a.SetChoiceField(p, "firm.type", "Trust", choiceCatalog())

	require.ErrorIs(t, err, placeholder.ErrInvalidChoiceValue)
	var choiceErr *placeholder.InvalidChoiceError
	require.ErrorAs(t, err, &choiceErr)
	assert.Equal(t, []string{"Proprietorship", "Partnership", "Company"}, choiceErr.Choices)
	assert.False(t, changed)
	assert.Equal(t, map[string]string{"firm.type": "Company"}, out.FieldRegistry)
	assert.Empty(t, out.Audit)

	_, _, err = a.SetChoiceField(p, "work.name", "Company", choiceCatalog())
	require.ErrorIs(t, err, placeholder.ErrInvalidChoiceValue)
}

func TestSaveFieldOverrides(t *testing.T) {
	a := newAssembler()
	p := samplePack()
	p.FieldOverrides["contractor.address"] = "Old address"

	payload := map[string]string{
		"Work.Name":          "  <b>Road</b>   widening  phase two ",
		"contractor.address": "",
		"firm.type":          "Company",
		"unknown.key":        "ignored",
		"itemslist":          "ignored",
	}

	out, updated := a.SaveFieldOverrides(p, payload, choiceCatalog())

	assert.Equal(t, 2, updated)
	assert.Equal(t, map[string]string{"work.name": "Road widenin"}, out.FieldOverrides)
	assert.Equal(t, later, out.UpdatedAt)
	require.Len(t, out.Audit, 1)
	assert.Equal(t, 2, out.Audit[0].Count)

	again, updated := a.SaveFieldOverrides(out, payload, choiceCatalog())
	assert.Zero(t, updated)
	assert.Equal(t, out.FieldOverrides, again.FieldOverrides)
	assert.Len(t, again.Audit, 1)
}

func TestSaveFieldOverridesKeepsTextEntities(t *testing.T) {
	a := newAssembler()
	out, updated := a.SaveFieldOverrides(samplePack(), map[string]string{
		"contractor.address": "12 & 14, MG Road <script>alert(1)</script>",
	}, choiceCatalog())

	assert.Equal(t, 1, updated)
	assert.Equal(t, "12 & 14, MG Road", out.FieldOverrides["contractor.address"])
}

func TestSaveFieldOverridesStripsEncodedMarkup(t *testing.T) {
	a := newAssembler()
	out, updated := a.SaveFieldOverrides(samplePack(), map[string]string{
		"contractor.address": "&lt;script&gt;alert(1)&lt;/script&gt; <b>x</b> &amp;lt;i&amp;gt;y",
	}, choiceCatalog())

	assert.Equal(t, 1, updated)
	got := out.FieldOverrides["contractor.address"]
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "script")
	assert.Contains(t, got, "x")
}

func TestSaveFieldOverridesCollapsesKeySpellings(t *testing.T) {
	a := newAssembler()
	payload := map[string]string{
		"contractor.address": "Road A",
		"Contractor.Address": "Road B",
	}

	out, updated := a.SaveFieldOverrides(samplePack(), payload, choiceCatalog())
	assert.Equal(t, 1, updated)
	assert.Equal(t, "Road A", out.FieldOverrides["contractor.address"])

	again, updated := a.SaveFieldOverrides(out, payload, choiceCatalog())
	assert.Zero(t, updated)
	assert.Equal(t, out.FieldOverrides, again.FieldOverrides)
}
