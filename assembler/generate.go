package assembler

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

const htmlContentType = "text/html; charset=utf-8"

// AnnexureResult reports what GenerateAnnexures produced.
type AnnexureResult struct {
	Generated []models.GeneratedDocument
	// NotFound lists annexure ids with no matching template.
	NotFound []string
}

// GenerateAnnexures renders every annexure template listed in the pack's
// annexure list and stores the output under GeneratedAnnexures, replacing
// earlier output for the same template.
func (a *Assembler) GenerateAnnexures(p models.Pack, in Inputs, templates []models.Template) (models.Pack, AnnexureResult, error) {
	var res AnnexureResult
	if len(p.AnnexureList) == 0 {
		return p, res, ErrNothingToGenerate
	}

	byID := indexTemplates(templates)
	registry := a.Registry(p, in)
	out := p.Clone()
	now := a.now()

	for _, id := range p.AnnexureList {
		tpl, ok := byID[id]
		if !ok {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		rendered := placeholder.Render(tpl.Body, registry)
		doc := models.GeneratedDocument{
			ID:            tpl.ID,
			Title:         tpl.Name,
			RenderedHTML:  rendered.HTML,
			GeneratedAt:   now,
			MissingFields: rendered.MissingFields,
		}
		out.GeneratedAnnexures = models.UpsertDocument(out.GeneratedAnnexures, doc)
		if tpl.ChecklistItemID != "" {
			promoteItem(&out, tpl.ChecklistItemID, models.ItemGenerated)
		}
		res.Generated = append(res.Generated, doc)
	}

	if len(res.Generated) == 0 {
		return p, res, fmt.Errorf("%w: %s", ErrTemplateNotFound, strings.Join(res.NotFound, ", "))
	}
	if len(res.NotFound) > 0 {
		a.logger.Warn("annexure templates not found",
			zap.String("pack_id", p.ID.String()),
			zap.Strings("template_ids", res.NotFound))
	}
	a.touch(&out)
	return out, res, nil
}

// GenerateTemplates renders each template applicable to the pack and writes
// one HTML file per template under the pack's generated area. Any write
// failure aborts the whole operation.
func (a *Assembler) GenerateTemplates(ctx context.Context, p models.Pack, in Inputs, templates []models.Template, w DocumentWriter) (models.Pack, []models.GeneratedTemplate, error) {
	applicable := ApplicableTemplates(p, templates)
	if len(applicable) == 0 {
		return p, nil, ErrNothingToGenerate
	}

	registry := a.Registry(p, in)
	out := p.Clone()
	now := a.now()
	generated := make([]models.GeneratedTemplate, 0, len(applicable))

	for _, tpl := range applicable {
		rendered := placeholder.Render(tpl.Body, registry)
		stored, err := w.Put(ctx, GeneratedKey(p, tpl.ID), strings.NewReader(rendered.HTML), htmlContentType)
		if err != nil {
			return p, nil, fmt.Errorf("failed to store template %s: %w", tpl.ID, err)
		}
		entry := models.GeneratedTemplate{
			TplID:           tpl.ID,
			Name:            tpl.Name,
			StoredPath:      stored,
			LastGeneratedAt: now,
			MissingFields:   rendered.MissingFields,
		}
		out.GeneratedTemplates = models.UpsertTemplate(out.GeneratedTemplates, entry)
		if tpl.ChecklistItemID != "" {
			promoteItem(&out, tpl.ChecklistItemID, models.ItemGenerated)
		}
		generated = append(generated, entry)
	}

	a.touch(&out)
	a.logger.Info("templates generated",
		zap.String("pack_id", p.ID.String()),
		zap.Int("count", len(generated)))
	return out, generated, nil
}

// GenerateDocument renders a single template into GeneratedDocs, keeping the
// rendered HTML inline and a stored copy.
func (a *Assembler) GenerateDocument(ctx context.Context, p models.Pack, in Inputs, tpl models.Template, w DocumentWriter) (models.Pack, models.GeneratedDocument, error) {
	rendered := placeholder.Render(tpl.Body, a.Registry(p, in))
	stored, err := w.Put(ctx, GeneratedKey(p, "doc-"+tpl.ID), strings.NewReader(rendered.HTML), htmlContentType)
	if err != nil {
		return p, models.GeneratedDocument{}, fmt.Errorf("failed to store document %s: %w", tpl.ID, err)
	}

	doc := models.GeneratedDocument{
		ID:            tpl.ID,
		Title:         tpl.Name,
		StoredPath:    stored,
		RenderedHTML:  rendered.HTML,
		GeneratedAt:   a.now(),
		MissingFields: rendered.MissingFields,
	}
	out := p.Clone()
	out.GeneratedDocs = models.UpsertDocument(out.GeneratedDocs, doc)
	if tpl.ChecklistItemID != "" {
		promoteItem(&out, tpl.ChecklistItemID, models.ItemGenerated)
	}
	a.touch(&out)
	return out, doc, nil
}

// ApplicableTemplates returns the pack templates of kind template, limited
// to the pack's selection when it has one, in selection order.
func ApplicableTemplates(p models.Pack, templates []models.Template) []models.Template {
	var out []models.Template
	if len(p.TemplateIDs) == 0 {
		for _, t := range templates {
			if t.Kind == models.KindTemplate || t.Kind == "" {
				out = append(out, t)
			}
		}
		return out
	}
	byID := indexTemplates(templates)
	for _, id := range p.TemplateIDs {
		if t, ok := byID[id]; ok && t.Kind != models.KindAnnexure {
			out = append(out, t)
		}
	}
	return out
}

// GeneratedKey is the storage key of a generated file of pack p.
func GeneratedKey(p models.Pack, name string) string {
	return path.Join(p.YojID, "packs", p.ID.String(), "generated", safeName(name)+".html")
}

func indexTemplates(templates []models.Template) map[string]models.Template {
	byID := make(map[string]models.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	return byID
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
