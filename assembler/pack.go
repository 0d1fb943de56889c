package assembler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenderpack-backend/models"
)

// PackDraft describes a pack to be created.
type PackDraft struct {
	Owner      string
	Title      string
	Source     models.PackSource
	SourceID   string
	TenderNo   string
	Department string
	Checklist  []models.ChecklistItem
	// Annexures and Templates preselect what generation will render.
	Annexures []string
	Templates []string
}

// NewPack builds a pack from d. Every checklist entry gets a mirrored item
// slot and starts pending unless it carries a valid status.
func (a *Assembler) NewPack(d PackDraft) (models.Pack, error) {
	if strings.TrimSpace(d.Owner) == "" {
		return models.Pack{}, fmt.Errorf("%w: owner is required", ErrInvalidPack)
	}
	switch d.Source {
	case "":
		d.Source = models.SourceTender
	case models.SourceTender, models.SourceWorkorder, models.SourceBlueprint:
	default:
		return models.Pack{}, fmt.Errorf("%w: unknown source %q", ErrInvalidPack, d.Source)
	}

	now := a.now()
	p := models.Pack{
		ID:             uuid.New(),
		YojID:          d.Owner,
		Title:          strings.TrimSpace(d.Title),
		Source:         d.Source,
		SourceID:       d.SourceID,
		TenderNo:       d.TenderNo,
		Department:     d.Department,
		Checklist:      make([]models.ChecklistItem, 0, len(d.Checklist)),
		Items:          make([]models.PackItem, 0, len(d.Checklist)),
		FieldOverrides: map[string]string{},
		FieldRegistry:  map[string]string{},
		VaultMappings:  map[string]models.VaultMapping{},
		AnnexureList:   dedupe(d.Annexures),
		TemplateIDs:    dedupe(d.Templates),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	seen := make(map[string]bool, len(d.Checklist))
	for _, item := range d.Checklist {
		item.ItemID = strings.TrimSpace(item.ItemID)
		if item.ItemID == "" {
			return models.Pack{}, fmt.Errorf("%w: checklist item without id", ErrInvalidPack)
		}
		if seen[item.ItemID] {
			return models.Pack{}, fmt.Errorf("%w: duplicate checklist item %s", ErrInvalidPack, item.ItemID)
		}
		seen[item.ItemID] = true
		if !item.Status.IsValid() {
			item.Status = models.ItemPending
		}
		p.Checklist = append(p.Checklist, item)
		p.Items = append(p.Items, models.PackItem{ItemID: item.ItemID, Title: item.Title, Status: item.Status})
	}

	p.MissingChecklistItemIDs = MissingItems(p, nil)
	p.AttachmentsPlan = PlanAttachments(p, nil)
	return p, nil
}

// AttachFile records an uploaded file on the item slot of itemID and marks
// the item uploaded unless it is already further along.
func (a *Assembler) AttachFile(p models.Pack, itemID string, ref models.FileRef, vault models.VaultIndex) (models.Pack, error) {
	if p.ChecklistIndex(itemID) < 0 {
		return p, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	out := p.Clone()
	if ref.UploadedAt.IsZero() {
		ref.UploadedAt = a.now()
	}
	i := out.ItemIndex(itemID)
	if i < 0 {
		ci := out.ChecklistIndex(itemID)
		out.Items = append(out.Items, models.PackItem{
			ItemID: itemID,
			Title:  out.Checklist[ci].Title,
			Status: out.Checklist[ci].Status,
		})
		i = len(out.Items) - 1
	}
	out.Items[i].FileRefs = append(out.Items[i].FileRefs, ref)
	promoteItem(&out, itemID, models.ItemUploaded)

	out.MissingChecklistItemIDs = MissingItems(out, vault)
	out.AttachmentsPlan = PlanAttachments(out, vault)
	a.touch(&out)
	a.logger.Debug("file attached",
		zap.String("pack_id", p.ID.String()),
		zap.String("item_id", itemID),
		zap.String("path", ref.Path))
	return out, nil
}

// SelectAnnexures replaces the pack's annexure list. Blank and repeated ids
// are dropped; order is kept.
func (a *Assembler) SelectAnnexures(p models.Pack, ids []string) models.Pack {
	out := p.Clone()
	out.AnnexureList = dedupe(ids)
	a.touch(&out)
	return out
}

func dedupe(ids []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
