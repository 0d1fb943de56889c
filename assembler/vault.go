package assembler

import (
	"fmt"
	"math"

	"tenderpack-backend/models"
)

// MapVaultDocument links itemID to a vault file, replacing any earlier
// mapping for the item, and recomputes the missing checklist items.
// Confidence is clamped to [0,1].
func (a *Assembler) MapVaultDocument(p models.Pack, itemID, fileID string, confidence float64, reason string, vault models.VaultIndex) (models.Pack, error) {
	if p.ChecklistIndex(itemID) < 0 {
		return p, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	out := p.Clone()
	if out.VaultMappings == nil {
		out.VaultMappings = make(map[string]models.VaultMapping)
	}
	out.VaultMappings[itemID] = models.VaultMapping{
		FileID:     fileID,
		Confidence: clamp01(confidence),
		Reason:     reason,
		MappedAt:   a.now(),
	}
	if _, ok := vault.Live(fileID); ok {
		promoteItem(&out, itemID, models.ItemUploaded)
	}
	out.MissingChecklistItemIDs = MissingItems(out, vault)
	out.AttachmentsPlan = PlanAttachments(out, vault)
	a.touch(&out)
	return out, nil
}

// RecomputeMissing refreshes the missing items and the attachments plan of
// p against the current vault.
func (a *Assembler) RecomputeMissing(p models.Pack, vault models.VaultIndex) models.Pack {
	out := p.Clone()
	out.MissingChecklistItemIDs = MissingItems(out, vault)
	out.AttachmentsPlan = PlanAttachments(out, vault)
	return out
}

// MissingItems lists required checklist items, in checklist order, that
// have neither a live vault mapping nor an attached file.
func MissingItems(p models.Pack, vault models.VaultIndex) []string {
	missing := []string{}
	for _, item := range p.Checklist {
		if !item.Required {
			continue
		}
		if m, ok := p.VaultMappings[item.ItemID]; ok {
			if _, live := vault.Live(m.FileID); live {
				continue
			}
		}
		if i := p.ItemIndex(item.ItemID); i >= 0 && len(p.Items[i].FileRefs) > 0 {
			continue
		}
		missing = append(missing, item.ItemID)
	}
	return missing
}

// PlanAttachments decides for each checklist item where its document comes
// from: an uploaded file first, then a live vault mapping, then generated
// output.
func PlanAttachments(p models.Pack, vault models.VaultIndex) []models.AttachmentPlanEntry {
	generated := make(map[string]string)
	for _, d := range p.GeneratedDocs {
		generated[d.ID] = d.StoredPath
	}
	for _, t := range p.GeneratedTemplates {
		generated[t.TplID] = t.StoredPath
	}

	plan := make([]models.AttachmentPlanEntry, 0, len(p.Checklist))
	for _, item := range p.Checklist {
		entry := models.AttachmentPlanEntry{ItemID: item.ItemID, Source: models.AttachMissing}
		if i := p.ItemIndex(item.ItemID); i >= 0 && len(p.Items[i].FileRefs) > 0 {
			entry.Source = models.AttachUpload
			entry.Ref = p.Items[i].FileRefs[0].Path
		} else if m, ok := p.VaultMappings[item.ItemID]; ok {
			if _, live := vault.Live(m.FileID); live {
				entry.Source = models.AttachVault
				entry.Ref = m.FileID
			}
		}
		if entry.Source == models.AttachMissing && item.TemplateID != "" {
			if stored, ok := generated[item.TemplateID]; ok {
				entry.Source = models.AttachGenerated
				entry.Ref = stored
			}
		}
		plan = append(plan, entry)
	}
	return plan
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
