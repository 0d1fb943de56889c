package assembler

import (
	"fmt"

	"go.uber.org/zap"

	"tenderpack-backend/models"
)

// ApplyChecklistToggle sets one checklist entry and its mirrored item to
// pending or done.
func (a *Assembler) ApplyChecklistToggle(p models.Pack, itemID string, status models.ItemStatus) (models.Pack, error) {
	if !status.IsToggle() {
		return p, fmt.Errorf("%w: %q is not a toggle status", ErrInvalidStatus, status)
	}
	return a.setStatus(p, itemID, status)
}

// SetItemStatus sets one checklist entry and its mirrored item to any of
// the item statuses. Manual changes may skip or revert states.
func (a *Assembler) SetItemStatus(p models.Pack, itemID string, status models.ItemStatus) (models.Pack, error) {
	if !status.IsValid() {
		return p, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return a.setStatus(p, itemID, status)
}

func (a *Assembler) setStatus(p models.Pack, itemID string, status models.ItemStatus) (models.Pack, error) {
	ci := p.ChecklistIndex(itemID)
	ii := p.ItemIndex(itemID)
	if ci < 0 && ii < 0 {
		return p, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	out := p.Clone()
	changed := false
	if ci >= 0 && out.Checklist[ci].Status != status {
		out.Checklist[ci].Status = status
		changed = true
	}
	if ii >= 0 && out.Items[ii].Status != status {
		out.Items[ii].Status = status
		changed = true
	}
	if !changed {
		return p, nil
	}

	a.touch(&out)
	a.logger.Debug("checklist status set",
		zap.String("pack_id", p.ID.String()),
		zap.String("item_id", itemID),
		zap.String("status", string(status)))
	return out, nil
}

// promoteItem raises the status of itemID on both lists, never lowering it.
func promoteItem(p *models.Pack, itemID string, target models.ItemStatus) bool {
	changed := false
	if i := p.ChecklistIndex(itemID); i >= 0 {
		next := promote(p.Checklist[i].Status, target)
		if next != p.Checklist[i].Status {
			p.Checklist[i].Status = next
			changed = true
		}
	}
	if i := p.ItemIndex(itemID); i >= 0 {
		next := promote(p.Items[i].Status, target)
		if next != p.Items[i].Status {
			p.Items[i].Status = next
			changed = true
		}
	}
	return changed
}
