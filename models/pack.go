package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ItemStatus represents the status of a checklist item
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemUploaded  ItemStatus = "uploaded"
	ItemGenerated ItemStatus = "generated"
	ItemDone      ItemStatus = "done"
)

// Rank orders statuses along pending -> uploaded -> generated -> done.
// Unknown statuses rank below pending.
func (s ItemStatus) Rank() int {
	switch s {
	case ItemPending:
		return 0
	case ItemUploaded:
		return 1
	case ItemGenerated:
		return 2
	case ItemDone:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether s is one of the item statuses
func (s ItemStatus) IsValid() bool {
	return s.Rank() >= 0
}

// IsToggle reports whether s may be set by a manual checklist toggle
func (s ItemStatus) IsToggle() bool {
	return s == ItemPending || s == ItemDone
}

// PackSource represents what a pack was started from
type PackSource string

const (
	SourceTender    PackSource = "tender"
	SourceWorkorder PackSource = "workorder"
	SourceBlueprint PackSource = "blueprint"
)

// ChecklistItem represents one entry of a pack checklist
type ChecklistItem struct {
	ItemID     string     `json:"itemId"`
	Title      string     `json:"title"`
	Required   bool       `json:"required"`
	Status     ItemStatus `json:"status"`
	TemplateID string     `json:"templateId,omitempty"`
}

// FileRef points at an uploaded file in the owner's storage area
type FileRef struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PackItem is the file-attachment slot mirroring a checklist item
type PackItem struct {
	ItemID   string     `json:"itemId"`
	Title    string     `json:"title"`
	Status   ItemStatus `json:"status"`
	FileRefs []FileRef  `json:"fileRefs"`
}

// VaultMapping links a checklist item to a vault document
type VaultMapping struct {
	FileID     string    `json:"fileId"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason,omitempty"`
	MappedAt   time.Time `json:"mappedAt"`
}

// AttachmentSource tells where a checklist item's document comes from
type AttachmentSource string

const (
	AttachUpload    AttachmentSource = "upload"
	AttachVault     AttachmentSource = "vault"
	AttachGenerated AttachmentSource = "generated"
	AttachMissing   AttachmentSource = "missing"
)

// AttachmentPlanEntry is one line of a pack's attachments plan
type AttachmentPlanEntry struct {
	ItemID string           `json:"itemId"`
	Source AttachmentSource `json:"source"`
	Ref    string           `json:"ref,omitempty"`
}

// AuditEntry records one mutation of pack fields
type AuditEntry struct {
	ID     uuid.UUID `json:"id"`
	At     time.Time `json:"at"`
	Action string    `json:"action"`
	Key    string    `json:"key,omitempty"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Count  int       `json:"count,omitempty"`
}

// TableData holds table placeholder rows keyed by table key
type TableData map[string][]map[string]string

// Pack represents a contractor's bundle for one tender or workorder
type Pack struct {
	ID         uuid.UUID  `json:"id"`
	YojID      string     `json:"yojId"`
	Title      string     `json:"title"`
	Source     PackSource `json:"source"`
	SourceID   string     `json:"sourceId,omitempty"`
	TenderNo   string     `json:"tenderNo,omitempty"`
	Department string     `json:"department,omitempty"`

	Checklist []ChecklistItem `json:"checklist"`
	Items     []PackItem      `json:"items"`

	FieldOverrides map[string]string `json:"fieldOverrides"`
	FieldRegistry  map[string]string `json:"fieldRegistry"`
	Tables         TableData         `json:"tables,omitempty"`

	VaultMappings           map[string]VaultMapping `json:"vaultMappings"`
	MissingChecklistItemIDs []string                `json:"missingChecklistItemIds"`

	AnnexureList       []string              `json:"annexureList"`
	TemplateIDs        []string              `json:"templateIds,omitempty"`
	GeneratedAnnexures []GeneratedDocument   `json:"generatedAnnexures"`
	GeneratedDocs      []GeneratedDocument   `json:"generatedDocs"`
	GeneratedTemplates []GeneratedTemplate   `json:"generatedTemplates"`
	AttachmentsPlan    []AttachmentPlanEntry `json:"attachmentsPlan"`

	Audit []AuditEntry `json:"audit,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Value implements driver.Valuer for JSONB
func (p Pack) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *Pack) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Clone returns a deep copy so that callers can mutate without touching p
func (p Pack) Clone() Pack {
	c := p

	c.Checklist = append([]ChecklistItem(nil), p.Checklist...)
	c.Items = make([]PackItem, len(p.Items))
	for i, it := range p.Items {
		it.FileRefs = append([]FileRef(nil), it.FileRefs...)
		c.Items[i] = it
	}
	if p.Items == nil {
		c.Items = nil
	}

	c.FieldOverrides = cloneStrings(p.FieldOverrides)
	c.FieldRegistry = cloneStrings(p.FieldRegistry)
	if p.Tables != nil {
		c.Tables = make(TableData, len(p.Tables))
		for k, rows := range p.Tables {
			cp := make([]map[string]string, len(rows))
			for i, row := range rows {
				cp[i] = cloneStrings(row)
			}
			c.Tables[k] = cp
		}
	}
	if p.VaultMappings != nil {
		c.VaultMappings = make(map[string]VaultMapping, len(p.VaultMappings))
		for k, v := range p.VaultMappings {
			c.VaultMappings[k] = v
		}
	}

	c.MissingChecklistItemIDs = append([]string(nil), p.MissingChecklistItemIDs...)
	c.AnnexureList = append([]string(nil), p.AnnexureList...)
	c.TemplateIDs = append([]string(nil), p.TemplateIDs...)
	c.GeneratedAnnexures = cloneDocs(p.GeneratedAnnexures)
	c.GeneratedDocs = cloneDocs(p.GeneratedDocs)
	c.GeneratedTemplates = make([]GeneratedTemplate, len(p.GeneratedTemplates))
	for i, t := range p.GeneratedTemplates {
		t.MissingFields = append([]string(nil), t.MissingFields...)
		c.GeneratedTemplates[i] = t
	}
	if p.GeneratedTemplates == nil {
		c.GeneratedTemplates = nil
	}
	c.AttachmentsPlan = append([]AttachmentPlanEntry(nil), p.AttachmentsPlan...)
	c.Audit = append([]AuditEntry(nil), p.Audit...)
	return c
}

// ChecklistIndex returns the position of itemID in the checklist or -1
func (p *Pack) ChecklistIndex(itemID string) int {
	for i := range p.Checklist {
		if p.Checklist[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ItemIndex returns the position of itemID in items or -1
func (p *Pack) ItemIndex(itemID string) int {
	for i := range p.Items {
		if p.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// MetaFields exposes pack metadata as placeholder values
func (p *Pack) MetaFields() map[string]string {
	return map[string]string{
		"pack.title":        p.Title,
		"tender.number":     p.TenderNo,
		"tender.department": p.Department,
		"pack.source":       string(p.Source),
	}
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDocs(docs []GeneratedDocument) []GeneratedDocument {
	if docs == nil {
		return nil
	}
	out := make([]GeneratedDocument, len(docs))
	for i, d := range docs {
		d.MissingFields = append([]string(nil), d.MissingFields...)
		out[i] = d
	}
	return out
}
