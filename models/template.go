package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"tenderpack-backend/placeholder"
)

// TemplateKind separates pack templates from standard annexures
type TemplateKind string

const (
	KindTemplate TemplateKind = "template"
	KindAnnexure TemplateKind = "annexure"
)

// FieldSchema is the explicit field catalog stored with a template
type FieldSchema []placeholder.FieldDescriptor

// Value implements driver.Valuer for JSONB
func (f FieldSchema) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *FieldSchema) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*f = FieldSchema{}
		return nil
	}
	return json.Unmarshal(bytes, f)
}

// Template represents an HTML template with placeholder tokens
type Template struct {
	ID              string       `json:"id"`
	YojID           string       `json:"yojId"`
	Name            string       `json:"name"`
	Kind            TemplateKind `json:"kind"`
	Body            string       `json:"body"`
	ChecklistItemID string       `json:"checklistItemId,omitempty"`
	Fields          FieldSchema  `json:"fields,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Catalog builds the field catalog of the template's body and schema
func (t Template) Catalog() *placeholder.Catalog {
	return placeholder.CatalogFromBodies(t.Fields, t.Body)
}
