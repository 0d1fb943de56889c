package models

import (
	"time"
)

// GeneratedDocument represents one rendered annexure or document
type GeneratedDocument struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	StoredPath    string    `json:"storedPath,omitempty"`
	RenderedHTML  string    `json:"renderedHtml,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt"`
	MissingFields []string  `json:"missingFields"`
}

// GeneratedTemplate represents a template rendered to a stored HTML file
type GeneratedTemplate struct {
	TplID           string    `json:"tplId"`
	Name            string    `json:"name"`
	StoredPath      string    `json:"storedPath"`
	LastGeneratedAt time.Time `json:"lastGeneratedAt"`
	MissingFields   []string  `json:"missingFields"`
}

// UpsertDocument replaces the document with the same ID or appends it
func UpsertDocument(docs []GeneratedDocument, doc GeneratedDocument) []GeneratedDocument {
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			return docs
		}
	}
	return append(docs, doc)
}

// UpsertTemplate replaces the entry with the same TplID or appends it
func UpsertTemplate(tpls []GeneratedTemplate, tpl GeneratedTemplate) []GeneratedTemplate {
	for i := range tpls {
		if tpls[i].TplID == tpl.TplID {
			tpls[i] = tpl
			return tpls
		}
	}
	return append(tpls, tpl)
}
