package models

import (
	"time"
)

// VaultFile represents a document in the contractor's vault
type VaultFile struct {
	ID          string    `json:"id"`
	YojID       string    `json:"yojId"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mimeType,omitempty"`
	Category    string    `json:"category,omitempty"`
	StoragePath string    `json:"storagePath"`
	Deleted     bool      `json:"deleted,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// VaultIndex maps vault file IDs to files
type VaultIndex map[string]VaultFile

// NewVaultIndex indexes files by ID
func NewVaultIndex(files []VaultFile) VaultIndex {
	idx := make(VaultIndex, len(files))
	for _, f := range files {
		idx[f.ID] = f
	}
	return idx
}

// Live returns the non-deleted file with id
func (v VaultIndex) Live(id string) (VaultFile, bool) {
	f, ok := v[id]
	if !ok || f.Deleted {
		return VaultFile{}, false
	}
	return f, true
}
