package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenderpack-backend/models"
	"tenderpack-backend/storage"
)

// VaultService manages the documents in an owner's vault
type VaultService struct {
	files  storage.Storage
	store  VaultFileStore
	logger *zap.Logger
}

// NewVaultService creates a new vault service
func NewVaultService(store VaultFileStore, files storage.Storage, logger *zap.Logger) *VaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VaultService{files: files, store: store, logger: logger}
}

// UploadVaultFileRequest represents a vault upload
type UploadVaultFileRequest struct {
	Owner    string
	Title    string
	Category string
	Filename string
	Data     io.Reader
}

// Upload stores a document in the vault and records it
func (s *VaultService) Upload(ctx context.Context, req UploadVaultFileRequest) (*models.VaultFile, error) {
	if s.files == nil || s.store == nil {
		return nil, errors.New("vault service not configured")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidRequest)
	}
	if !storage.ValidOwner(req.Owner) {
		return nil, fmt.Errorf("%w: invalid owner", ErrInvalidRequest)
	}

	id := uuid.New()
	stored, err := s.files.Upload(ctx, req.Owner, id, req.Filename, req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename))
	}
	file := &models.VaultFile{
		ID:          id.String(),
		YojID:       req.Owner,
		Title:       title,
		Filename:    req.Filename,
		MimeType:    mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Filename))),
		Category:    req.Category,
		StoragePath: stored,
	}
	if err := s.store.Create(ctx, file); err != nil {
		if delErr := s.files.Delete(ctx, stored); delErr != nil {
			s.logger.Warn("failed to remove orphaned vault file",
				zap.String("path", stored),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record vault file: %w", err)
	}
	return file, nil
}

// List returns the owner's live vault files
func (s *VaultService) List(ctx context.Context, owner string) ([]models.VaultFile, error) {
	if s.store == nil {
		return nil, errors.New("vault store not set")
	}
	files, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	live := make([]models.VaultFile, 0, len(files))
	for _, f := range files {
		if !f.Deleted {
			live = append(live, f)
		}
	}
	return live, nil
}

// Delete marks a vault file deleted. Packs that map it see the item as
// missing the next time they are read.
func (s *VaultService) Delete(ctx context.Context, owner, id string) error {
	if s.store == nil {
		return errors.New("vault store not set")
	}
	idx, err := s.store.LoadVaultIndex(ctx, owner)
	if err != nil {
		return err
	}
	if _, ok := idx.Live(id); !ok {
		return fmt.Errorf("%w: %s", ErrVaultFileNotFound, id)
	}
	return s.store.MarkDeleted(ctx, owner, id)
}
