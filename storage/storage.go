package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsafePath is returned when a stored reference resolves outside the
	// owner's storage root.
	ErrUnsafePath = errors.New("unsafe storage path")
	ErrNotFound   = errors.New("file not found")
)

// Storage interface for file storage operations
type Storage interface {
	// Upload stores a vault file for owner and returns the storage path
	Upload(ctx context.Context, owner string, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error

	OwnedReader
}

// OwnedReader opens stored files on behalf of an owner. ref must resolve
// inside the owner's root or ErrUnsafePath is returned.
type OwnedReader interface {
	OpenOwned(ctx context.Context, owner, ref string) (io.ReadCloser, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./storage/files"
		}
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// VaultPath is the storage path of a vault upload
func VaultPath(owner string, fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filename, ext)
	// Sanitize filename
	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = strings.ReplaceAll(baseName, "/", "_")
	baseName = strings.ReplaceAll(baseName, "\\", "_")

	id := fileID.String()
	return path.Join(owner, "vault", id[:2], fmt.Sprintf("%s_%s%s", id, baseName, ext))
}

// ItemPath is the storage path of a file uploaded against a pack item
func ItemPath(owner string, packID uuid.UUID, itemID string, fileID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "file"
	}
	name = strings.ReplaceAll(name, " ", "_")
	item := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(itemID)
	return path.Join(owner, "packs", packID.String(), "items", item, fmt.Sprintf("%s_%s", fileID.String()[:8], name))
}

// ValidOwner reports whether owner can name a storage root: one path
// segment, not "." or "..".
func ValidOwner(owner string) bool {
	if owner == "" || owner == "." || owner == ".." {
		return false
	}
	return !strings.ContainsAny(owner, "/\\\x00")
}

// ResolveWithin resolves ref against base and checks that the result lies
// strictly inside base/owner. Relative refs are taken relative to base.
// It performs no filesystem access; LocalStorage adds a symlink check.
func ResolveWithin(base, owner, ref string) (string, error) {
	if !ValidOwner(owner) {
		return "", fmt.Errorf("%w: invalid owner %q", ErrUnsafePath, owner)
	}
	if strings.TrimSpace(ref) == "" || strings.ContainsRune(ref, 0) {
		return "", fmt.Errorf("%w: empty reference", ErrUnsafePath)
	}

	root, err := filepath.Abs(filepath.Join(base, owner))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	full := ref
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, ref)
	}
	full, err = filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if !inside(root, full) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, ref)
	}
	return full, nil
}

// inside reports whether target is a strict descendant of root.
func inside(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
