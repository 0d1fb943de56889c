package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage implements Storage interface for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: abs,
	}, nil
}

// Upload stores a vault file locally
func (s *LocalStorage) Upload(ctx context.Context, owner string, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	if !ValidOwner(owner) {
		return "", fmt.Errorf("%w: invalid owner %q", ErrUnsafePath, owner)
	}
	return s.Put(ctx, VaultPath(owner, fileID, filename), data, "")
}

// Put writes data to key through a temporary file in the same directory,
// so readers never observe a partial file.
func (s *LocalStorage) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if !inside(s.basePath, fullPath) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, key)
	}

	// Create directory structure
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return filepath.ToSlash(key), nil
}

// Download retrieves a file from local storage
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(storagePath))
	if !inside(s.basePath, fullPath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, storagePath)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// OpenOwned opens ref for owner after resolving symlinks on both the owner
// root and the target. Any resolution failure other than a missing file is
// treated as unsafe.
func (s *LocalStorage) OpenOwned(ctx context.Context, owner, ref string) (io.ReadCloser, error) {
	full, err := ResolveWithin(s.basePath, owner, filepath.FromSlash(ref))
	if err != nil {
		return nil, err
	}

	root, err := filepath.EvalSymlinks(filepath.Join(s.basePath, owner))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if !inside(root, resolved) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, ref)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnsafePath, ref)
	}
	return os.Open(resolved)
}

// Delete removes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(storagePath))
	if !inside(s.basePath, fullPath) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, storagePath)
	}

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
