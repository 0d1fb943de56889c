// Package exporter projects a pack into print-ready HTML and ZIP bundles.
//
// Both exports are read-only with respect to the pack. Every stored file
// that goes into a bundle is opened through a storage.OwnedReader, so a
// tampered reference pointing outside the owner's root is skipped rather
// than read.
package exporter

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tenderpack-backend/storage"
)

var (
	ErrArchiveCreate = errors.New("failed to create export archive")
	// ErrUnsafePathRejected marks members skipped by the containment check.
	ErrUnsafePathRejected = storage.ErrUnsafePath
)

// ArchiveCreateError is a fatal failure while building an export archive.
type ArchiveCreateError struct {
	Op  string
	Err error
}

func (e *ArchiveCreateError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrArchiveCreate, e.Op, e.Err)
}

func (e *ArchiveCreateError) Unwrap() error { return e.Err }

// Is reports true for ErrArchiveCreate so callers can match the class.
func (e *ArchiveCreateError) Is(target error) bool { return target == ErrArchiveCreate }

// Exporter builds print documents and archives for packs.
type Exporter struct {
	files   storage.OwnedReader
	tempDir string
	now     func() time.Time
	logger  *zap.Logger
}

// Option is a functional option for Exporter
type Option func(*Exporter)

// WithTempDir sets where archives are staged. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(e *Exporter) {
		e.tempDir = dir
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// New creates an exporter reading member files through files.
func New(files storage.OwnedReader, opts ...Option) *Exporter {
	e := &Exporter{
		files:  files,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
