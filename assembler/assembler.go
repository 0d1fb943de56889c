// Package assembler applies checklist, field and generation operations to
// a pack. Every operation takes a pack value and returns a new one; the
// input is never mutated, and on error no state change is returned.
package assembler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

var (
	ErrItemNotFound      = errors.New("checklist item not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNothingToGenerate = errors.New("nothing to generate")
	ErrInvalidStatus     = errors.New("invalid item status")
	ErrInvalidPack       = errors.New("invalid pack")
)

// DocumentWriter stores rendered output and returns its storage path.
type DocumentWriter interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}

// Inputs carries the contractor data and caller-supplied tables a render
// composes its registry from.
type Inputs struct {
	Profile models.ContractorProfile
	Memory  map[string]string
	Tables  map[string]placeholder.TableRows
}

// Assembler holds the clock and logger shared by pack operations.
type Assembler struct {
	now    func() time.Time
	logger *zap.Logger
}

// Option is a functional option for Assembler
type Option func(*Assembler)

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// New creates an assembler
func New(opts ...Option) *Assembler {
	a := &Assembler{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry composes the field registry for rendering documents of p.
func (a *Assembler) Registry(p models.Pack, in Inputs) placeholder.Registry {
	tables := make(map[string]placeholder.TableRows, len(p.Tables)+len(in.Tables))
	for k, rows := range p.Tables {
		converted := make(placeholder.TableRows, 0, len(rows))
		for _, row := range rows {
			converted = append(converted, placeholder.TableRow(row))
		}
		tables[k] = converted
	}
	for k, rows := range in.Tables {
		tables[k] = rows
	}

	return placeholder.ComposeRegistry(placeholder.Sources{
		Extra:     p.MetaFields(),
		Profile:   in.Profile.Fields(),
		Memory:    in.Memory,
		Overrides: p.FieldOverrides,
		Toggles:   p.FieldRegistry,
		Tables:    tables,
	})
}

// PackCatalog merges the catalogs of templates with an explicit schema.
func PackCatalog(schema []placeholder.FieldDescriptor, templates ...models.Template) *placeholder.Catalog {
	var descs []placeholder.FieldDescriptor
	bodies := make([]string, 0, len(templates))
	for _, t := range templates {
		bodies = append(bodies, t.Body)
		descs = append(descs, t.Fields...)
	}
	descs = append(descs, schema...)
	return placeholder.CatalogFromBodies(descs, bodies...)
}

func (a *Assembler) audit(p *models.Pack, entry models.AuditEntry) {
	entry.ID = uuid.New()
	entry.At = a.now()
	p.Audit = append(p.Audit, entry)
}

func (a *Assembler) touch(p *models.Pack) {
	p.UpdatedAt = a.now()
}

// promote raises status to target unless it already ranks higher.
func promote(current, target models.ItemStatus) models.ItemStatus {
	if current.Rank() >= target.Rank() {
		return current
	}
	return target
}
