package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenderpack-backend/assembler"
	"tenderpack-backend/library"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

// TemplateService saves and previews an owner's templates. Every body is
// migrated to canonical placeholder syntax and validated before it is
// stored.
type TemplateService struct {
	templates TemplateStore
	profiles  ProfileStore
	packs     PackStore
	assembler *assembler.Assembler
	library   *library.Library
	now       func() time.Time
	logger    *zap.Logger
}

// TemplateServiceOption is a functional option for TemplateService
type TemplateServiceOption func(*TemplateService)

// TemplateWithStore sets the template store
func TemplateWithStore(store TemplateStore) TemplateServiceOption {
	return func(s *TemplateService) {
		s.templates = store
	}
}

// TemplateWithProfileStore sets the profile store
func TemplateWithProfileStore(store ProfileStore) TemplateServiceOption {
	return func(s *TemplateService) {
		s.profiles = store
	}
}

// TemplateWithPackStore sets the pack store used by pack previews
func TemplateWithPackStore(store PackStore) TemplateServiceOption {
	return func(s *TemplateService) {
		s.packs = store
	}
}

// TemplateWithLibrary sets the standard library
func TemplateWithLibrary(lib *library.Library) TemplateServiceOption {
	return func(s *TemplateService) {
		s.library = lib
	}
}

// TemplateWithClock sets the time source
func TemplateWithClock(now func() time.Time) TemplateServiceOption {
	return func(s *TemplateService) {
		s.now = now
	}
}

// TemplateWithLogger sets the logger
func TemplateWithLogger(logger *zap.Logger) TemplateServiceOption {
	return func(s *TemplateService) {
		s.logger = logger
	}
}

// NewTemplateService creates a new template service
func NewTemplateService(opts ...TemplateServiceOption) *TemplateService {
	s := &TemplateService{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.assembler = assembler.New(assembler.WithClock(s.now), assembler.WithLogger(s.logger))
	return s
}

// SaveTemplateRequest represents a request to create or update a template.
// An empty ID creates a new template.
type SaveTemplateRequest struct {
	Owner           string
	ID              string
	Name            string
	Kind            models.TemplateKind
	Body            string
	ChecklistItemID string
	Fields          []placeholder.FieldDescriptor
}

// SaveTemplateResult represents the saved template and its warnings
type SaveTemplateResult struct {
	Template    *models.Template
	Migration   placeholder.MigrationStats
	UnknownKeys []placeholder.FieldKey
}

// SaveTemplate migrates legacy tokens, validates the body and stores the
// template. Invalid tokens fail with *placeholder.InvalidTokenError and
// nothing is stored; unknown keys are returned as warnings.
func (s *TemplateService) SaveTemplate(ctx context.Context, req SaveTemplateRequest) (*SaveTemplateResult, error) {
	if s.templates == nil {
		return nil, errors.New("template store not set")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	switch req.Kind {
	case "":
		req.Kind = models.KindTemplate
	case models.KindTemplate, models.KindAnnexure:
	default:
		return nil, fmt.Errorf("%w: unknown template kind %q", ErrInvalidRequest, req.Kind)
	}

	now := s.now()
	tpl := &models.Template{ID: req.ID, YojID: req.Owner, CreatedAt: now}
	if req.ID != "" {
		existing, err := s.templates.LoadTemplate(ctx, req.Owner, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load template: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, req.ID)
		}
		tpl = existing
	} else {
		tpl.ID = uuid.NewString()
	}

	body, stats := placeholder.MigrateLegacyTokens(req.Body)
	in, err := loadInputs(ctx, s.profiles, req.Owner, nil)
	if err != nil {
		return nil, err
	}
	catalog := placeholder.CatalogFromBodies(append(append([]placeholder.FieldDescriptor(nil), schemaOf(s.library)...), req.Fields...))
	validation := placeholder.Validate(body, s.assembler.Registry(models.Pack{}, in), catalog)
	if err := validation.Err(); err != nil {
		return nil, err
	}

	tpl.Name = strings.TrimSpace(req.Name)
	tpl.Kind = req.Kind
	tpl.Body = body
	tpl.ChecklistItemID = req.ChecklistItemID
	tpl.Fields = req.Fields
	tpl.UpdatedAt = now
	if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	if stats.Total > 0 {
		s.logger.Info("legacy placeholders migrated",
			zap.String("template_id", tpl.ID),
			zap.Int("rewritten", stats.Total))
	}
	return &SaveTemplateResult{Template: tpl, Migration: stats, UnknownKeys: validation.UnknownKeys}, nil
}

// GetTemplateRequest represents a request to get a template
type GetTemplateRequest struct {
	Owner string
	ID    string
}

// GetTemplate retrieves one of the owner's templates, falling back to the
// standard library
func (s *TemplateService) GetTemplate(ctx context.Context, req GetTemplateRequest) (*models.Template, error) {
	if s.templates != nil {
		tpl, err := s.templates.LoadTemplate(ctx, req.Owner, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load template: %w", err)
		}
		if tpl != nil {
			return tpl, nil
		}
	}
	if s.library != nil {
		for _, t := range s.library.Templates(req.Owner) {
			if t.ID == req.ID {
				return &t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, req.ID)
}

// ListTemplates lists the owner's templates followed by library annexures
func (s *TemplateService) ListTemplates(ctx context.Context, owner string) ([]models.Template, error) {
	return ownerTemplates(ctx, s.templates, s.library, owner)
}

// DeleteTemplate removes one of the owner's templates. Library templates
// cannot be deleted and report ErrTemplateNotFound.
func (s *TemplateService) DeleteTemplate(ctx context.Context, req GetTemplateRequest) error {
	if s.templates == nil {
		return errors.New("template store not set")
	}
	tpl, err := s.templates.LoadTemplate(ctx, req.Owner, req.ID)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}
	if tpl == nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, req.ID)
	}
	if err := s.templates.DeleteTemplate(ctx, req.Owner, req.ID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// PreviewTemplateRequest represents a request to render a template without
// storing anything. Body, when set, is previewed instead of the stored
// template; PackID adds the pack's metadata and overrides to the registry.
type PreviewTemplateRequest struct {
	Owner      string
	TemplateID string
	Body       string
	PackID     *uuid.UUID
	Tables     map[string]placeholder.TableRows
}

// PreviewTemplateResult represents a rendered preview
type PreviewTemplateResult struct {
	HTML          string
	MissingFields []string
	Validation    placeholder.ValidationResult
}

// PreviewTemplate renders a template against the owner's registry
func (s *TemplateService) PreviewTemplate(ctx context.Context, req PreviewTemplateRequest) (*PreviewTemplateResult, error) {
	body := req.Body
	var schema []placeholder.FieldDescriptor
	if body == "" {
		tpl, err := s.GetTemplate(ctx, GetTemplateRequest{Owner: req.Owner, ID: req.TemplateID})
		if err != nil {
			return nil, err
		}
		body = tpl.Body
		schema = tpl.Fields
	} else {
		body, _ = placeholder.MigrateLegacyTokens(body)
	}

	var pack models.Pack
	if req.PackID != nil {
		if s.packs == nil {
			return nil, errors.New("pack store not set")
		}
		p, err := s.packs.LoadPack(ctx, req.Owner, *req.PackID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pack: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrPackNotFound, *req.PackID)
		}
		pack = *p
	}

	in, err := loadInputs(ctx, s.profiles, req.Owner, req.Tables)
	if err != nil {
		return nil, err
	}
	registry := s.assembler.Registry(pack, in)
	catalog := placeholder.CatalogFromBodies(append(append([]placeholder.FieldDescriptor(nil), schemaOf(s.library)...), schema...))
	rendered := placeholder.Render(body, registry)
	return &PreviewTemplateResult{
		HTML:          rendered.HTML,
		MissingFields: rendered.MissingFields,
		Validation:    placeholder.Validate(body, registry, catalog),
	}, nil
}
