package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenderpack-backend/assembler"
	"tenderpack-backend/exporter"
	"tenderpack-backend/library"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
	"tenderpack-backend/storage"
)

// PackService loads a pack, applies one assembler operation and saves the
// result. A pack is saved only when the operation succeeds.
type PackService struct {
	packs     PackStore
	profiles  ProfileStore
	templates TemplateStore
	vault     VaultStore
	files     storage.Storage
	assembler *assembler.Assembler
	exporter  *exporter.Exporter
	detector  AnnexureDetector
	library   *library.Library
	now       func() time.Time
	logger    *zap.Logger
}

// PackServiceOption is a functional option for PackService
type PackServiceOption func(*PackService)

// WithPackStore sets the pack store
func WithPackStore(store PackStore) PackServiceOption {
	return func(s *PackService) {
		s.packs = store
	}
}

// WithProfileStore sets the profile store
func WithProfileStore(store ProfileStore) PackServiceOption {
	return func(s *PackService) {
		s.profiles = store
	}
}

// WithTemplateStore sets the template store
func WithTemplateStore(store TemplateStore) PackServiceOption {
	return func(s *PackService) {
		s.templates = store
	}
}

// WithVaultStore sets the vault store
func WithVaultStore(store VaultStore) PackServiceOption {
	return func(s *PackService) {
		s.vault = store
	}
}

// WithStorage sets the file storage
func WithStorage(files storage.Storage) PackServiceOption {
	return func(s *PackService) {
		s.files = files
	}
}

// WithAssembler sets the assembler
func WithAssembler(a *assembler.Assembler) PackServiceOption {
	return func(s *PackService) {
		s.assembler = a
	}
}

// WithExporter sets the exporter
func WithExporter(e *exporter.Exporter) PackServiceOption {
	return func(s *PackService) {
		s.exporter = e
	}
}

// WithDetector sets the annexure detector
func WithDetector(d AnnexureDetector) PackServiceOption {
	return func(s *PackService) {
		s.detector = d
	}
}

// WithLibrary sets the standard field and annexure library
func WithLibrary(lib *library.Library) PackServiceOption {
	return func(s *PackService) {
		s.library = lib
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) PackServiceOption {
	return func(s *PackService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) PackServiceOption {
	return func(s *PackService) {
		s.logger = logger
	}
}

// NewPackService creates a new pack service
func NewPackService(opts ...PackServiceOption) *PackService {
	s := &PackService{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.assembler == nil {
		s.assembler = assembler.New(assembler.WithClock(s.now), assembler.WithLogger(s.logger))
	}
	if s.exporter == nil && s.files != nil {
		s.exporter = exporter.New(s.files, exporter.WithLogger(s.logger))
	}
	return s
}

// PackResult carries the pack after an operation
type PackResult struct {
	Pack *models.Pack
}

func (s *PackService) load(ctx context.Context, owner string, id uuid.UUID) (models.Pack, error) {
	if s.packs == nil {
		return models.Pack{}, errors.New("pack store not set")
	}
	p, err := s.packs.LoadPack(ctx, owner, id)
	if err != nil {
		return models.Pack{}, fmt.Errorf("failed to load pack: %w", err)
	}
	if p == nil {
		return models.Pack{}, fmt.Errorf("%w: %s", ErrPackNotFound, id)
	}
	return *p, nil
}

func (s *PackService) save(ctx context.Context, p models.Pack) (*PackResult, error) {
	if err := s.packs.SavePack(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to save pack: %w", err)
	}
	return &PackResult{Pack: &p}, nil
}

func (s *PackService) vaultIndex(ctx context.Context, owner string) (models.VaultIndex, error) {
	if s.vault == nil {
		return models.VaultIndex{}, nil
	}
	idx, err := s.vault.LoadVaultIndex(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}
	return idx, nil
}

func (s *PackService) catalog(ctx context.Context, owner string) (*placeholder.Catalog, []models.Template, error) {
	templates, err := ownerTemplates(ctx, s.templates, s.library, owner)
	if err != nil {
		return nil, nil, err
	}
	return assembler.PackCatalog(schemaOf(s.library), templates...), templates, nil
}

// CreatePackRequest represents a request to create a pack
type CreatePackRequest struct {
	Owner string
	Draft assembler.PackDraft
}

// CreatePack builds a new pack and saves it
func (s *PackService) CreatePack(ctx context.Context, req CreatePackRequest) (*PackResult, error) {
	if s.packs == nil {
		return nil, errors.New("pack store not set")
	}
	draft := req.Draft
	draft.Owner = req.Owner
	p, err := s.assembler.NewPack(draft)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p)
}

// GetPackRequest represents a request to get a pack
type GetPackRequest struct {
	Owner  string
	PackID uuid.UUID
}

// GetPack retrieves a pack with its missing items and attachments plan
// recomputed against the current vault. Nothing is saved.
func (s *PackService) GetPack(ctx context.Context, req GetPackRequest) (*PackResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	vault, err := s.vaultIndex(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	out := s.assembler.RecomputeMissing(p, vault)
	return &PackResult{Pack: &out}, nil
}

// ListPacksRequest represents a request to list packs
type ListPacksRequest struct {
	Owner  string
	Limit  int
	Offset int
}

// ListPacksResult represents the result of listing packs
type ListPacksResult struct {
	Packs []models.Pack
}

// ListPacks lists the owner's packs
func (s *PackService) ListPacks(ctx context.Context, req ListPacksRequest) (*ListPacksResult, error) {
	if s.packs == nil {
		return nil, errors.New("pack store not set")
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	packs, err := s.packs.ListPacks(ctx, req.Owner, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return &ListPacksResult{Packs: packs}, nil
}

// DeletePack removes a pack and the files stored under it. Vault files are
// owner-level and stay in place.
func (s *PackService) DeletePack(ctx context.Context, req GetPackRequest) error {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return err
	}
	if err := s.packs.DeletePack(ctx, req.Owner, req.PackID); err != nil {
		return fmt.Errorf("failed to delete pack: %w", err)
	}

	if s.files != nil {
		for _, path := range packFiles(p) {
			if err := s.files.Delete(ctx, path); err != nil {
				s.logger.Warn("failed to remove pack file",
					zap.String("pack_id", p.ID.String()),
					zap.String("path", path),
					zap.Error(err))
			}
		}
	}
	s.logger.Info("pack deleted", zap.String("pack_id", p.ID.String()))
	return nil
}

// packFiles lists the stored paths a pack owns: item uploads and generated
// output.
func packFiles(p models.Pack) []string {
	var paths []string
	for _, item := range p.Items {
		for _, ref := range item.FileRefs {
			paths = append(paths, ref.Path)
		}
	}
	docs := append(append([]models.GeneratedDocument(nil), p.GeneratedAnnexures...), p.GeneratedDocs...)
	for _, d := range docs {
		if d.StoredPath != "" {
			paths = append(paths, d.StoredPath)
		}
	}
	for _, t := range p.GeneratedTemplates {
		if t.StoredPath != "" {
			paths = append(paths, t.StoredPath)
		}
	}
	return paths
}

// ToggleChecklistItemRequest represents a manual checklist toggle
type ToggleChecklistItemRequest struct {
	Owner  string
	PackID uuid.UUID
	ItemID string
	Done   bool
}

// ToggleChecklistItem marks one checklist item done or pending
func (s *PackService) ToggleChecklistItem(ctx context.Context, req ToggleChecklistItemRequest) (*PackResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	status := models.ItemPending
	if req.Done {
		status = models.ItemDone
	}
	out, err := s.assembler.ApplyChecklistToggle(p, req.ItemID, status)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, out)
}

// SetItemStatusRequest represents a request to set an item status
type SetItemStatusRequest struct {
	Owner  string
	PackID uuid.UUID
	ItemID string
	Status models.ItemStatus
}

// SetItemStatus sets one checklist item to any status
func (s *PackService) SetItemStatus(ctx context.Context, req SetItemStatusRequest) (*PackResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	out, err := s.assembler.SetItemStatus(p, req.ItemID, req.Status)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, out)
}

// SetChoiceFieldRequest represents a request to set a choice field
type SetChoiceFieldRequest struct {
	Owner  string
	PackID uuid.UUID
	Key    string
	Value  string
}

// SetChoiceFieldResult represents the result of setting a choice field
type SetChoiceFieldResult struct {
	Pack    *models.Pack
	Changed bool
}

// SetChoiceField validates and stores a choice toggle. An unchanged value
// is not saved again.
func (s *PackService) SetChoiceField(ctx context.Context, req SetChoiceFieldRequest) (*SetChoiceFieldResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	catalog, _, err := s.catalog(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	out, changed, err := s.assembler.SetChoiceField(p, req.Key, req.Value, catalog)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &SetChoiceFieldResult{Pack: &p}, nil
	}
	saved, err := s.save(ctx, out)
	if err != nil {
		return nil, err
	}
	return &SetChoiceFieldResult{Pack: saved.Pack, Changed: true}, nil
}

// SaveFieldOverridesRequest represents a request to save field overrides
type SaveFieldOverridesRequest struct {
	Owner  string
	PackID uuid.UUID
	Fields map[string]string
	// Remember also copies the saved values into the owner's profile
	// memory so later packs start with them.
	Remember bool
}

// SaveFieldOverridesResult represents the result of saving field overrides
type SaveFieldOverridesResult struct {
	Pack    *models.Pack
	Updated int
}

// SaveFieldOverrides stores free-text overrides for the pack's text fields
func (s *PackService) SaveFieldOverrides(ctx context.Context, req SaveFieldOverridesRequest) (*SaveFieldOverridesResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	catalog, _, err := s.catalog(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	out, updated := s.assembler.SaveFieldOverrides(p, req.Fields, catalog)
	if updated == 0 {
		return &SaveFieldOverridesResult{Pack: &p}, nil
	}
	saved, err := s.save(ctx, out)
	if err != nil {
		return nil, err
	}
	if req.Remember {
		if err := s.remember(ctx, req.Owner, req.Fields, out.FieldOverrides); err != nil {
			s.logger.Warn("failed to update profile memory",
				zap.String("owner", req.Owner),
				zap.Error(err))
		}
	}
	return &SaveFieldOverridesResult{Pack: saved.Pack, Updated: updated}, nil
}

func (s *PackService) remember(ctx context.Context, owner string, raw, saved map[string]string) error {
	if s.profiles == nil {
		return nil
	}
	memory, err := s.profiles.LoadProfileMemory(ctx, owner)
	if err != nil {
		return err
	}
	if memory == nil {
		memory = &models.ProfileMemory{YojID: owner}
	}
	if memory.Fields == nil {
		memory.Fields = models.FieldValues{}
	}
	for rk := range raw {
		key := string(placeholder.Normalize(rk))
		if v, ok := saved[key]; ok {
			memory.Fields[key] = v
		}
	}
	memory.UpdatedAt = s.now()
	return s.profiles.SaveProfileMemory(ctx, memory)
}

// DetectAnnexuresRequest represents a request to detect a pack's annexures.
// Titles, when given, are used instead of asking the detector.
type DetectAnnexuresRequest struct {
	Owner      string
	PackID     uuid.UUID
	NoticeText string
	Titles     []string
}

// AnnexureMatch pairs a detected title with the template chosen for it
type AnnexureMatch struct {
	Title      string `json:"title"`
	TemplateID string `json:"templateId"`
}

// DetectAnnexuresResult represents the result of annexure detection
type DetectAnnexuresResult struct {
	Pack      *models.Pack
	Matched   []AnnexureMatch
	Unmatched []string
}

// DetectAnnexures matches annexure titles from a tender notice against the
// owner's annexure templates and the standard library, and adds the
// matches to the pack's annexure list.
func (s *PackService) DetectAnnexures(ctx context.Context, req DetectAnnexuresRequest) (*DetectAnnexuresResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}

	titles := req.Titles
	if len(titles) == 0 {
		if strings.TrimSpace(req.NoticeText) == "" {
			return nil, fmt.Errorf("%w: notice text or titles required", ErrInvalidRequest)
		}
		if s.detector == nil {
			return nil, ErrDetectorUnavailable
		}
		titles, err = s.detector.DetectAnnexures(ctx, req.NoticeText)
		if err != nil {
			return nil, err
		}
	}

	own, err := ownerTemplates(ctx, s.templates, nil, req.Owner)
	if err != nil {
		return nil, err
	}
	res := &DetectAnnexuresResult{Matched: []AnnexureMatch{}, Unmatched: []string{}}
	ids := append([]string(nil), p.AnnexureList...)
	for _, title := range titles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		id, ok := matchAnnexure(title, own, s.library)
		if !ok {
			res.Unmatched = append(res.Unmatched, title)
			continue
		}
		res.Matched = append(res.Matched, AnnexureMatch{Title: title, TemplateID: id})
		ids = append(ids, id)
	}

	if len(res.Matched) == 0 {
		res.Pack = &p
		return res, nil
	}
	saved, err := s.save(ctx, s.assembler.SelectAnnexures(p, ids))
	if err != nil {
		return nil, err
	}
	res.Pack = saved.Pack
	s.logger.Info("annexures detected",
		zap.String("pack_id", p.ID.String()),
		zap.Int("matched", len(res.Matched)),
		zap.Int("unmatched", len(res.Unmatched)))
	return res, nil
}

// matchAnnexure prefers the owner's own annexure templates, by name, over
// the library's names and aliases.
func matchAnnexure(title string, own []models.Template, lib *library.Library) (string, bool) {
	want := library.MatchKey(title)
	for _, t := range own {
		if t.Kind != models.KindAnnexure {
			continue
		}
		if k := library.MatchKey(t.Name); k != "" && (k == want || strings.Contains(want, k)) {
			return t.ID, true
		}
	}
	if lib != nil {
		if a, ok := lib.Match(title); ok {
			return a.ID, true
		}
	}
	return "", false
}

// GenerateAnnexuresRequest represents a request to generate annexures
type GenerateAnnexuresRequest struct {
	Owner  string
	PackID uuid.UUID
	Tables map[string]placeholder.TableRows
}

// GenerateAnnexuresResult represents the result of generating annexures
type GenerateAnnexuresResult struct {
	Pack      *models.Pack
	Generated []models.GeneratedDocument
	NotFound  []string
}

// GenerateAnnexures renders every annexure on the pack's list
func (s *PackService) GenerateAnnexures(ctx context.Context, req GenerateAnnexuresRequest) (*GenerateAnnexuresResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	in, err := loadInputs(ctx, s.profiles, req.Owner, req.Tables)
	if err != nil {
		return nil, err
	}
	_, templates, err := s.catalog(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	out, res, err := s.assembler.GenerateAnnexures(p, in, templates)
	if err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, out)
	if err != nil {
		return nil, err
	}
	return &GenerateAnnexuresResult{Pack: saved.Pack, Generated: res.Generated, NotFound: res.NotFound}, nil
}

// GenerateTemplatesRequest represents a request to generate templates
type GenerateTemplatesRequest struct {
	Owner  string
	PackID uuid.UUID
	Tables map[string]placeholder.TableRows
}

// GenerateTemplatesResult represents the result of generating templates
type GenerateTemplatesResult struct {
	Pack      *models.Pack
	Generated []models.GeneratedTemplate
}

// GenerateTemplates renders and stores every template applicable to the pack
func (s *PackService) GenerateTemplates(ctx context.Context, req GenerateTemplatesRequest) (*GenerateTemplatesResult, error) {
	if s.files == nil {
		return nil, errors.New("storage not set")
	}
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	in, err := loadInputs(ctx, s.profiles, req.Owner, req.Tables)
	if err != nil {
		return nil, err
	}
	_, templates, err := s.catalog(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	out, generated, err := s.assembler.GenerateTemplates(ctx, p, in, templates, s.files)
	if err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, out)
	if err != nil {
		return nil, err
	}
	return &GenerateTemplatesResult{Pack: saved.Pack, Generated: generated}, nil
}

// GenerateDocumentRequest represents a request to render one template
type GenerateDocumentRequest struct {
	Owner      string
	PackID     uuid.UUID
	TemplateID string
	Tables     map[string]placeholder.TableRows
}

// GenerateDocumentResult represents the result of rendering one template
type GenerateDocumentResult struct {
	Pack     *models.Pack
	Document models.GeneratedDocument
}

// GenerateDocument renders a single template of any kind into the pack's
// generated documents
func (s *PackService) GenerateDocument(ctx context.Context, req GenerateDocumentRequest) (*GenerateDocumentResult, error) {
	if s.files == nil {
		return nil, errors.New("storage not set")
	}
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	_, templates, err := s.catalog(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	var tpl *models.Template
	for i := range templates {
		if templates[i].ID == req.TemplateID {
			tpl = &templates[i]
			break
		}
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, req.TemplateID)
	}
	in, err := loadInputs(ctx, s.profiles, req.Owner, req.Tables)
	if err != nil {
		return nil, err
	}
	out, doc, err := s.assembler.GenerateDocument(ctx, p, in, *tpl, s.files)
	if err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, out)
	if err != nil {
		return nil, err
	}
	return &GenerateDocumentResult{Pack: saved.Pack, Document: doc}, nil
}

// MapVaultDocumentRequest represents a request to map a vault document
type MapVaultDocumentRequest struct {
	Owner      string
	PackID     uuid.UUID
	ItemID     string
	FileID     string
	Confidence float64
	Reason     string
}

// MapVaultDocument links a checklist item to one of the owner's live vault
// files
func (s *PackService) MapVaultDocument(ctx context.Context, req MapVaultDocumentRequest) (*PackResult, error) {
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	vault, err := s.vaultIndex(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	if _, ok := vault.Live(req.FileID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrVaultFileNotFound, req.FileID)
	}
	out, err := s.assembler.MapVaultDocument(p, req.ItemID, req.FileID, req.Confidence, req.Reason, vault)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, out)
}

// AttachFileRequest represents an upload against a checklist item
type AttachFileRequest struct {
	Owner    string
	PackID   uuid.UUID
	ItemID   string
	Filename string
	Data     io.Reader
}

// AttachFile stores an uploaded file under the pack and records it on the
// item. The stored file is removed again if the pack cannot be saved.
func (s *PackService) AttachFile(ctx context.Context, req AttachFileRequest) (*PackResult, error) {
	if s.files == nil {
		return nil, errors.New("storage not set")
	}
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	if p.ChecklistIndex(req.ItemID) < 0 {
		return nil, fmt.Errorf("%w: %s", assembler.ErrItemNotFound, req.ItemID)
	}
	vault, err := s.vaultIndex(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	key := storage.ItemPath(req.Owner, p.ID, req.ItemID, uuid.New(), req.Filename)
	stored, err := s.files.Put(ctx, key, req.Data, "")
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	out, err := s.assembler.AttachFile(p, req.ItemID, models.FileRef{Path: stored, Name: req.Filename}, vault)
	if err == nil {
		var res *PackResult
		if res, err = s.save(ctx, out); err == nil {
			return res, nil
		}
	}
	if delErr := s.files.Delete(ctx, stored); delErr != nil {
		s.logger.Warn("failed to remove orphaned upload",
			zap.String("path", stored),
			zap.Error(delErr))
	}
	return nil, err
}

// PrintPackRequest represents a request for a print document
type PrintPackRequest struct {
	Owner      string
	PackID     uuid.UUID
	View       exporter.ViewMode
	Density    exporter.Density
	Letterhead bool
}

// PrintPackResult represents the rendered print document
type PrintPackResult struct {
	HTML string
}

// PrintPack renders the pack's print document. Stored template output that
// cannot be read is left out of the document.
func (s *PackService) PrintPack(ctx context.Context, req PrintPackRequest) (*PrintPackResult, error) {
	if s.exporter == nil {
		return nil, errors.New("exporter not set")
	}
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	in, err := loadInputs(ctx, s.profiles, req.Owner, nil)
	if err != nil {
		return nil, err
	}
	vault, err := s.vaultIndex(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	html, err := s.exporter.PrintHTML(exporter.PrintInput{
		Pack:         p,
		Profile:      in.Profile,
		Vault:        vault,
		View:         req.View,
		Density:      req.Density,
		Letterhead:   req.Letterhead,
		TemplateHTML: s.templateHTML(ctx, p),
	})
	if err != nil {
		return nil, err
	}
	return &PrintPackResult{HTML: html}, nil
}

func (s *PackService) templateHTML(ctx context.Context, p models.Pack) map[string]string {
	out := make(map[string]string, len(p.GeneratedTemplates))
	if s.files == nil {
		return out
	}
	for _, t := range p.GeneratedTemplates {
		if t.StoredPath == "" {
			continue
		}
		rc, err := s.files.OpenOwned(ctx, p.YojID, t.StoredPath)
		if err != nil {
			s.logger.Debug("generated template unreadable",
				zap.String("pack_id", p.ID.String()),
				zap.String("tpl_id", t.TplID),
				zap.Error(err))
			continue
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		out[t.TplID] = string(b)
	}
	return out
}

// ExportPackRequest represents a request for a ZIP bundle
type ExportPackRequest struct {
	Owner   string
	PackID  uuid.UUID
	Density exporter.Density
}

// ExportPack writes the pack's ZIP bundle to w
func (s *PackService) ExportPack(ctx context.Context, req ExportPackRequest, w io.Writer) (*exporter.ExportReport, error) {
	if s.exporter == nil {
		return nil, errors.New("exporter not set")
	}
	p, err := s.load(ctx, req.Owner, req.PackID)
	if err != nil {
		return nil, err
	}
	in, err := loadInputs(ctx, s.profiles, req.Owner, nil)
	if err != nil {
		return nil, err
	}
	vault, err := s.vaultIndex(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	return s.exporter.ExportZip(ctx, exporter.ExportInput{
		Pack:         p,
		Profile:      in.Profile,
		Vault:        vault,
		Density:      req.Density,
		TemplateHTML: s.templateHTML(ctx, p),
	}, w)
}
