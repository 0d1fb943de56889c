package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/library"
	"tenderpack-backend/models"
	"tenderpack-backend/service"
	"tenderpack-backend/storage"
)

const owner = "yoj-42"

var fixedNow = time.Date(2026, 5, 4, 11, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type memPacks struct {
	packs   map[uuid.UUID]models.Pack
	saves   int
	failing bool
}

func newMemPacks(packs ...models.Pack) *memPacks {
	m := &memPacks{packs: make(map[uuid.UUID]models.Pack)}
	for _, p := range packs {
		m.packs[p.ID] = p
	}
	return m
}

func (m *memPacks) LoadPack(_ context.Context, owner string, id uuid.UUID) (*models.Pack, error) {
	p, ok := m.packs[id]
	if !ok || p.YojID != owner {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (m *memPacks) SavePack(_ context.Context, p *models.Pack) error {
	if m.failing {
		return errors.New("database unavailable")
	}
	m.saves++
	m.packs[p.ID] = p.Clone()
	return nil
}

func (m *memPacks) ListPacks(_ context.Context, owner string, limit, offset int) ([]models.Pack, error) {
	var out []models.Pack
	for _, p := range m.packs {
		if p.YojID == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if offset >= len(out) {
		return []models.Pack{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPacks) DeletePack(_ context.Context, owner string, id uuid.UUID) error {
	if p, ok := m.packs[id]; ok && p.YojID == owner {
		delete(m.packs, id)
	}
	return nil
}

type memProfiles struct {
	profile *models.ContractorProfile
	memory  *models.ProfileMemory
}

func (m *memProfiles) LoadContractorProfile(context.Context, string) (*models.ContractorProfile, error) {
	return m.profile, nil
}

func (m *memProfiles) LoadProfileMemory(context.Context, string) (*models.ProfileMemory, error) {
	return m.memory, nil
}

func (m *memProfiles) SaveContractorProfile(_ context.Context, p *models.ContractorProfile) error {
	m.profile = p
	return nil
}

func (m *memProfiles) SaveProfileMemory(_ context.Context, mem *models.ProfileMemory) error {
	m.memory = mem
	return nil
}

type memTemplates struct {
	templates map[string]models.Template
}

func newMemTemplates(tpls ...models.Template) *memTemplates {
	m := &memTemplates{templates: make(map[string]models.Template)}
	for _, t := range tpls {
		m.templates[t.ID] = t
	}
	return m
}

func (m *memTemplates) LoadTemplate(_ context.Context, owner, id string) (*models.Template, error) {
	t, ok := m.templates[id]
	if !ok || t.YojID != owner {
		return nil, nil
	}
	return &t, nil
}

func (m *memTemplates) SaveTemplate(_ context.Context, t *models.Template) error {
	m.templates[t.ID] = *t
	return nil
}

func (m *memTemplates) ListTemplates(_ context.Context, owner string) ([]models.Template, error) {
	var out []models.Template
	for _, t := range m.templates {
		if t.YojID == owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTemplates) DeleteTemplate(_ context.Context, owner, id string) error {
	if t, ok := m.templates[id]; ok && t.YojID == owner {
		delete(m.templates, id)
	}
	return nil
}

type memVault struct {
	files   []models.VaultFile
	created int
	failing bool
}

func (m *memVault) LoadVaultIndex(context.Context, string) (models.VaultIndex, error) {
	return models.NewVaultIndex(m.files), nil
}

func (m *memVault) Create(_ context.Context, f *models.VaultFile) error {
	if m.failing {
		return errors.New("database unavailable")
	}
	f.UploadedAt = fixedNow
	m.files = append(m.files, *f)
	m.created++
	return nil
}

func (m *memVault) ListByOwner(context.Context, string) ([]models.VaultFile, error) {
	return m.files, nil
}

func (m *memVault) MarkDeleted(_ context.Context, _, id string) error {
	for i := range m.files {
		if m.files[i].ID == id {
			m.files[i].Deleted = true
		}
	}
	return nil
}

type fakeDetector struct {
	titles []string
	notice string
}

func (f *fakeDetector) DetectAnnexures(_ context.Context, notice string) ([]string, error) {
	f.notice = notice
	return f.titles, nil
}

func defaultLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, err := library.Default()
	require.NoError(t, err)
	return lib
}

func localStorage(t *testing.T) (*storage.LocalStorage, string) {
	t.Helper()
	base := t.TempDir()
	s, err := storage.NewLocalStorage(base)
	require.NoError(t, err)
	return s, base
}

func tenderPack() models.Pack {
	return models.Pack{
		ID:         uuid.MustParse("5f0f6a2e-66c1-4b8e-9a0e-2c1d3e4f5a6b"),
		YojID:      owner,
		Title:      "Construction of culvert",
		Source:     models.SourceTender,
		TenderNo:   "RD/2026/44",
		Department: "Rural Development",
		Checklist: []models.ChecklistItem{
			{ItemID: "emd", Title: "EMD receipt", Required: true, Status: models.ItemPending},
			{ItemID: "undertaking", Title: "Undertaking", Required: true, Status: models.ItemPending},
		},
		Items: []models.PackItem{
			{ItemID: "emd", Title: "EMD receipt", Status: models.ItemPending},
			{ItemID: "undertaking", Title: "Undertaking", Status: models.ItemPending},
		},
		FieldOverrides: map[string]string{},
		FieldRegistry:  map[string]string{},
		CreatedAt:      fixedNow.Add(-time.Hour),
		UpdatedAt:      fixedNow.Add(-time.Hour),
	}
}

type fixture struct {
	packs     *memPacks
	profiles  *memProfiles
	templates *memTemplates
	vault     *memVault
	files     *storage.LocalStorage
	base      string
	detector  *fakeDetector
	svc       *service.PackService
}

func newFixture(t *testing.T, packs ...models.Pack) *fixture {
	t.Helper()
	f := &fixture{
		packs: newMemPacks(packs...),
		profiles: &memProfiles{profile: &models.ContractorProfile{
			YojID:          owner,
			FirmName:       "Sharma Constructions",
			ProprietorName: "R. K. Sharma",
			Address:        "12 Station Road",
		}},
		templates: newMemTemplates(),
		vault:     &memVault{},
		detector:  &fakeDetector{},
	}
	f.files, f.base = localStorage(t)
	f.svc = service.NewPackService(
		service.WithPackStore(f.packs),
		service.WithProfileStore(f.profiles),
		service.WithTemplateStore(f.templates),
		service.WithVaultStore(f.vault),
		service.WithStorage(f.files),
		service.WithDetector(f.detector),
		service.WithLibrary(defaultLibrary(t)),
		service.WithClock(clock),
	)
	return f
}
