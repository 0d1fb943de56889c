package service

import (
	"context"

	"github.com/google/uuid"

	"tenderpack-backend/models"
)

// PackStore persists packs. LoadPack returns (nil, nil) when the owner has
// no pack with that id.
type PackStore interface {
	LoadPack(ctx context.Context, owner string, id uuid.UUID) (*models.Pack, error)
	SavePack(ctx context.Context, pack *models.Pack) error
	ListPacks(ctx context.Context, owner string, limit, offset int) ([]models.Pack, error)
	DeletePack(ctx context.Context, owner string, id uuid.UUID) error
}

// ProfileStore persists contractor profiles and remembered field values.
// Loads return (nil, nil) when nothing is stored yet.
type ProfileStore interface {
	LoadContractorProfile(ctx context.Context, owner string) (*models.ContractorProfile, error)
	LoadProfileMemory(ctx context.Context, owner string) (*models.ProfileMemory, error)
	SaveContractorProfile(ctx context.Context, profile *models.ContractorProfile) error
	SaveProfileMemory(ctx context.Context, memory *models.ProfileMemory) error
}

// TemplateStore persists an owner's templates and annexures.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, owner, id string) (*models.Template, error)
	SaveTemplate(ctx context.Context, tpl *models.Template) error
	ListTemplates(ctx context.Context, owner string) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, owner, id string) error
}

// VaultStore reads an owner's vault.
type VaultStore interface {
	LoadVaultIndex(ctx context.Context, owner string) (models.VaultIndex, error)
}

// VaultFileStore manages vault file records.
type VaultFileStore interface {
	VaultStore
	Create(ctx context.Context, file *models.VaultFile) error
	ListByOwner(ctx context.Context, owner string) ([]models.VaultFile, error)
	MarkDeleted(ctx context.Context, owner, id string) error
}

// AnnexureDetector reads a tender notice and returns the titles of the
// annexures it asks bidders to submit.
type AnnexureDetector interface {
	DetectAnnexures(ctx context.Context, noticeText string) ([]string, error)
}
