package repository

import (
	"context"

	"tenderpack-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles contractor profiles and saved profile memory
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// LoadContractorProfile retrieves the owner's profile
func (r *ProfileRepository) LoadContractorProfile(ctx context.Context, owner string) (*models.ContractorProfile, error) {
	profile := &models.ContractorProfile{}
	query := `SELECT data FROM contractor_profiles WHERE yoj_id = $1`

	if err := r.db.QueryRow(ctx, query, owner).Scan(profile); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// SaveContractorProfile inserts or replaces the owner's profile
func (r *ProfileRepository) SaveContractorProfile(ctx context.Context, profile *models.ContractorProfile) error {
	query := `
		INSERT INTO contractor_profiles (yoj_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (yoj_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, profile.YojID, profile, profile.UpdatedAt)
	return err
}

// LoadProfileMemory retrieves the owner's saved field values
func (r *ProfileRepository) LoadProfileMemory(ctx context.Context, owner string) (*models.ProfileMemory, error) {
	memory := &models.ProfileMemory{YojID: owner}
	query := `SELECT fields, updated_at FROM profile_memory WHERE yoj_id = $1`

	if err := r.db.QueryRow(ctx, query, owner).Scan(&memory.Fields, &memory.UpdatedAt); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return memory, nil
}

// SaveProfileMemory inserts or replaces the owner's saved field values
func (r *ProfileRepository) SaveProfileMemory(ctx context.Context, memory *models.ProfileMemory) error {
	query := `
		INSERT INTO profile_memory (yoj_id, fields, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (yoj_id) DO UPDATE SET
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, memory.YojID, memory.Fields, memory.UpdatedAt)
	return err
}
