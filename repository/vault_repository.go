package repository

import (
	"context"

	"tenderpack-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VaultRepository handles database operations for vault files
type VaultRepository struct {
	db *pgxpool.Pool
}

// NewVaultRepository creates a new vault repository
func NewVaultRepository(db *pgxpool.Pool) *VaultRepository {
	return &VaultRepository{db: db}
}

// Create creates a new vault file record
func (r *VaultRepository) Create(ctx context.Context, file *models.VaultFile) error {
	query := `
		INSERT INTO vault_files (
			id, yoj_id, title, filename, mime_type, category, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ID,
		file.YojID,
		file.Title,
		file.Filename,
		file.MimeType,
		file.Category,
		file.StoragePath,
	).Scan(&file.UploadedAt)

	return err
}

// ListByOwner retrieves all of the owner's vault files, including soft
// deleted ones
func (r *VaultRepository) ListByOwner(ctx context.Context, owner string) ([]models.VaultFile, error) {
	query := `
		SELECT id, yoj_id, title, filename, mime_type, category, storage_path, deleted, uploaded_at
		FROM vault_files
		WHERE yoj_id = $1
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.VaultFile
	for rows.Next() {
		var file models.VaultFile
		err := rows.Scan(
			&file.ID,
			&file.YojID,
			&file.Title,
			&file.Filename,
			&file.MimeType,
			&file.Category,
			&file.StoragePath,
			&file.Deleted,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// LoadVaultIndex indexes the owner's vault files by ID
func (r *VaultRepository) LoadVaultIndex(ctx context.Context, owner string) (models.VaultIndex, error) {
	files, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return models.NewVaultIndex(files), nil
}

// MarkDeleted soft-deletes a vault file; mappings to it stop counting
func (r *VaultRepository) MarkDeleted(ctx context.Context, owner, id string) error {
	query := `UPDATE vault_files SET deleted = true WHERE yoj_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, owner, id)
	return err
}
