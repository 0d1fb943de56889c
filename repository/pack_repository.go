package repository

import (
	"context"
	"fmt"

	"tenderpack-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PackRepository handles database operations for packs
type PackRepository struct {
	db *pgxpool.Pool
}

// NewPackRepository creates a new pack repository
func NewPackRepository(db *pgxpool.Pool) *PackRepository {
	return &PackRepository{db: db}
}

// SavePack inserts or replaces the pack record. The row is written in a
// single statement so a reader never sees a half-updated pack.
func (r *PackRepository) SavePack(ctx context.Context, pack *models.Pack) error {
	query := `
		INSERT INTO packs (id, yoj_id, title, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		WHERE packs.yoj_id = EXCLUDED.yoj_id`

	tag, err := r.db.Exec(
		ctx, query,
		pack.ID,
		pack.YojID,
		pack.Title,
		pack,
		pack.CreatedAt,
		pack.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pack %s belongs to another owner", pack.ID)
	}
	return nil
}

// LoadPack retrieves the owner's pack by ID
func (r *PackRepository) LoadPack(ctx context.Context, owner string, id uuid.UUID) (*models.Pack, error) {
	pack := &models.Pack{}
	query := `
		SELECT data
		FROM packs
		WHERE id = $1 AND yoj_id = $2`

	err := r.db.QueryRow(ctx, query, id, owner).Scan(pack)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return pack, nil
}

// ListPacks retrieves the owner's packs, most recently updated first
func (r *PackRepository) ListPacks(ctx context.Context, owner string, limit, offset int) ([]models.Pack, error) {
	query := `
		SELECT data
		FROM packs
		WHERE yoj_id = $1
		ORDER BY updated_at DESC`

	args := []interface{}{owner}
	argIndex := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []models.Pack
	for rows.Next() {
		var pack models.Pack
		if err := rows.Scan(&pack); err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}

	return packs, rows.Err()
}

// DeletePack deletes the owner's pack
func (r *PackRepository) DeletePack(ctx context.Context, owner string, id uuid.UUID) error {
	query := `DELETE FROM packs WHERE id = $1 AND yoj_id = $2`
	_, err := r.db.Exec(ctx, query, id, owner)
	return err
}
