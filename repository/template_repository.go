package repository

import (
	"context"

	"tenderpack-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TemplateRepository handles database operations for templates and
// annexure templates
type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// SaveTemplate inserts or replaces a template
func (r *TemplateRepository) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	query := `
		INSERT INTO templates (
			yoj_id, id, name, kind, body, checklist_item_id, fields, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (yoj_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			body = EXCLUDED.body,
			checklist_item_id = EXCLUDED.checklist_item_id,
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(
		ctx, query,
		tpl.YojID,
		tpl.ID,
		tpl.Name,
		tpl.Kind,
		tpl.Body,
		tpl.ChecklistItemID,
		tpl.Fields,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)
	return err
}

// LoadTemplate retrieves the owner's template by ID
func (r *TemplateRepository) LoadTemplate(ctx context.Context, owner, id string) (*models.Template, error) {
	tpl := &models.Template{}
	query := `
		SELECT yoj_id, id, name, kind, body, checklist_item_id, fields, created_at, updated_at
		FROM templates
		WHERE yoj_id = $1 AND id = $2`

	err := r.db.QueryRow(ctx, query, owner, id).Scan(
		&tpl.YojID,
		&tpl.ID,
		&tpl.Name,
		&tpl.Kind,
		&tpl.Body,
		&tpl.ChecklistItemID,
		&tpl.Fields,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return tpl, nil
}

// ListTemplates retrieves all of the owner's templates, oldest first so
// that generation order is stable
func (r *TemplateRepository) ListTemplates(ctx context.Context, owner string) ([]models.Template, error) {
	query := `
		SELECT yoj_id, id, name, kind, body, checklist_item_id, fields, created_at, updated_at
		FROM templates
		WHERE yoj_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var tpl models.Template
		err := rows.Scan(
			&tpl.YojID,
			&tpl.ID,
			&tpl.Name,
			&tpl.Kind,
			&tpl.Body,
			&tpl.ChecklistItemID,
			&tpl.Fields,
			&tpl.CreatedAt,
			&tpl.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

// DeleteTemplate deletes the owner's template
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, owner, id string) error {
	query := `DELETE FROM templates WHERE yoj_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, owner, id)
	return err
}
