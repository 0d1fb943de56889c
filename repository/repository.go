// Package repository persists packs, templates, contractor profiles and the
// vault index in Postgres. Whole aggregates are stored as JSONB and every
// lookup is scoped by owner. A missing record is reported as (nil, nil).
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
