package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"tenderpack-backend/config"
)

var tables = []struct {
	name string
	sql  string
}{
	{
		name: "packs",
		sql: `
CREATE TABLE IF NOT EXISTS packs (
    id UUID PRIMARY KEY,
    yoj_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    -- Full pack document: checklist, items, fields, generated outputs
    data JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "templates",
		sql: `
CREATE TABLE IF NOT EXISTS templates (
    yoj_id TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    kind VARCHAR(20) NOT NULL DEFAULT 'template' CHECK (kind IN ('template', 'annexure')),
    body TEXT NOT NULL DEFAULT '',
    checklist_item_id TEXT NOT NULL DEFAULT '',
    fields JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (yoj_id, id)
);`,
	},
	{
		name: "contractor_profiles",
		sql: `
CREATE TABLE IF NOT EXISTS contractor_profiles (
    yoj_id TEXT PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "profile_memory",
		sql: `
CREATE TABLE IF NOT EXISTS profile_memory (
    yoj_id TEXT PRIMARY KEY,
    fields JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
	{
		name: "vault_files",
		sql: `
CREATE TABLE IF NOT EXISTS vault_files (
    id TEXT PRIMARY KEY,
    yoj_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    filename TEXT NOT NULL DEFAULT '',
    mime_type TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    storage_path TEXT NOT NULL DEFAULT '',
    deleted BOOLEAN NOT NULL DEFAULT false,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
}

var indexes = []struct {
	name string
	sql  string
}{
	{
		name: "Packs by owner and recency",
		sql:  "CREATE INDEX IF NOT EXISTS idx_packs_owner_updated ON packs(yoj_id, updated_at DESC);",
	},
	{
		name: "Templates by kind",
		sql:  "CREATE INDEX IF NOT EXISTS idx_templates_owner_kind ON templates(yoj_id, kind);",
	},
	{
		name: "Live vault files by owner",
		sql:  "CREATE INDEX IF NOT EXISTS idx_vault_files_owner ON vault_files(yoj_id, uploaded_at DESC) WHERE deleted = false;",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", t.name, err)
		}
		log.Printf("✓ Created %s table", t.name)
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Printf("   Tables: %d\n", len(tables))
	fmt.Printf("   Indexes: %d\n", len(indexes))
}
