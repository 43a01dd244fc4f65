package sqlstore

import (
	"context"
	"fmt"
)

// Los índices únicos parciales son los que sostienen los invariantes bajo concurrencia:
// una venta viva por animal y una muerte viva por animal.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS animals (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS animals_org_code_uq ON animals (organization_id, code)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		status TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		price NUMERIC(14,2) NOT NULL DEFAULT 0,
		sold_to TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sales_open_animal_uq ON sales (animal_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS sales_org_date_idx ON sales (organization_id, date)`,
	`CREATE TABLE IF NOT EXISTS deaths (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		number INTEGER NOT NULL DEFAULT 1,
		male INTEGER NOT NULL DEFAULT 0,
		female INTEGER NOT NULL DEFAULT 0,
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS deaths_live_animal_uq ON deaths (animal_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS deaths_org_created_idx ON deaths (organization_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS milkings (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		quantity NUMERIC(12,3) NOT NULL,
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS milkings_org_created_idx ON milkings (organization_id, created_at)`,
}

// SQLite: TIMESTAMP para que modernc devuelva time.Time, decimales como TEXT exacto.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS animals (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS animals_org_code_uq ON animals (organization_id, code)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		status TEXT NOT NULL,
		date TIMESTAMP NOT NULL,
		price TEXT NOT NULL DEFAULT '0',
		sold_to TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sales_open_animal_uq ON sales (animal_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS sales_org_date_idx ON sales (organization_id, date)`,
	`CREATE TABLE IF NOT EXISTS deaths (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		number INTEGER NOT NULL DEFAULT 1,
		male INTEGER NOT NULL DEFAULT 0,
		female INTEGER NOT NULL DEFAULT 0,
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS deaths_live_animal_uq ON deaths (animal_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS deaths_org_created_idx ON deaths (organization_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS milkings (
		id TEXT PRIMARY KEY,
		animal_id TEXT NOT NULL REFERENCES animals(id),
		organization_id TEXT NOT NULL,
		animal_type_id TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL,
		user_created_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS milkings_org_created_idx ON milkings (organization_id, created_at)`,
}

func (db *DB) migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if db.driver == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
