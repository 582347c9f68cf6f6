package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS documents (
			kind       TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			version    INTEGER     NOT NULL,
			body       JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT documents_pkey PRIMARY KEY (kind, id)
		)`,
		`CREATE INDEX IF NOT EXISTS documents_tournament_idx
			ON documents ((body->>'tournament_id')) WHERE kind IN ('match', 'team_match')`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS documents (
			kind       TEXT     NOT NULL,
			id         TEXT     NOT NULL,
			version    INTEGER  NOT NULL,
			body       TEXT     NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (kind, id)
		)`,
	},
}

// Migrate creates the documents table for driver if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema for %s: %w", driver, err)
		}
	}
	return nil
}
