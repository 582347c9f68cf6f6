package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type sqlDialect struct {
	insert string
	get    string
	update string
	exists string
	mapErr func(error) error
}

var postgresDialect = sqlDialect{
	insert: `INSERT INTO documents (kind, id, version, body) VALUES ($1, $2, 1, $3)`,
	get:    `SELECT body, version FROM documents WHERE kind = $1 AND id = $2`,
	update: `
		UPDATE documents
		SET body = $1, version = version + 1, updated_at = NOW()
		WHERE kind = $2 AND id = $3 AND version = $4
		RETURNING version`,
	exists: `SELECT EXISTS (SELECT 1 FROM documents WHERE kind = $1 AND id = $2)`,
	mapErr: handlePostgresError,
}

type sqlDocumentStore struct {
	db      SQLExecutor
	dialect sqlDialect
}

// NewPostgresDocumentStore stores documents as JSONB rows of the documents
// table created by db.Migrate.
func NewPostgresDocumentStore(db SQLExecutor) DocumentStore {
	return &sqlDocumentStore{db: db, dialect: postgresDialect}
}

func (s *sqlDocumentStore) Insert(ctx context.Context, kind Kind, id string, body []byte) error {
	result, err := s.db.ExecContext(ctx, s.dialect.insert, string(kind), id, string(body))
	if err != nil {
		return s.dialect.mapErr(err)
	}
	return checkAffectedRows(result, ErrDocumentExists)
}

func (s *sqlDocumentStore) Get(ctx context.Context, kind Kind, id string) ([]byte, int, error) {
	var (
		body    string
		version int
	)
	err := s.db.QueryRowContext(ctx, s.dialect.get, string(kind), id).Scan(&body, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrDocumentNotFound
		}
		return nil, 0, fmt.Errorf("failed to load %s %s: %w", kind, id, err)
	}
	return []byte(body), version, nil
}

func (s *sqlDocumentStore) Update(ctx context.Context, kind Kind, id string, expectedVersion int, body []byte) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, s.dialect.update, string(body), string(kind), id, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, s.dialect.mapErr(err)
	}

	// No row matched: either the document is gone or someone saved first.
	var exists bool
	if err := s.db.QueryRowContext(ctx, s.dialect.exists, string(kind), id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check %s %s: %w", kind, id, err)
	}
	if !exists {
		return 0, ErrDocumentNotFound
	}
	return 0, ErrVersionConflict
}

func handlePostgresError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "documents_pkey" {
				return ErrDocumentExists
			}
		case "22P02":
			return fmt.Errorf("document body is not valid JSON: %w", err)
		}
	}
	return err
}
