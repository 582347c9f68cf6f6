package repositories

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
	// ErrVersionConflict is returned when a save is based on a stale read.
	ErrVersionConflict = errors.New("document was modified by another request")
)

// Kind namespaces documents inside a store.
type Kind string

const (
	KindMatch      Kind = "match"
	KindTeamMatch  Kind = "team_match"
	KindTournament Kind = "tournament"
)

// DocumentStore persists JSON documents with an optimistic version counter.
// Insert starts a document at version 1; Update only succeeds when the stored
// version still equals expectedVersion and returns the new version.
type DocumentStore interface {
	Insert(ctx context.Context, kind Kind, id string, body []byte) error
	Get(ctx context.Context, kind Kind, id string) ([]byte, int, error)
	Update(ctx context.Context, kind Kind, id string, expectedVersion int, body []byte) (int, error)
}

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
