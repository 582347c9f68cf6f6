package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type versioned interface {
	DocumentID() string
	DocumentVersion() int
	SetDocumentVersion(v int)
}

// documentRepository maps one model type onto a DocumentStore kind.
type documentRepository[T any, PT interface {
	*T
	versioned
}] struct {
	store    DocumentStore
	kind     Kind
	notFound error
}

func (r documentRepository[T, PT]) create(ctx context.Context, doc PT) error {
	doc.SetDocumentVersion(1)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.kind, err)
	}
	if err := r.store.Insert(ctx, r.kind, doc.DocumentID(), body); err != nil {
		doc.SetDocumentVersion(0)
		return err
	}
	return nil
}

func (r documentRepository[T, PT]) get(ctx context.Context, id string) (PT, error) {
	body, version, err := r.store.Get(ctx, r.kind, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, r.notFound
		}
		return nil, err
	}
	doc := PT(new(T))
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", r.kind, id, err)
	}
	doc.SetDocumentVersion(version)
	return doc, nil
}

// update saves doc if nobody else saved since it was read and bumps its
// version. On ErrVersionConflict the caller should reload and retry.
func (r documentRepository[T, PT]) update(ctx context.Context, doc PT) error {
	expected := doc.DocumentVersion()
	doc.SetDocumentVersion(expected + 1)
	body, err := json.Marshal(doc)
	if err != nil {
		doc.SetDocumentVersion(expected)
		return fmt.Errorf("failed to encode %s: %w", r.kind, err)
	}
	version, err := r.store.Update(ctx, r.kind, doc.DocumentID(), expected, body)
	if err != nil {
		doc.SetDocumentVersion(expected)
		if errors.Is(err, ErrDocumentNotFound) {
			return r.notFound
		}
		return err
	}
	doc.SetDocumentVersion(version)
	return nil
}
