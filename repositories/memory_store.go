package repositories

import (
	"context"
	"sync"
)

type memoryRecord struct {
	body    []byte
	version int
}

type memoryKey struct {
	kind Kind
	id   string
}

// MemoryDocumentStore keeps documents in process memory. Used when no
// database is configured and in tests.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[memoryKey]memoryRecord
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[memoryKey]memoryRecord)}
}

func (s *MemoryDocumentStore) Insert(ctx context.Context, kind Kind, id string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{kind, id}
	if _, ok := s.docs[key]; ok {
		return ErrDocumentExists
	}
	s.docs[key] = memoryRecord{body: clone(body), version: 1}
	return nil
}

func (s *MemoryDocumentStore) Get(ctx context.Context, kind Kind, id string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[memoryKey{kind, id}]
	if !ok {
		return nil, 0, ErrDocumentNotFound
	}
	return clone(rec.body), rec.version, nil
}

func (s *MemoryDocumentStore) Update(ctx context.Context, kind Kind, id string, expectedVersion int, body []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{kind, id}
	rec, ok := s.docs[key]
	if !ok {
		return 0, ErrDocumentNotFound
	}
	if rec.version != expectedVersion {
		return 0, ErrVersionConflict
	}
	rec = memoryRecord{body: clone(body), version: rec.version + 1}
	s.docs[key] = rec
	return rec.version, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
