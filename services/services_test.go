package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/storage"
)

const (
	scorerID    = 7
	organizerID = 3
	strangerID  = 99
)

var testStart = time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) count(t events.EventType) int {
	n := 0
	for _, got := range p.types() {
		if got == t {
			n++
		}
	}
	return n
}

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return &storage.UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryUploader) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return "https://archive.example.com/" + key
}

func (m *memoryUploader) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type testEnv struct {
	clock      *clockwork.FakeClock
	publisher  *recordingPublisher
	uploader   *memoryUploader
	matches    MatchService
	teams      TeamMatchService
	tournament TournamentService
	matchRepo  repositories.MatchRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryDocumentStore()
	matchRepo := repositories.NewMatchRepository(store)
	teamRepo := repositories.NewTeamMatchRepository(store)
	tournamentRepo := repositories.NewTournamentRepository(store)

	clock := clockwork.NewFakeClockAt(testStart)
	publisher := &recordingPublisher{}
	uploader := &memoryUploader{objects: make(map[string][]byte)}
	archiver := storage.NewArchiver(uploader)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		clock:      clock,
		publisher:  publisher,
		uploader:   uploader,
		matches:    NewMatchService(matchRepo, publisher, archiver, clock, logger),
		teams:      NewTeamMatchService(teamRepo, publisher, archiver, clock, logger),
		tournament: NewTournamentService(tournamentRepo, matchRepo, teamRepo, nil, publisher, clock, logger),
		matchRepo:  matchRepo,
	}
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
