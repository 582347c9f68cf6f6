package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/handlers"
	"github.com/Dosada05/tabletennis-scoring/middleware"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/services"
)

func newRouter() http.Handler {
	store := repositories.NewMemoryDocumentStore()
	matchRepo := repositories.NewMatchRepository(store)
	teamRepo := repositories.NewTeamMatchRepository(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	SetupRoutes(router, []byte("test-secret"), []string{"*"}, Handlers{
		Match:      handlers.NewMatchHandler(services.NewMatchService(matchRepo, nil, nil, nil, logger)),
		TeamMatch:  handlers.NewTeamMatchHandler(services.NewTeamMatchService(teamRepo, nil, nil, nil, logger)),
		Tournament: handlers.NewTournamentHandler(services.NewTournamentService(repositories.NewTournamentRepository(store), matchRepo, teamRepo, nil, nil, nil, logger)),
		WebSocket:  handlers.NewWebSocketHandler(events.NewHub(logger), logger),
		Format:     handlers.NewFormatHandler(services.NewFormatService()),
	})
	return router
}

func TestRoutes(t *testing.T) {
	router := newRouter()
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"formats", http.MethodGet, "/formats", http.StatusOK},
		{"one format", http.MethodGet, "/formats/three_singles", http.StatusOK},
		{"unknown format", http.MethodGet, "/formats/corbillon", http.StatusNotFound},
		{"public read", http.MethodGet, "/matches/unknown", http.StatusNotFound},
		{"create needs token", http.MethodPost, "/matches", http.StatusUnauthorized},
		{"scoring needs token", http.MethodPost, "/matches/abc/points", http.StatusUnauthorized},
		{"refresh needs token", http.MethodPost, "/tournaments/abc/standings/refresh", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestAuthenticatedCreateThenPublicRead(t *testing.T) {
	router := newRouter()
	token, err := middleware.SignToken([]byte("test-secret"), 5, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	body := strings.NewReader(`{"type":"singles","participants":[1,2],"number_of_sets":3}`)
	req := httptest.NewRequest(http.MethodPost, "/matches", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Match struct {
			ID string `json:"id"`
		} `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/matches/"+env.Match.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("public read: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/matches/"+env.Match.ID+"/server", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("server lookup without token: %d, want 401", rec.Code)
	}
}
