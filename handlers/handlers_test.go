package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/tabletennis-scoring/middleware"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/services"
)

const (
	scorer   = 7
	stranger = 8
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := repositories.NewMemoryDocumentStore()
	matchRepo := repositories.NewMatchRepository(store)
	teamRepo := repositories.NewTeamMatchRepository(store)
	tournamentRepo := repositories.NewTournamentRepository(store)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mh := NewMatchHandler(services.NewMatchService(matchRepo, nil, nil, clock, logger))
	th := NewTeamMatchHandler(services.NewTeamMatchService(teamRepo, nil, nil, clock, logger))
	tour := NewTournamentHandler(services.NewTournamentService(tournamentRepo, matchRepo, teamRepo, nil, nil, clock, logger))

	r := chi.NewRouter()
	r.Post("/matches", mh.CreateMatch)
	r.Get("/matches/{matchID}", mh.GetMatch)
	r.Get("/matches/{matchID}/server", mh.GetServer)
	r.Post("/matches/{matchID}/points", mh.ScorePoint)
	r.Post("/matches/{matchID}/points/undo", mh.RetractPoint)
	r.Post("/matches/{matchID}/games/{gameNumber}/score", mh.SetGameScore)
	r.Post("/matches/{matchID}/cancel", mh.CancelMatch)
	r.Post("/team-matches", th.CreateTeamMatch)
	r.Put("/team-matches/{teamMatchID}/lineup", th.SetLineup)
	r.Post("/team-matches/{teamMatchID}/submatches/{index}/reset", th.ResetSubMatch)
	r.Post("/tournaments", tour.CreateHandler)
	r.Get("/tournaments/{tournamentID}/standings", tour.GetStandingsHandler)
	r.Post("/tournaments/{tournamentID}/start", tour.StartHandler)
	r.Get("/tournaments/{tournamentID}/schedule", tour.GetScheduleHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, userID int, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not a JSON object: %q", method, path, rec.Body.String())
	}
	return rec, env
}

func createMatch(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/matches", scorer, map[string]interface{}{
		"type":           "singles",
		"participants":   []int{1, 2},
		"number_of_sets": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create match: status %d body %s", rec.Code, rec.Body.String())
	}
	var m struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env["match"], &m); err != nil || m.ID == "" {
		t.Fatalf("create match: no id in %s", rec.Body.String())
	}
	return m.ID
}

func TestMatchEndpoints(t *testing.T) {
	h := newTestRouter(t)
	id := createMatch(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		userID int
		body   interface{}
		want   int
	}{
		{"get", http.MethodGet, "/matches/" + id, 0, nil, http.StatusOK},
		{"get unknown", http.MethodGet, "/matches/nope", 0, nil, http.StatusNotFound},
		{"score anonymous", http.MethodPost, "/matches/" + id + "/points", 0, map[string]string{"side": "side1"}, http.StatusUnauthorized},
		{"score stranger", http.MethodPost, "/matches/" + id + "/points", stranger, map[string]string{"side": "side1"}, http.StatusForbidden},
		{"score bad json", http.MethodPost, "/matches/" + id + "/points", scorer, `{"side":`, http.StatusBadRequest},
		{"score unknown field", http.MethodPost, "/matches/" + id + "/points", scorer, `{"team":"side1"}`, http.StatusBadRequest},
		{"score bad side", http.MethodPost, "/matches/" + id + "/points", scorer, map[string]string{"side": "side9"}, http.StatusBadRequest},
		{"score", http.MethodPost, "/matches/" + id + "/points", scorer, map[string]string{"side": "side1"}, http.StatusOK},
		{"score by player", http.MethodPost, "/matches/" + id + "/points", scorer, map[string]int{"player_id": 2}, http.StatusOK},
		{"undo", http.MethodPost, "/matches/" + id + "/points/undo", scorer, map[string]string{"side": "side2"}, http.StatusOK},
		{"server", http.MethodGet, "/matches/" + id + "/server", 0, nil, http.StatusOK},
		{"bad game number", http.MethodPost, "/matches/" + id + "/games/x/score", scorer, map[string]int{"side1_score": 1}, http.StatusBadRequest},
		{"unknown game", http.MethodPost, "/matches/" + id + "/games/4/score", scorer, map[string]int{"side1_score": 1}, http.StatusNotFound},
		{"negative score", http.MethodPost, "/matches/" + id + "/games/1/score", scorer, map[string]int{"side1_score": -1}, http.StatusBadRequest},
		{"finish game", http.MethodPost, "/matches/" + id + "/games/1/score", scorer, map[string]int{"side1_score": 11, "side2_score": 3}, http.StatusOK},
		{"score finished match", http.MethodPost, "/matches/" + id + "/points", scorer, map[string]string{"side": "side1"}, http.StatusConflict},
		{"cancel finished match", http.MethodPost, "/matches/" + id + "/cancel", scorer, nil, http.StatusConflict},
		{"server of finished match", http.MethodGet, "/matches/" + id + "/server", 0, nil, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.userID, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Code >= 400 {
				if _, ok := env["error"]; !ok {
					t.Fatalf("error response without error key: %s", rec.Body.String())
				}
			}
		})
	}
}

func TestCreateMatchValidationStatus(t *testing.T) {
	h := newTestRouter(t)
	rec, _ := do(t, h, http.MethodPost, "/matches", scorer, map[string]interface{}{
		"type":           "singles",
		"participants":   []int{1, 2},
		"number_of_sets": 4,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScorePointResponseCarriesProgress(t *testing.T) {
	h := newTestRouter(t)
	id := createMatch(t, h)
	if rec, _ := do(t, h, http.MethodPost, "/matches/"+id+"/games/1/score", scorer, map[string]int{"side1_score": 10, "side2_score": 4}); rec.Code != http.StatusOK {
		t.Fatalf("set score: %d", rec.Code)
	}

	rec, env := do(t, h, http.MethodPost, "/matches/"+id+"/points", scorer, map[string]string{"side": "side1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var progress struct {
		GameWinner  *string `json:"game_winner"`
		MatchWinner *string `json:"match_winner"`
	}
	if err := json.Unmarshal(env["progress"], &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.MatchWinner == nil || *progress.MatchWinner != "side1" {
		t.Fatalf("progress = %s", env["progress"])
	}
}

func TestTeamMatchLineupErrors(t *testing.T) {
	h := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/team-matches", scorer, map[string]interface{}{
		"team1_id":       1,
		"team2_id":       2,
		"format":         "single_double_single",
		"number_of_sets": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team match: %d %s", rec.Code, rec.Body.String())
	}
	var tm struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env["team_match"], &tm)

	rec, env = do(t, h, http.MethodPut, "/team-matches/"+tm.ID+"/lineup", scorer, map[string]interface{}{
		"team1_roles": map[string]int{"A": 1},
		"team2_roles": map[string]int{"X": 3, "Y": 4},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("incomplete lineup: status %d, want 422", rec.Code)
	}
	var details map[string]string
	if err := json.Unmarshal(env["error"], &details); err != nil || details["lineup"] == "" {
		t.Fatalf("422 body should name the lineup problem: %s", rec.Body.String())
	}

	rec, _ = do(t, h, http.MethodPost, "/team-matches/"+tm.ID+"/submatches/0/reset?full=maybe", scorer, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad full flag: status %d, want 400", rec.Code)
	}
	rec, _ = do(t, h, http.MethodPost, "/team-matches/"+tm.ID+"/submatches/0/reset", scorer, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reset before generation: status %d, want 409", rec.Code)
	}
}

func TestTournamentEndpoints(t *testing.T) {
	h := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/tournaments", scorer, map[string]interface{}{
		"name":             "Autumn League",
		"participant_type": "solo",
		"participants":     []int{1, 2, 3, 4},
		"number_of_sets":   3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tournament: %d %s", rec.Code, rec.Body.String())
	}
	var tour struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env["tournament"], &tour)

	if rec, _ := do(t, h, http.MethodPost, "/tournaments/"+tour.ID+"/start", stranger, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger start: %d, want 403", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/tournaments/"+tour.ID+"/start", scorer, nil); rec.Code != http.StatusOK {
		t.Fatalf("start: %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/tournaments/"+tour.ID+"/start", scorer, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second start: %d, want 409", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/tournaments/"+tour.ID+"/standings", 0, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("standings: %d", rec.Code)
	}
	var standings []map[string]int
	if err := json.Unmarshal(env["standings"], &standings); err != nil || len(standings) != 4 {
		t.Fatalf("standings body: %s", rec.Body.String())
	}

	rec, env = do(t, h, http.MethodGet, "/tournaments/"+tour.ID+"/schedule", 0, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: %d", rec.Code)
	}
	var rounds []json.RawMessage
	if err := json.Unmarshal(env["rounds"], &rounds); err != nil || len(rounds) != 3 {
		t.Fatalf("schedule body: %s", rec.Body.String())
	}

	if rec, _ := do(t, h, http.MethodGet, "/tournaments/missing/standings", 0, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing tournament: %d", rec.Code)
	}
}
