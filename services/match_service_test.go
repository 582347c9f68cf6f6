package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/scoring"
	"github.com/Dosada05/tabletennis-scoring/storage"
)

func createSingles(t *testing.T, env *testEnv, sets int) *models.Match {
	t.Helper()
	m, err := env.matches.CreateMatch(context.Background(), organizerID, CreateMatchInput{
		Type:         models.MatchTypeSingles,
		Participants: []int{11, 22},
		NumberOfSets: sets,
		ScorerID:     intPtr(scorerID),
	})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return m
}

func scoreN(t *testing.T, env *testEnv, id string, side string, n int) *ScoreResult {
	t.Helper()
	var res *ScoreResult
	for i := 0; i < n; i++ {
		var err error
		res, err = env.matches.ScorePoint(context.Background(), scorerID, id, ScorePointInput{
			SideSelector: SideSelector{Side: strPtr(side)},
		})
		if err != nil {
			t.Fatalf("ScorePoint %d for %s: %v", i+1, side, err)
		}
	}
	return res
}

func TestCreateMatchValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name    string
		input   CreateMatchInput
		wantErr error
	}{
		{"even number of sets", CreateMatchInput{Type: models.MatchTypeSingles, Participants: []int{1, 2}, NumberOfSets: 4}, scoring.ErrInvalidNumberOfSets},
		{"too many sets", CreateMatchInput{Type: models.MatchTypeSingles, Participants: []int{1, 2}, NumberOfSets: 11}, scoring.ErrInvalidNumberOfSets},
		{"singles with three players", CreateMatchInput{Type: models.MatchTypeSingles, Participants: []int{1, 2, 3}, NumberOfSets: 3}, ErrInvalidParticipants},
		{"doubles with two players", CreateMatchInput{Type: models.MatchTypeDoubles, Participants: []int{1, 2}, NumberOfSets: 3}, ErrInvalidParticipants},
		{"duplicate player", CreateMatchInput{Type: models.MatchTypeSingles, Participants: []int{4, 4}, NumberOfSets: 3}, ErrInvalidParticipants},
		{"unknown type", CreateMatchInput{Type: "triples", Participants: []int{1, 2}, NumberOfSets: 3}, ErrValidationFailed},
		{"bad first server", CreateMatchInput{Type: models.MatchTypeSingles, Participants: []int{1, 2}, NumberOfSets: 3, FirstServer: strPtr("side3")}, scoring.ErrInvalidSide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.matches.CreateMatch(context.Background(), organizerID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := env.matches.CreateMatch(context.Background(), 0, CreateMatchInput{}); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("anonymous create: err = %v", err)
	}
}

func TestCreateMatchDefaults(t *testing.T) {
	env := newTestEnv(t)
	m, err := env.matches.CreateMatch(context.Background(), organizerID, CreateMatchInput{
		Type:         models.MatchTypeDoubles,
		Participants: []int{1, 2, 3, 4},
		NumberOfSets: 5,
	})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if m.ID == "" || m.Version != 1 {
		t.Fatalf("id %q version %d", m.ID, m.Version)
	}
	if m.ScorerID != organizerID || m.CreatedBy != organizerID {
		t.Fatalf("scorer %d created by %d", m.ScorerID, m.CreatedBy)
	}
	if m.Status != models.StatusScheduled || len(m.Games) != 1 || m.CurrentGame != 1 {
		t.Fatalf("fresh match state: %+v", m.Scoresheet)
	}
	if !m.CreatedAt.Equal(testStart) {
		t.Fatalf("created at %v, want %v", m.CreatedAt, testStart)
	}
}

func TestScorePointCompletesAndArchives(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 1)

	var res *ScoreResult
	for i := 0; i < scoring.PointsToWinGame; i++ {
		var err error
		res, err = env.matches.ScorePoint(context.Background(), scorerID, m.ID, ScorePointInput{
			SideSelector: SideSelector{PlayerID: intPtr(22)},
			Shots:        []models.Shot{{Stroke: models.StrokeForehand}},
		})
		if err != nil {
			t.Fatalf("point %d: %v", i+1, err)
		}
	}

	if res.Progress.MatchWinner == nil || *res.Progress.MatchWinner != models.Side2 {
		t.Fatalf("match winner = %v, want side2", res.Progress.MatchWinner)
	}
	got, err := env.matches.GetMatch(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if got.Status != models.MatchStatusCompleted || got.SetTally.Side2 != 1 {
		t.Fatalf("stored match: status %s tally %+v", got.Status, got.SetTally)
	}
	if got.Version != 1+scoring.PointsToWinGame {
		t.Fatalf("version = %d, want %d", got.Version, 1+scoring.PointsToWinGame)
	}
	if n := env.publisher.count(events.MatchCompleted); n != 1 {
		t.Fatalf("%d completion events, want 1", n)
	}
	if n := env.publisher.count(events.MatchUpdated); n != scoring.PointsToWinGame-1 {
		t.Fatalf("%d update events, want %d", n, scoring.PointsToWinGame-1)
	}
	if !env.uploader.has(storage.MatchArchiveKey(m.ID)) {
		t.Fatal("completed match was not archived")
	}

	_, err = env.matches.ScorePoint(context.Background(), scorerID, m.ID, ScorePointInput{
		SideSelector: SideSelector{Side: strPtr("side1")},
	})
	if !errors.Is(err, scoring.ErrMatchAlreadyCompleted) {
		t.Fatalf("point after completion: err = %v", err)
	}
}

func TestScorePointErrors(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)

	tests := []struct {
		name    string
		userID  int
		id      string
		sel     SideSelector
		wantErr error
	}{
		{"stranger", strangerID, m.ID, SideSelector{Side: strPtr("side1")}, ErrForbiddenOperation},
		{"unknown match", scorerID, "missing", SideSelector{Side: strPtr("side1")}, ErrMatchNotFound},
		{"no side", scorerID, m.ID, SideSelector{}, ErrSideRequired},
		{"bad side", scorerID, m.ID, SideSelector{Side: strPtr("left")}, scoring.ErrInvalidSide},
		{"player not in match", scorerID, m.ID, SideSelector{PlayerID: intPtr(5)}, scoring.ErrInvalidSide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.matches.ScorePoint(context.Background(), tt.userID, tt.id, ScorePointInput{SideSelector: tt.sel})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, _ := env.matches.GetMatch(context.Background(), m.ID)
	if got.Version != 1 || got.Current().TotalPoints() != 0 {
		t.Fatalf("failed requests changed the match: version %d", got.Version)
	}
	if len(env.publisher.types()) != 0 {
		t.Fatalf("failed requests published %v", env.publisher.types())
	}
}

func TestOrganizerMayScore(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)
	if _, err := env.matches.StartMatch(context.Background(), organizerID, m.ID); err != nil {
		t.Fatalf("organizer StartMatch: %v", err)
	}
}

func TestRetractPointAcrossGameBoundary(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)
	res := scoreN(t, env, m.ID, "side1", scoring.PointsToWinGame)
	if res.Progress.NextGame != 2 {
		t.Fatalf("next game = %d, want 2", res.Progress.NextGame)
	}

	got, err := env.matches.RetractPoint(context.Background(), scorerID, m.ID, SideSelector{Side: strPtr("side1")})
	if err != nil {
		t.Fatalf("RetractPoint: %v", err)
	}
	if got.CurrentGame != 1 || len(got.Games) != 1 {
		t.Fatalf("current game %d with %d games, want back in game 1", got.CurrentGame, len(got.Games))
	}
	g := got.Game(1)
	if g.Side1Score != 10 || g.Completed || got.SetTally.Side1 != 0 {
		t.Fatalf("game 1 after undo: %+v tally %+v", g, got.SetTally)
	}
}

func TestSetGameScoreOpensNextGame(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)

	res, err := env.matches.SetGameScore(context.Background(), scorerID, m.ID, 1, 9, 11)
	if err != nil {
		t.Fatalf("SetGameScore: %v", err)
	}
	if res.Progress.GameWinner == nil || *res.Progress.GameWinner != models.Side2 || res.Progress.NextGame != 2 {
		t.Fatalf("progress %+v", res.Progress)
	}
	if res.Match.Status != models.StatusInProgress || res.Match.SetTally.Side2 != 1 {
		t.Fatalf("status %s tally %+v", res.Match.Status, res.Match.SetTally)
	}

	if _, err := env.matches.SetGameScore(context.Background(), scorerID, m.ID, 1, -1, 3); !errors.Is(err, scoring.ErrInvalidScore) {
		t.Fatalf("negative score: err = %v", err)
	}
	if _, err := env.matches.SetGameScore(context.Background(), scorerID, m.ID, 7, 1, 3); !errors.Is(err, scoring.ErrGameNotFound) {
		t.Fatalf("unknown game: err = %v", err)
	}
}

func TestResetGameReopensMatch(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)
	scoreN(t, env, m.ID, "side1", scoring.PointsToWinGame)
	scoreN(t, env, m.ID, "side1", scoring.PointsToWinGame)

	got, err := env.matches.ResetGame(context.Background(), scorerID, m.ID, 2)
	if err != nil {
		t.Fatalf("ResetGame: %v", err)
	}
	if got.Status != models.StatusInProgress || got.Winner != nil || got.SetTally.Side1 != 1 {
		t.Fatalf("after reset: status %s winner %v tally %+v", got.Status, got.Winner, got.SetTally)
	}
	if got.CurrentGame != 2 {
		t.Fatalf("current game = %d, want 2", got.CurrentGame)
	}

	got, err = env.matches.ResetMatch(context.Background(), scorerID, m.ID)
	if err != nil {
		t.Fatalf("ResetMatch: %v", err)
	}
	if got.Status != models.StatusScheduled || len(got.Games) != 1 || got.NumberOfSets != 3 {
		t.Fatalf("after full reset: %+v", got.Scoresheet)
	}
}

func TestReopeningCompletedMatchRemovesArchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := createSingles(t, env, 1)
	key := storage.MatchArchiveKey(m.ID)

	res := scoreN(t, env, m.ID, "side1", scoring.PointsToWinGame)
	if res.Match.Status != models.MatchStatusCompleted || !env.uploader.has(key) {
		t.Fatalf("completed match should be archived: status %s", res.Match.Status)
	}

	got, err := env.matches.ResetMatch(ctx, scorerID, m.ID)
	if err != nil {
		t.Fatalf("ResetMatch: %v", err)
	}
	if got.Status != models.StatusScheduled {
		t.Fatalf("status after reset = %s", got.Status)
	}
	if env.uploader.has(key) {
		t.Fatalf("archive of a reopened match is still stored")
	}

	if _, err := env.matches.CancelMatch(ctx, scorerID, m.ID); err != nil {
		t.Fatalf("CancelMatch: %v", err)
	}
	if env.uploader.has(key) {
		t.Fatalf("cancelled match has a completed-result archive")
	}
}

func TestRetractAfterCompletionRemovesArchive(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 1)
	scoreN(t, env, m.ID, "side2", scoring.PointsToWinGame)

	got, err := env.matches.RetractPoint(context.Background(), scorerID, m.ID, SideSelector{Side: strPtr("side2")})
	if err != nil {
		t.Fatalf("RetractPoint: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Fatalf("status after retract = %s", got.Status)
	}
	if env.uploader.has(storage.MatchArchiveKey(m.ID)) {
		t.Fatalf("archive survived the retraction of the deciding point")
	}

	scoreN(t, env, m.ID, "side2", 1)
	if !env.uploader.has(storage.MatchArchiveKey(m.ID)) {
		t.Fatalf("completing the match again should archive it again")
	}
}

func TestCancelMatch(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)

	if _, err := env.matches.CancelMatch(context.Background(), scorerID, m.ID); err != nil {
		t.Fatalf("CancelMatch: %v", err)
	}
	_, err := env.matches.ScorePoint(context.Background(), scorerID, m.ID, ScorePointInput{SideSelector: SideSelector{Side: strPtr("side1")}})
	if !errors.Is(err, scoring.ErrMatchNotActive) {
		t.Fatalf("score on cancelled match: err = %v", err)
	}
	if _, err := env.matches.CancelMatch(context.Background(), scorerID, m.ID); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
	if _, err := env.matches.ServerFor(context.Background(), m.ID); !errors.Is(err, scoring.ErrMatchNotActive) {
		t.Fatalf("ServerFor cancelled match: err = %v", err)
	}
}

func TestServerFor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	singles, err := env.matches.CreateMatch(ctx, scorerID, CreateMatchInput{
		Type:         models.MatchTypeSingles,
		Participants: []int{11, 22},
		NumberOfSets: 3,
		FirstServer:  strPtr("side2"),
	})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	info, err := env.matches.ServerFor(ctx, singles.ID)
	if err != nil {
		t.Fatalf("ServerFor: %v", err)
	}
	if info.Server != models.Side2 || info.PlayerID == nil || *info.PlayerID != 22 {
		t.Fatalf("0-0 server %+v, want side2 / player 22", info)
	}
	scoreN(t, env, singles.ID, "side1", 2)
	info, _ = env.matches.ServerFor(ctx, singles.ID)
	if info.Server != models.Side1 || *info.PlayerID != 11 {
		t.Fatalf("2-0 server %+v, want side1 / player 11", info)
	}

	doubles, err := env.matches.CreateMatch(ctx, scorerID, CreateMatchInput{
		Type:         models.MatchTypeDoubles,
		Participants: []int{1, 2, 3, 4},
		NumberOfSets: 3,
		FirstServer:  strPtr("side1_main"),
	})
	if err != nil {
		t.Fatalf("CreateMatch doubles: %v", err)
	}
	info, _ = env.matches.ServerFor(ctx, doubles.ID)
	if info.Server != models.Side1Main || *info.PlayerID != 1 {
		t.Fatalf("doubles 0-0 server %+v", info)
	}
	scoreN(t, env, doubles.ID, "side1", 4)
	info, _ = env.matches.ServerFor(ctx, doubles.ID)
	if info.Server != models.Side1Partner || *info.PlayerID != 2 {
		t.Fatalf("doubles 4-0 server %+v, want side1_partner / player 2", info)
	}
}

func TestConcurrentScoringKeepsEveryPoint(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		side := "side1"
		if i%2 == 1 {
			side = "side2"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.matches.ScorePoint(context.Background(), scorerID, m.ID, ScorePointInput{
				SideSelector: SideSelector{Side: strPtr(side)},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent ScorePoint: %v", err)
		}
	}

	got, _ := env.matches.GetMatch(context.Background(), m.ID)
	g := got.Game(1)
	if g.Side1Score != 10 || g.Side2Score != 10 {
		t.Fatalf("score %d-%d, want 10-10", g.Side1Score, g.Side2Score)
	}
	if !scoring.InDeuce(*g) {
		t.Fatal("10-10 should be deuce")
	}
}

func TestStaleSaveIsAVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	m := createSingles(t, env, 3)
	ctx := context.Background()

	first, _ := env.matchRepo.GetByID(ctx, m.ID)
	second, _ := env.matchRepo.GetByID(ctx, m.ID)
	if err := env.matchRepo.Update(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	err := env.matchRepo.Update(ctx, second)
	if !errors.Is(err, repositories.ErrVersionConflict) {
		t.Fatalf("stale update: err = %v", err)
	}
	if !errors.Is(handleRepositoryError(err, ErrMatchNotFound), ErrVersionConflict) {
		t.Fatal("repository conflict should map to the service conflict error")
	}
}
