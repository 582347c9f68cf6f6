package scoring

import (
	"errors"
	"testing"

	"github.com/Dosada05/tabletennis-scoring/models"
)

// winGame scores eleven straight points for side in the current game.
func winGame(t *testing.T, s *models.Scoresheet, side models.Side) Progress {
	t.Helper()
	var p Progress
	for i := 0; i < PointsToWinGame; i++ {
		var err error
		p, err = Score(s, side, []models.Shot{{Stroke: models.StrokeForehand}}, testNow)
		if err != nil {
			t.Fatalf("Score point %d for %s: %v", i+1, side, err)
		}
	}
	if p.GameWinner == nil || *p.GameWinner != side {
		t.Fatalf("game %d should be won by %s, progress %+v", p.GameNumber, side, p)
	}
	return p
}

func completedGame(number int, winner models.Side) models.Game {
	g := models.Game{GameNumber: number, Side1Score: 11, Side2Score: 5}
	if winner == models.Side2 {
		g.Side1Score, g.Side2Score = 5, 11
	}
	Settle(&g, testNow)
	return g
}

func TestValidNumberOfSets(t *testing.T) {
	for _, n := range []int{1, 3, 5, 7, 9} {
		if !ValidNumberOfSets(n) {
			t.Fatalf("%d should be valid", n)
		}
	}
	for _, n := range []int{0, 2, 4, 11, -3} {
		if ValidNumberOfSets(n) {
			t.Fatalf("%d should be invalid", n)
		}
	}
}

func TestRecomputeSetTallyIsIdempotent(t *testing.T) {
	games := []models.Game{
		completedGame(1, models.Side1),
		completedGame(2, models.Side2),
		completedGame(3, models.Side1),
		{GameNumber: 4, Side1Score: 4, Side2Score: 2},
	}
	first := RecomputeSetTally(games)
	second := RecomputeSetTally(games)
	if first != second {
		t.Fatalf("tally changed between calls: %+v vs %+v", first, second)
	}
	if first.Side1 != 2 || first.Side2 != 1 {
		t.Fatalf("tally = %+v, want 2-1", first)
	}
}

func TestCheckMatchWinner(t *testing.T) {
	tests := []struct {
		name    string
		tally   models.SetTally
		sets    int
		want    models.Side
		decided bool
	}{
		{name: "best of 3 at 2-0", tally: models.SetTally{Side1: 2}, sets: 3, want: models.Side1, decided: true},
		{name: "best of 3 at 1-1", tally: models.SetTally{Side1: 1, Side2: 1}, sets: 3},
		{name: "best of 5 at 2-2", tally: models.SetTally{Side1: 2, Side2: 2}, sets: 5},
		{name: "best of 5 at 1-3", tally: models.SetTally{Side1: 1, Side2: 3}, sets: 5, want: models.Side2, decided: true},
		{name: "best of 1", tally: models.SetTally{Side2: 1}, sets: 1, want: models.Side2, decided: true},
		{name: "best of 7 at 3-3", tally: models.SetTally{Side1: 3, Side2: 3}, sets: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CheckMatchWinner(tt.tally, tt.sets)
			if got != tt.want || ok != tt.decided {
				t.Fatalf("CheckMatchWinner = %q, %v; want %q, %v", got, ok, tt.want, tt.decided)
			}
		})
	}
}

func TestBestOfFiveDecidedAfterFourthGame(t *testing.T) {
	s := models.NewScoresheet(5)
	for i, side := range []models.Side{models.Side1, models.Side2, models.Side1} {
		p := winGame(t, &s, side)
		if p.MatchWinner != nil {
			t.Fatalf("match decided too early after game %d", i+1)
		}
	}
	p := winGame(t, &s, models.Side1)
	if p.MatchWinner == nil || *p.MatchWinner != models.Side1 {
		t.Fatalf("match should be won by side1 after game 4, progress %+v", p)
	}
	if s.SetTally.Side1 != 3 || s.SetTally.Side2 != 1 {
		t.Fatalf("tally = %+v, want 3-1", s.SetTally)
	}
	if s.Status != models.MatchStatusCompleted || s.CompletedAt == nil {
		t.Fatalf("status = %s, want completed", s.Status)
	}
	if len(s.Games) != 4 {
		t.Fatalf("games = %d, want 4 (no dangling game)", len(s.Games))
	}
}

func TestStartNextGameGuards(t *testing.T) {
	s := models.NewScoresheet(3)
	if _, ok := StartNextGame(&s, testNow); ok {
		t.Fatalf("next game started while game 1 is open")
	}

	s.Games = []models.Game{completedGame(1, models.Side1)}
	next, ok := StartNextGame(&s, testNow)
	if !ok || next.GameNumber != 2 || s.CurrentGame != 2 {
		t.Fatalf("expected game 2 to start, got %+v ok=%v current=%d", next, ok, s.CurrentGame)
	}

	s.Games = []models.Game{completedGame(1, models.Side1), completedGame(2, models.Side1)}
	s.CurrentGame = 2
	if _, ok := StartNextGame(&s, testNow); ok {
		t.Fatalf("next game started on a decided match")
	}
	if len(s.Games) != 2 {
		t.Fatalf("decided match grew a dangling game")
	}
}

func TestResetDecidingGameReopensMatch(t *testing.T) {
	s := models.NewScoresheet(3)
	winGame(t, &s, models.Side1)
	winGame(t, &s, models.Side2)
	p := winGame(t, &s, models.Side1)
	if p.MatchWinner == nil || s.Status != models.MatchStatusCompleted {
		t.Fatalf("match should be completed")
	}

	if err := ResetGame(&s, 3); err != nil {
		t.Fatalf("ResetGame: %v", err)
	}
	if s.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", s.Status)
	}
	if s.Winner != nil || s.CompletedAt != nil {
		t.Fatalf("winner should be cleared")
	}
	if s.SetTally.Side1 != 1 || s.SetTally.Side2 != 1 {
		t.Fatalf("tally = %+v, want 1-1", s.SetTally)
	}
	g := s.Game(3)
	if !g.IsEmpty() || s.CurrentGame != 3 {
		t.Fatalf("game 3 should be empty and current: %+v current=%d", g, s.CurrentGame)
	}

	if _, err := Score(&s, models.Side2, nil, testNow); err != nil {
		t.Fatalf("scoring after reset: %v", err)
	}
}

func TestResetNonDecidingGameKeepsCompletedMatch(t *testing.T) {
	s := models.NewScoresheet(3)
	winGame(t, &s, models.Side1)
	winGame(t, &s, models.Side2)
	winGame(t, &s, models.Side1)
	if s.Status != models.MatchStatusCompleted || s.CurrentGame != 3 {
		t.Fatalf("match should be completed on game 3, got %s current=%d", s.Status, s.CurrentGame)
	}

	if err := ResetGame(&s, 2); err != nil {
		t.Fatalf("ResetGame: %v", err)
	}
	if s.Status != models.MatchStatusCompleted || s.Winner == nil || *s.Winner != models.Side1 {
		t.Fatalf("match should stay won by side1: %s %v", s.Status, s.Winner)
	}
	if s.SetTally.Side1 != 2 || s.SetTally.Side2 != 0 {
		t.Fatalf("tally = %+v, want 2-0", s.SetTally)
	}
	if s.CurrentGame != 3 {
		t.Fatalf("current game = %d, want 3", s.CurrentGame)
	}
}

func TestResetGameUnknownNumber(t *testing.T) {
	s := models.NewScoresheet(3)
	if err := ResetGame(&s, 4); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestResetMatch(t *testing.T) {
	s := models.NewScoresheet(3)
	s.FirstServer = models.SidePtr(models.Side2)
	winGame(t, &s, models.Side1)
	winGame(t, &s, models.Side1)

	ResetMatch(&s)
	if len(s.Games) != 1 || !s.Games[0].IsEmpty() || s.CurrentGame != 1 {
		t.Fatalf("expected a single fresh game 1, got %+v", s.Games)
	}
	if s.Status != models.StatusScheduled || s.Winner != nil || s.SetTally != (models.SetTally{}) {
		t.Fatalf("match not reset: %+v", s)
	}
	if s.NumberOfSets != 3 || s.FirstServer == nil || *s.FirstServer != models.Side2 {
		t.Fatalf("configuration should survive a reset")
	}
}
