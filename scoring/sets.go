package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

const MaxNumberOfSets = 9

// ValidNumberOfSets accepts the odd "best of" values 1, 3, 5, 7 and 9.
func ValidNumberOfSets(n int) bool {
	return n >= 1 && n <= MaxNumberOfSets && n%2 == 1
}

// SetsToWin is the clinch threshold ceil(n/2) of a best-of-n match.
func SetsToWin(numberOfSets int) int {
	return (numberOfSets + 1) / 2
}

// RecomputeSetTally counts completed games per winning side. The tally is
// always derived from the games, never incremented in place.
func RecomputeSetTally(games []models.Game) models.SetTally {
	var tally models.SetTally
	for _, g := range games {
		if !g.Completed || g.Winner == nil {
			continue
		}
		switch g.Winner.Base() {
		case models.Side1:
			tally.Side1++
		case models.Side2:
			tally.Side2++
		}
	}
	return tally
}

// CheckMatchWinner returns the side whose tally reached ceil(numberOfSets/2).
func CheckMatchWinner(tally models.SetTally, numberOfSets int) (models.Side, bool) {
	need := SetsToWin(numberOfSets)
	switch {
	case tally.Side1 >= need:
		return models.Side1, true
	case tally.Side2 >= need:
		return models.Side2, true
	}
	return "", false
}

// StartNextGame moves play on to the next game once the current one is
// decided. It does nothing when the match is already decided or the current
// game is still open, so it never leaves a dangling extra game behind.
func StartNextGame(s *models.Scoresheet, now time.Time) (*models.Game, bool) {
	if s.IsTerminal() || s.Winner != nil {
		return nil, false
	}
	if _, decided := CheckMatchWinner(RecomputeSetTally(s.Games), s.NumberOfSets); decided {
		return nil, false
	}
	if cur := s.Current(); cur != nil && !cur.Completed {
		return nil, false
	}

	// A reset can leave an earlier game open; play resumes there first.
	if open := firstOpenGame(s); open != nil {
		s.CurrentGame = open.GameNumber
		return open, true
	}
	if len(s.Games) >= s.NumberOfSets {
		return nil, false
	}

	next := models.NewGame(lastGameNumber(s) + 1)
	start := now
	next.StartTime = &start
	s.Games = append(s.Games, next)
	s.CurrentGame = next.GameNumber
	return &s.Games[len(s.Games)-1], true
}

// ResetGame reverts one game to 0-0 with no shots and no winner. If that
// undoes the match result, the match goes back to in_progress with the tally
// recomputed from the games that remain completed, and the lowest open game
// becomes current.
func ResetGame(s *models.Scoresheet, gameNumber int) error {
	g := s.Game(gameNumber)
	if g == nil {
		return fmt.Errorf("%w: game %d", ErrGameNotFound, gameNumber)
	}
	*g = models.NewGame(gameNumber)
	reconcile(s, time.Time{})
	// A match that stays decided keeps its current game; play only resumes on
	// a reopened match.
	if s.Status == models.MatchStatusCompleted {
		return nil
	}
	if open := firstOpenGame(s); open != nil {
		s.CurrentGame = open.GameNumber
	}
	return nil
}

// ResetMatch reverts the sheet to a single fresh game 1, zero tally and
// scheduled status. Number of sets and first server are kept.
func ResetMatch(s *models.Scoresheet) {
	s.Games = []models.Game{models.NewGame(1)}
	s.CurrentGame = 1
	s.SetTally = models.SetTally{}
	s.Status = models.StatusScheduled
	s.Winner = nil
	s.StartedAt = nil
	s.CompletedAt = nil
}

// Refresh recomputes the tally and decides or reopens the match accordingly.
// A cancelled match only gets its tally refreshed.
func Refresh(s *models.Scoresheet, now time.Time) (models.Side, bool) {
	return reconcile(s, now)
}

func reconcile(s *models.Scoresheet, now time.Time) (models.Side, bool) {
	s.SetTally = RecomputeSetTally(s.Games)
	if s.Status == models.MatchStatusCancelled {
		return "", false
	}
	w, ok := CheckMatchWinner(s.SetTally, s.NumberOfSets)
	if ok {
		if s.Winner == nil || *s.Winner != w || s.Status != models.MatchStatusCompleted {
			s.Winner = models.SidePtr(w)
			s.Status = models.MatchStatusCompleted
			if !now.IsZero() {
				done := now
				s.CompletedAt = &done
			}
		}
		return w, true
	}
	if s.Status == models.MatchStatusCompleted || s.Winner != nil {
		s.Winner = nil
		s.CompletedAt = nil
		s.Status = models.StatusInProgress
	}
	return "", false
}

func firstOpenGame(s *models.Scoresheet) *models.Game {
	var open *models.Game
	for i := range s.Games {
		g := &s.Games[i]
		if g.Completed {
			continue
		}
		if open == nil || g.GameNumber < open.GameNumber {
			open = g
		}
	}
	return open
}

func lastGameNumber(s *models.Scoresheet) int {
	last := 0
	for _, g := range s.Games {
		if g.GameNumber > last {
			last = g.GameNumber
		}
	}
	return last
}
