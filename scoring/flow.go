package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

// Progress reports what a scoring step decided.
type Progress struct {
	GameNumber  int          `json:"game_number"`
	GameWinner  *models.Side `json:"game_winner,omitempty"`
	MatchWinner *models.Side `json:"match_winner,omitempty"`
	// NextGame is the game opened by this step, 0 if none.
	NextGame int `json:"next_game,omitempty"`
}

// Score runs one point through the sheet: the point is applied to the current
// game, the game is settled, the set tally recomputed, and either the match is
// decided or the next game is opened. A scheduled match starts on its first
// point.
func Score(s *models.Scoresheet, side models.Side, shots []models.Shot, now time.Time) (Progress, error) {
	if side.Base() == "" {
		return Progress{}, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if err := ensurePlayable(s.Status); err != nil {
		return Progress{}, err
	}
	g := s.Current()
	if g == nil {
		return Progress{}, fmt.Errorf("%w: current game %d", ErrGameNotFound, s.CurrentGame)
	}
	if err := ApplyPoint(g, side, shots, now); err != nil {
		return Progress{}, err
	}
	if s.Status == models.StatusScheduled {
		_ = Start(s, now)
	}

	p := Progress{GameNumber: g.GameNumber}
	w, decided := Settle(g, now)
	if !decided {
		return p, nil
	}
	p.GameWinner = models.SidePtr(w)
	advance(s, now, &p)
	return p, nil
}

// Undo takes back the last point side won. When the current game is a fresh
// one that follows a game side just won, play steps back into that game and
// the empty game is dropped. A match decided by the undone point is reopened.
func Undo(s *models.Scoresheet, side models.Side, now time.Time) error {
	base := side.Base()
	if base == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if s.Status == models.MatchStatusCancelled {
		return ErrMatchNotActive
	}
	g := s.Current()
	if g == nil {
		return fmt.Errorf("%w: current game %d", ErrGameNotFound, s.CurrentGame)
	}

	if g.IsEmpty() && g.GameNumber == lastGameNumber(s) {
		prev := s.Game(g.GameNumber - 1)
		if prev != nil && prev.Winner != nil && *prev.Winner == base {
			s.Games = removeGame(s.Games, g.GameNumber)
			s.CurrentGame = prev.GameNumber
			g = s.Game(prev.GameNumber)
		}
	}
	if g.Score(base) == 0 {
		return nil
	}

	if err := RetractLastPoint(g, base); err != nil {
		return err
	}
	Settle(g, now)
	var p Progress
	advance(s, now, &p)
	return nil
}

// SetGameScore applies a manual correction to one game and re-derives the
// game, set and match state from it.
func SetGameScore(s *models.Scoresheet, gameNumber, side1Score, side2Score int, now time.Time) (Progress, error) {
	if s.Status == models.MatchStatusCancelled {
		return Progress{}, ErrMatchNotActive
	}
	g := s.Game(gameNumber)
	if g == nil {
		return Progress{}, fmt.Errorf("%w: game %d", ErrGameNotFound, gameNumber)
	}
	if err := ApplyManualScore(g, side1Score, side2Score); err != nil {
		return Progress{}, err
	}
	if g.StartTime == nil && g.TotalPoints() > 0 {
		start := now
		g.StartTime = &start
	}
	if s.Status == models.StatusScheduled && g.TotalPoints() > 0 {
		_ = Start(s, now)
	}

	p := Progress{GameNumber: gameNumber}
	if w, ok := Settle(g, now); ok {
		p.GameWinner = models.SidePtr(w)
	}
	advance(s, now, &p)
	return p, nil
}

// advance recomputes the match state after a game changed and moves the
// current-game pointer to where play continues.
func advance(s *models.Scoresheet, now time.Time, p *Progress) {
	if mw, ok := reconcile(s, now); ok {
		p.MatchWinner = models.SidePtr(mw)
		s.Games = trimEmptyTail(s.Games)
		if s.Game(s.CurrentGame) == nil && len(s.Games) > 0 {
			s.CurrentGame = s.Games[len(s.Games)-1].GameNumber
		}
		return
	}
	if s.Status == models.MatchStatusCancelled {
		return
	}
	if open := firstOpenGame(s); open != nil {
		s.CurrentGame = open.GameNumber
		return
	}
	if next, ok := StartNextGame(s, now); ok {
		p.NextGame = next.GameNumber
	}
}

// trimEmptyTail drops unplayed games left after the match was decided.
func trimEmptyTail(games []models.Game) []models.Game {
	end := len(games)
	for end > 1 && games[end-1].IsEmpty() {
		end--
	}
	return games[:end]
}

func removeGame(games []models.Game, number int) []models.Game {
	kept := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.GameNumber != number {
			kept = append(kept, g)
		}
	}
	return kept
}
