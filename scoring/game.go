package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

const (
	PointsToWinGame = 11
	WinningMargin   = 2
	// DeuceThreshold is the score both sides must reach for the game to be in deuce.
	DeuceThreshold = PointsToWinGame - 1
)

// ApplyPoint awards one point to side and appends the rally's shots to the
// game's shot log. Only the last shot of the slice ends the point; earlier
// ones are in-rally shots. Every shot is stamped with now. With no shots a
// bare point-ending entry is logged.
//
// It does not decide the game: callers run CheckWinner (or Settle) afterwards.
func ApplyPoint(g *models.Game, side models.Side, shots []models.Shot, now time.Time) error {
	base := side.Base()
	if base == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if g.Completed || g.Winner != nil {
		return fmt.Errorf("%w: game %d", ErrGameAlreadyCompleted, g.GameNumber)
	}
	for _, shot := range shots {
		if shot.Side != "" && !shot.Side.Valid() {
			return fmt.Errorf("%w: shot side %q", ErrInvalidSide, shot.Side)
		}
	}

	// Every point leaves at least its point-ending entry in the log, so a
	// retraction never reaches into another rally.
	if len(shots) == 0 {
		shots = []models.Shot{{}}
	}

	rally := g.LastRally() + 1
	appended := make([]models.Shot, 0, len(shots))
	for i, shot := range shots {
		last := i == len(shots)-1
		shot.Rally = rally
		shot.PointTo = base
		shot.Timestamp = now
		if shot.Outcome == "" {
			if last {
				shot.Outcome = models.OutcomeWinner
			} else {
				shot.Outcome = models.OutcomeInPlay
			}
		}
		if last && shot.Side == "" {
			// A winner is hit by the side taking the point, an error by the other.
			if shot.Outcome == models.OutcomeError {
				shot.Side = base.Opponent()
			} else {
				shot.Side = base
			}
		}
		appended = append(appended, shot)
	}

	if g.StartTime == nil {
		start := now
		g.StartTime = &start
	}
	if base == models.Side1 {
		g.Side1Score++
	} else {
		g.Side2Score++
	}
	g.Shots = append(g.Shots, appended...)
	return nil
}

// ApplyManualScore overwrites both scores. Used for scorer corrections.
func ApplyManualScore(g *models.Game, side1Score, side2Score int) error {
	if side1Score < 0 || side2Score < 0 {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidScore, side1Score, side2Score)
	}
	g.Side1Score = side1Score
	g.Side2Score = side2Score
	return nil
}

// RetractLastPoint takes one point away from side and drops the shots of the
// most recent rally that side won. It is a no-op when side has no points.
// A winner that no longer holds after the retraction is cleared.
func RetractLastPoint(g *models.Game, side models.Side) error {
	base := side.Base()
	if base == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if g.Score(base) == 0 {
		return nil
	}

	if base == models.Side1 {
		g.Side1Score--
	} else {
		g.Side2Score--
	}

	rally := 0
	for _, shot := range g.Shots {
		if shot.PointTo == base && shot.Rally > rally {
			rally = shot.Rally
		}
	}
	if rally > 0 {
		kept := make([]models.Shot, 0, len(g.Shots))
		for _, shot := range g.Shots {
			if shot.Rally != rally {
				kept = append(kept, shot)
			}
		}
		g.Shots = kept
	}

	if g.Winner != nil {
		if w, ok := CheckWinner(*g); !ok || w != *g.Winner {
			reopenGame(g)
		}
	}
	return nil
}

// CheckWinner returns the winning side when one side has at least 11 points
// and leads by at least 2. There is no score cap.
func CheckWinner(g models.Game) (models.Side, bool) {
	a, b := g.Side1Score, g.Side2Score
	if max(a, b) < PointsToWinGame || abs(a-b) < WinningMargin {
		return "", false
	}
	if a > b {
		return models.Side1, true
	}
	return models.Side2, true
}

// InDeuce reports an undecided game where both sides have reached 10.
func InDeuce(g models.Game) bool {
	if _, decided := CheckWinner(g); decided {
		return false
	}
	return g.Side1Score >= DeuceThreshold && g.Side2Score >= DeuceThreshold
}

// Settle brings the game's winner fields in line with its score: a decided
// game gets winner, completed and end time; an undecided one is reopened.
func Settle(g *models.Game, now time.Time) (models.Side, bool) {
	w, ok := CheckWinner(*g)
	if !ok {
		if g.Winner != nil || g.Completed {
			reopenGame(g)
		}
		return "", false
	}
	if g.Winner == nil || *g.Winner != w {
		g.Winner = models.SidePtr(w)
		end := now
		g.EndTime = &end
	}
	g.Completed = true
	return w, true
}

func reopenGame(g *models.Game) {
	g.Winner = nil
	g.Completed = false
	g.EndTime = nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
