package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

var allowedTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.StatusScheduled:      {models.StatusInProgress, models.MatchStatusCancelled},
	models.StatusInProgress:     {models.MatchStatusCompleted, models.MatchStatusCancelled},
	models.MatchStatusCompleted: {},
	models.MatchStatusCancelled: {},
}

// CanTransition reports whether a match may move from current to next.
// Reverting a completed match is only done by the reset paths.
func CanTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Start moves a scheduled match into play. Starting a match already in play
// is a no-op.
func Start(s *models.Scoresheet, now time.Time) error {
	if err := ensurePlayable(s.Status); err != nil {
		return err
	}
	if s.Status == models.StatusInProgress {
		return nil
	}
	s.Status = models.StatusInProgress
	started := now
	s.StartedAt = &started
	if g := s.Current(); g != nil && g.StartTime == nil {
		g.StartTime = &started
	}
	return nil
}

// Cancel abandons a match that has not finished.
func Cancel(s *models.Scoresheet) error {
	if !CanTransition(s.Status, models.MatchStatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s.Status, models.MatchStatusCancelled)
	}
	s.Status = models.MatchStatusCancelled
	return nil
}

func ensurePlayable(status models.MatchStatus) error {
	switch status {
	case models.MatchStatusCompleted:
		return ErrMatchAlreadyCompleted
	case models.MatchStatusCancelled:
		return ErrMatchNotActive
	}
	return nil
}
