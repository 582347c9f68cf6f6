package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/scoring"
)

// SideSelector names the side taking an action, either directly or through
// one of its players.
type SideSelector struct {
	Side     *string `json:"side,omitempty"`
	PlayerID *int    `json:"player_id,omitempty"`
}

type sideResolver interface {
	SideOfPlayer(playerID int) (models.Side, bool)
}

func (sel SideSelector) resolve(r sideResolver) (models.Side, error) {
	switch {
	case sel.Side != nil:
		side, err := models.ParseSide(*sel.Side)
		if err != nil {
			return "", fmt.Errorf("%w: %v", scoring.ErrInvalidSide, err)
		}
		return side, nil
	case sel.PlayerID != nil:
		side, ok := r.SideOfPlayer(*sel.PlayerID)
		if !ok {
			return "", fmt.Errorf("%w: player %d does not play in this match", scoring.ErrInvalidSide, *sel.PlayerID)
		}
		return side, nil
	}
	return "", ErrSideRequired
}

// canOperate reports whether userID may change a document scored by scorerID
// and owned by ownerID.
func canOperate(userID, scorerID, ownerID int) bool {
	return userID > 0 && (userID == scorerID || userID == ownerID)
}

func handleRepositoryError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrTeamMatchNotFound),
		errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrDocumentNotFound):
		return notFound
	case errors.Is(err, repositories.ErrVersionConflict):
		return ErrVersionConflict
	}
	return err
}

func validateNumberOfSets(n int) error {
	if !scoring.ValidNumberOfSets(n) {
		return fmt.Errorf("%w: got %d", scoring.ErrInvalidNumberOfSets, n)
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", string(e.Type)),
			slog.String("room", e.Room),
			slog.Any("error", err))
	}
}

func justCompleted(before, after models.MatchStatus) bool {
	return before != models.MatchStatusCompleted && after == models.MatchStatusCompleted
}

func reopened(before, after models.MatchStatus) bool {
	return before == models.MatchStatusCompleted && after != models.MatchStatusCompleted
}

func timePtr(t time.Time) *time.Time {
	return &t
}
