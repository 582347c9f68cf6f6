package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/scoring"
	"github.com/Dosada05/tabletennis-scoring/storage"
)

type CreateTeamMatchInput struct {
	Team1ID      int                    `json:"team1_id"`
	Team2ID      int                    `json:"team2_id"`
	Format       models.TeamFormat      `json:"format"`
	NumberOfSets int                    `json:"number_of_sets"`
	ScorerID     *int                   `json:"scorer_id,omitempty"`
	Team1Roles   models.RoleAssignments `json:"team1_roles,omitempty"`
	Team2Roles   models.RoleAssignments `json:"team2_roles,omitempty"`
	TournamentID *string                `json:"tournament_id,omitempty"`
	Round        *int                   `json:"round,omitempty"`
}

type LineupInput struct {
	Team1Roles models.RoleAssignments `json:"team1_roles"`
	Team2Roles models.RoleAssignments `json:"team2_roles"`
}

type SubMatchResultInput struct {
	Winner string `json:"winner"`
}

// SubMatchScoreResult is a team match after a point in one of its
// submatches.
type SubMatchScoreResult struct {
	TeamMatch *models.TeamMatch `json:"team_match"`
	Index     int               `json:"index"`
	Progress  scoring.Progress  `json:"progress"`
}

type TeamMatchService interface {
	CreateTeamMatch(ctx context.Context, userID int, input CreateTeamMatchInput) (*models.TeamMatch, error)
	GetTeamMatch(ctx context.Context, id string) (*models.TeamMatch, error)
	SetLineup(ctx context.Context, userID int, id string, input LineupInput) (*models.TeamMatch, error)
	GenerateSubMatches(ctx context.Context, userID int, id string) (*models.TeamMatch, error)
	ScoreSubMatchPoint(ctx context.Context, userID int, id string, index int, input ScorePointInput) (*SubMatchScoreResult, error)
	RecordSubMatchResult(ctx context.Context, userID int, id string, index int, input SubMatchResultInput) (*models.TeamMatch, error)
	ResetSubMatch(ctx context.Context, userID int, id string, index int, full bool) (*models.TeamMatch, error)
	CancelTeamMatch(ctx context.Context, userID int, id string) (*models.TeamMatch, error)
}

type teamMatchService struct {
	teamMatchRepo repositories.TeamMatchRepository
	publisher     events.Publisher
	archiver      *storage.Archiver
	clock         clockwork.Clock
	logger        *slog.Logger
	locks         *documentLocks
}

func NewTeamMatchService(
	teamMatchRepo repositories.TeamMatchRepository,
	publisher events.Publisher,
	archiver *storage.Archiver,
	clock clockwork.Clock,
	logger *slog.Logger,
) TeamMatchService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &teamMatchService{
		teamMatchRepo: teamMatchRepo,
		publisher:     publisher,
		archiver:      archiver,
		clock:         clock,
		logger:        logger,
		locks:         newDocumentLocks(),
	}
}

func (s *teamMatchService) CreateTeamMatch(ctx context.Context, userID int, input CreateTeamMatchInput) (*models.TeamMatch, error) {
	if userID <= 0 {
		return nil, ErrForbiddenOperation
	}
	if input.Team1ID <= 0 || input.Team2ID <= 0 || input.Team1ID == input.Team2ID {
		return nil, fmt.Errorf("%w: teams %d and %d", ErrInvalidParticipants, input.Team1ID, input.Team2ID)
	}
	if _, err := scoring.ClinchThreshold(input.Format); err != nil {
		return nil, err
	}
	if err := validateNumberOfSets(input.NumberOfSets); err != nil {
		return nil, err
	}
	if len(input.Team1Roles) > 0 || len(input.Team2Roles) > 0 {
		if err := scoring.ValidateLineup(input.Format, input.Team1Roles, input.Team2Roles); err != nil {
			return nil, err
		}
	}

	tm := newTeamMatch(input, userID, s.clock.Now().UTC())
	if input.ScorerID != nil {
		if *input.ScorerID <= 0 {
			return nil, fmt.Errorf("%w: scorer_id must be positive", ErrValidationFailed)
		}
		tm.ScorerID = *input.ScorerID
	}
	if err := s.teamMatchRepo.Create(ctx, tm); err != nil {
		s.logger.ErrorContext(ctx, "failed to create team match", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "team match created",
		slog.String("team_match_id", tm.ID),
		slog.String("format", string(tm.Format)))
	return tm, nil
}

func newTeamMatch(input CreateTeamMatchInput, userID int, now time.Time) *models.TeamMatch {
	return &models.TeamMatch{
		ID:           uuid.NewString(),
		TournamentID: input.TournamentID,
		Round:        input.Round,
		Team1ID:      input.Team1ID,
		Team2ID:      input.Team2ID,
		Format:       input.Format,
		NumberOfSets: input.NumberOfSets,
		Team1Roles:   input.Team1Roles,
		Team2Roles:   input.Team2Roles,
		SubMatches:   []models.SubMatch{},
		Status:       models.StatusScheduled,
		ScorerID:     userID,
		CreatedBy:    userID,
		CreatedAt:    now,
	}
}

func (s *teamMatchService) GetTeamMatch(ctx context.Context, id string) (*models.TeamMatch, error) {
	tm, err := s.teamMatchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrTeamMatchNotFound)
	}
	return tm, nil
}

func (s *teamMatchService) SetLineup(ctx context.Context, userID int, id string, input LineupInput) (*models.TeamMatch, error) {
	return s.mutate(ctx, userID, id, func(tm *models.TeamMatch, _ time.Time) error {
		if tm.IsTerminal() {
			return scoring.ErrMatchNotActive
		}
		if len(tm.SubMatches) > 0 {
			return ErrLineupLocked
		}
		if err := scoring.ValidateLineup(tm.Format, input.Team1Roles, input.Team2Roles); err != nil {
			return err
		}
		tm.Team1Roles = input.Team1Roles
		tm.Team2Roles = input.Team2Roles
		return nil
	})
}

func (s *teamMatchService) GenerateSubMatches(ctx context.Context, userID int, id string) (*models.TeamMatch, error) {
	return s.mutate(ctx, userID, id, func(tm *models.TeamMatch, _ time.Time) error {
		if tm.IsTerminal() {
			return scoring.ErrMatchNotActive
		}
		_, err := scoring.GenerateSubMatches(tm)
		return err
	})
}

func (s *teamMatchService) ScoreSubMatchPoint(ctx context.Context, userID int, id string, index int, input ScorePointInput) (*SubMatchScoreResult, error) {
	var progress scoring.Progress
	tm, err := s.mutate(ctx, userID, id, func(tm *models.TeamMatch, now time.Time) error {
		sub, err := playableSubMatch(tm, index)
		if err != nil {
			return err
		}
		side, err := input.resolve(sub)
		if err != nil {
			return err
		}
		progress, err = scoring.Score(&sub.Scoresheet, side, input.Shots, now)
		if err != nil {
			return err
		}
		if tm.Status == models.StatusScheduled {
			tm.Status = models.StatusInProgress
			tm.StartedAt = timePtr(now)
		}
		if progress.MatchWinner != nil {
			return scoring.RecordSubMatchResult(tm, index, *progress.MatchWinner, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SubMatchScoreResult{TeamMatch: tm, Index: index, Progress: progress}, nil
}

func (s *teamMatchService) RecordSubMatchResult(ctx context.Context, userID int, id string, index int, input SubMatchResultInput) (*models.TeamMatch, error) {
	winner, err := models.ParseSide(input.Winner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrInvalidSide, err)
	}
	return s.mutate(ctx, userID, id, func(tm *models.TeamMatch, now time.Time) error {
		if len(tm.SubMatches) == 0 {
			return ErrNoSubMatches
		}
		return scoring.RecordSubMatchResult(tm, index, winner, now)
	})
}

func (s *teamMatchService) ResetSubMatch(ctx context.Context, userID int, id string, index int, full bool) (*models.TeamMatch, error) {
	return s.mutate(ctx, userID, id, func(tm *models.TeamMatch, _ time.Time) error {
		if len(tm.SubMatches) == 0 {
			return ErrNoSubMatches
		}
		return scoring.ResetSubMatch(tm, index, full)
	})
}

func (s *teamMatchService) CancelTeamMatch(ctx context.Context, userID int, id string) (*models.TeamMatch, error) {
	return s.mutate(ctx, userID, id, func(tm *models.TeamMatch, _ time.Time) error {
		if !scoring.CanTransition(tm.Status, models.MatchStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", scoring.ErrInvalidStatusTransition, tm.Status, models.MatchStatusCancelled)
		}
		tm.Status = models.MatchStatusCancelled
		return nil
	})
}

func playableSubMatch(tm *models.TeamMatch, index int) (*models.SubMatch, error) {
	switch tm.Status {
	case models.MatchStatusCompleted:
		return nil, scoring.ErrMatchAlreadyCompleted
	case models.MatchStatusCancelled:
		return nil, scoring.ErrMatchNotActive
	}
	if len(tm.SubMatches) == 0 {
		return nil, ErrNoSubMatches
	}
	if index < 0 || index >= len(tm.SubMatches) {
		return nil, fmt.Errorf("%w: index %d", scoring.ErrSubMatchNotFound, index)
	}
	return &tm.SubMatches[index], nil
}

func (s *teamMatchService) mutate(ctx context.Context, userID int, id string, fn func(tm *models.TeamMatch, now time.Time) error) (*models.TeamMatch, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	tm, err := s.teamMatchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrTeamMatchNotFound)
	}
	if !canOperate(userID, tm.ScorerID, tm.CreatedBy) {
		return nil, ErrForbiddenOperation
	}

	before := tm.Status
	now := s.clock.Now().UTC()
	if err := fn(tm, now); err != nil {
		return nil, err
	}
	if err := s.teamMatchRepo.Update(ctx, tm); err != nil {
		if mapped := handleRepositoryError(err, ErrTeamMatchNotFound); mapped != err {
			return nil, mapped
		}
		s.logger.ErrorContext(ctx, "failed to save team match", slog.String("team_match_id", id), slog.Any("error", err))
		return nil, err
	}

	eventType := events.TeamMatchUpdated
	if justCompleted(before, tm.Status) {
		eventType = events.TeamMatchCompleted
		s.archive(ctx, tm, now)
	}
	if reopened(before, tm.Status) {
		s.unarchive(ctx, tm.ID)
	}
	publish(ctx, s.publisher, s.logger, events.NewEvent(eventType, tm.ID, now, tm))
	return tm, nil
}

func (s *teamMatchService) archive(ctx context.Context, tm *models.TeamMatch, now time.Time) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.ArchiveTeamMatch(ctx, tm, now); err != nil {
		s.logger.WarnContext(ctx, "failed to archive team match", slog.String("team_match_id", tm.ID), slog.Any("error", err))
	}
}

func (s *teamMatchService) unarchive(ctx context.Context, id string) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.RemoveTeamMatch(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to remove team match archive", slog.String("team_match_id", id), slog.Any("error", err))
	}
}
