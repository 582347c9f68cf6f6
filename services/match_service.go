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

type CreateMatchInput struct {
	Type         models.MatchType `json:"type"`
	Participants []int            `json:"participants"`
	NumberOfSets int              `json:"number_of_sets"`
	ScorerID     *int             `json:"scorer_id,omitempty"`
	FirstServer  *string          `json:"first_server,omitempty"`
	TournamentID *string          `json:"tournament_id,omitempty"`
	Round        *int             `json:"round,omitempty"`
}

type ScorePointInput struct {
	SideSelector
	Shots []models.Shot `json:"shots,omitempty"`
}

// ScoreResult is a match after a scoring step together with what the step
// decided.
type ScoreResult struct {
	Match    *models.Match    `json:"match"`
	Progress scoring.Progress `json:"progress"`
}

// ServerInfo tells who serves the next rally of the current game.
type ServerInfo struct {
	GameNumber int         `json:"game_number"`
	Server     models.Side `json:"server"`
	PlayerID   *int        `json:"player_id,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, userID int, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	StartMatch(ctx context.Context, userID int, id string) (*models.Match, error)
	ScorePoint(ctx context.Context, userID int, id string, input ScorePointInput) (*ScoreResult, error)
	RetractPoint(ctx context.Context, userID int, id string, sel SideSelector) (*models.Match, error)
	SetGameScore(ctx context.Context, userID int, id string, gameNumber, side1Score, side2Score int) (*ScoreResult, error)
	ResetGame(ctx context.Context, userID int, id string, gameNumber int) (*models.Match, error)
	ResetMatch(ctx context.Context, userID int, id string) (*models.Match, error)
	CancelMatch(ctx context.Context, userID int, id string) (*models.Match, error)
	ServerFor(ctx context.Context, id string) (*ServerInfo, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	publisher events.Publisher
	archiver  *storage.Archiver
	clock     clockwork.Clock
	logger    *slog.Logger
	locks     *documentLocks
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	publisher events.Publisher,
	archiver *storage.Archiver,
	clock clockwork.Clock,
	logger *slog.Logger,
) MatchService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo: matchRepo,
		publisher: publisher,
		archiver:  archiver,
		clock:     clock,
		logger:    logger,
		locks:     newDocumentLocks(),
	}
}

func (s *matchService) CreateMatch(ctx context.Context, userID int, input CreateMatchInput) (*models.Match, error) {
	if userID <= 0 {
		return nil, ErrForbiddenOperation
	}
	if err := validateNumberOfSets(input.NumberOfSets); err != nil {
		return nil, err
	}
	if err := validateParticipants(input.Type, input.Participants); err != nil {
		return nil, err
	}

	m := &models.Match{
		ID:           uuid.NewString(),
		TournamentID: input.TournamentID,
		Round:        input.Round,
		Type:         input.Type,
		Participants: append([]int(nil), input.Participants...),
		ScorerID:     userID,
		CreatedBy:    userID,
		CreatedAt:    s.clock.Now().UTC(),
		Scoresheet:   models.NewScoresheet(input.NumberOfSets),
	}
	if input.ScorerID != nil {
		if *input.ScorerID <= 0 {
			return nil, fmt.Errorf("%w: scorer_id must be positive", ErrValidationFailed)
		}
		m.ScorerID = *input.ScorerID
	}
	if input.FirstServer != nil {
		first, err := models.ParseSide(*input.FirstServer)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", scoring.ErrInvalidSide, err)
		}
		m.FirstServer = &first
	}

	if err := s.matchRepo.Create(ctx, m); err != nil {
		s.logger.ErrorContext(ctx, "failed to create match", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "match created",
		slog.String("match_id", m.ID),
		slog.String("type", string(m.Type)),
		slog.Int("number_of_sets", m.NumberOfSets))
	return m, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrMatchNotFound)
	}
	return m, nil
}

func (s *matchService) StartMatch(ctx context.Context, userID int, id string) (*models.Match, error) {
	return s.mutate(ctx, userID, id, func(m *models.Match, now time.Time) error {
		return scoring.Start(&m.Scoresheet, now)
	})
}

func (s *matchService) ScorePoint(ctx context.Context, userID int, id string, input ScorePointInput) (*ScoreResult, error) {
	var progress scoring.Progress
	m, err := s.mutate(ctx, userID, id, func(m *models.Match, now time.Time) error {
		side, err := input.resolve(m)
		if err != nil {
			return err
		}
		progress, err = scoring.Score(&m.Scoresheet, side, input.Shots, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ScoreResult{Match: m, Progress: progress}, nil
}

func (s *matchService) RetractPoint(ctx context.Context, userID int, id string, sel SideSelector) (*models.Match, error) {
	return s.mutate(ctx, userID, id, func(m *models.Match, now time.Time) error {
		side, err := sel.resolve(m)
		if err != nil {
			return err
		}
		return scoring.Undo(&m.Scoresheet, side, now)
	})
}

func (s *matchService) SetGameScore(ctx context.Context, userID int, id string, gameNumber, side1Score, side2Score int) (*ScoreResult, error) {
	var progress scoring.Progress
	m, err := s.mutate(ctx, userID, id, func(m *models.Match, now time.Time) error {
		var err error
		progress, err = scoring.SetGameScore(&m.Scoresheet, gameNumber, side1Score, side2Score, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ScoreResult{Match: m, Progress: progress}, nil
}

func (s *matchService) ResetGame(ctx context.Context, userID int, id string, gameNumber int) (*models.Match, error) {
	return s.mutate(ctx, userID, id, func(m *models.Match, _ time.Time) error {
		if m.Status == models.MatchStatusCancelled {
			return scoring.ErrMatchNotActive
		}
		return scoring.ResetGame(&m.Scoresheet, gameNumber)
	})
}

func (s *matchService) ResetMatch(ctx context.Context, userID int, id string) (*models.Match, error) {
	return s.mutate(ctx, userID, id, func(m *models.Match, _ time.Time) error {
		if m.Status == models.MatchStatusCancelled {
			return scoring.ErrMatchNotActive
		}
		scoring.ResetMatch(&m.Scoresheet)
		return nil
	})
}

func (s *matchService) CancelMatch(ctx context.Context, userID int, id string) (*models.Match, error) {
	return s.mutate(ctx, userID, id, func(m *models.Match, _ time.Time) error {
		return scoring.Cancel(&m.Scoresheet)
	})
}

func (s *matchService) ServerFor(ctx context.Context, id string) (*ServerInfo, error) {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsTerminal() {
		return nil, scoring.ErrMatchNotActive
	}
	g := m.Current()
	if g == nil {
		return nil, fmt.Errorf("%w: current game %d", scoring.ErrGameNotFound, m.CurrentGame)
	}
	first := models.Side1
	if m.FirstServer != nil {
		first = *m.FirstServer
	}
	doubles := m.Type == models.MatchTypeDoubles
	server := scoring.NextServer(*g, first, doubles)

	info := &ServerInfo{GameNumber: g.GameNumber, Server: server}
	if playerID, ok := playerAt(m, server); ok {
		info.PlayerID = &playerID
	}
	return info, nil
}

// mutate runs one load-change-save cycle on a match under its document lock.
// fn works on a fresh copy, so a failed step leaves nothing behind.
func (s *matchService) mutate(ctx context.Context, userID int, id string, fn func(m *models.Match, now time.Time) error) (*models.Match, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	m, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrMatchNotFound)
	}
	if !canOperate(userID, m.ScorerID, m.CreatedBy) {
		return nil, ErrForbiddenOperation
	}

	before := m.Status
	now := s.clock.Now().UTC()
	if err := fn(m, now); err != nil {
		return nil, err
	}
	if err := s.matchRepo.Update(ctx, m); err != nil {
		if mapped := handleRepositoryError(err, ErrMatchNotFound); mapped != err {
			return nil, mapped
		}
		s.logger.ErrorContext(ctx, "failed to save match", slog.String("match_id", id), slog.Any("error", err))
		return nil, err
	}

	eventType := events.MatchUpdated
	if justCompleted(before, m.Status) {
		eventType = events.MatchCompleted
		s.archive(ctx, m, now)
	}
	if reopened(before, m.Status) {
		s.unarchive(ctx, m.ID)
	}
	publish(ctx, s.publisher, s.logger, events.NewEvent(eventType, m.ID, now, m))
	return m, nil
}

func (s *matchService) archive(ctx context.Context, m *models.Match, now time.Time) {
	if s.archiver == nil {
		return
	}
	res, err := s.archiver.ArchiveMatch(ctx, m, now)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive match", slog.String("match_id", m.ID), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "match archived", slog.String("match_id", m.ID), slog.String("key", res.Key))
}

func (s *matchService) unarchive(ctx context.Context, id string) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.RemoveMatch(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to remove match archive", slog.String("match_id", id), slog.Any("error", err))
	}
}

func validateParticipants(matchType models.MatchType, participants []int) error {
	want := 0
	switch matchType {
	case models.MatchTypeSingles:
		want = 2
	case models.MatchTypeDoubles:
		want = 4
	default:
		return fmt.Errorf("%w: unknown match type %q", ErrValidationFailed, matchType)
	}
	if len(participants) != want {
		return fmt.Errorf("%w: %s needs %d players, got %d", ErrInvalidParticipants, matchType, want, len(participants))
	}
	seen := make(map[int]bool, len(participants))
	for _, id := range participants {
		if id <= 0 {
			return fmt.Errorf("%w: player id %d", ErrInvalidParticipants, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: player %d appears twice", ErrInvalidParticipants, id)
		}
		seen[id] = true
	}
	return nil
}

// playerAt maps a serving position to the player holding it. Doubles
// participants are ordered main, partner for each side.
func playerAt(m *models.Match, position models.Side) (int, bool) {
	players := m.SidePlayers(position)
	if len(players) == 0 {
		return 0, false
	}
	switch position {
	case models.Side1Partner, models.Side2Partner:
		if len(players) < 2 {
			return 0, false
		}
		return players[1], true
	}
	return players[0], true
}
