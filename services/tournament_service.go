package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tabletennis-scoring/brackets"
	"github.com/Dosada05/tabletennis-scoring/events"
	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/repositories"
	"github.com/Dosada05/tabletennis-scoring/scoring"
)

// maxParallelLoads bounds the match documents fetched at once during a
// standings refresh.
const maxParallelLoads = 8

type CreateTournamentInput struct {
	Name            string                       `json:"name"`
	Description     *string                      `json:"description,omitempty"`
	ParticipantType models.FormatParticipantType `json:"participant_type"`
	Participants    []int                        `json:"participants"`
	NumberOfSets    int                          `json:"number_of_sets"`
	TeamFormat      *models.TeamFormat           `json:"team_format,omitempty"`
	Settings        *models.RoundRobinSettings   `json:"settings,omitempty"`
	ScorerID        *int                         `json:"scorer_id,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, userID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	StartTournament(ctx context.Context, userID int, id string) (*models.Tournament, error)
	RefreshStandings(ctx context.Context, userID int, id string) (*models.Tournament, error)
	Schedule(ctx context.Context, id string) ([]models.Round, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	teamMatchRepo  repositories.TeamMatchRepository
	generator      brackets.ScheduleGenerator
	publisher      events.Publisher
	clock          clockwork.Clock
	logger         *slog.Logger
	locks          *documentLocks
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	teamMatchRepo repositories.TeamMatchRepository,
	generator brackets.ScheduleGenerator,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) TournamentService {
	if generator == nil {
		generator = brackets.NewRoundRobinGenerator()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		teamMatchRepo:  teamMatchRepo,
		generator:      generator,
		publisher:      publisher,
		clock:          clock,
		logger:         logger,
		locks:          newDocumentLocks(),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, userID int, input CreateTournamentInput) (*models.Tournament, error) {
	if userID <= 0 {
		return nil, ErrForbiddenOperation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateNumberOfSets(input.NumberOfSets); err != nil {
		return nil, err
	}
	switch input.ParticipantType {
	case models.FormatParticipantSolo:
	case models.FormatParticipantTeam:
		if input.TeamFormat == nil {
			return nil, ErrTournamentFormatRequired
		}
		if _, err := scoring.ClinchThreshold(*input.TeamFormat); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: participant_type %q", ErrValidationFailed, input.ParticipantType)
	}
	if len(input.Participants) < 2 {
		return nil, brackets.ErrInsufficientParticipants
	}
	seen := make(map[int]bool, len(input.Participants))
	for _, id := range input.Participants {
		if id <= 0 {
			return nil, fmt.Errorf("%w: participant id %d", ErrInvalidParticipants, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %d", brackets.ErrDuplicateParticipant, id)
		}
		seen[id] = true
	}

	settings := models.DefaultRoundRobinSettings()
	if input.Settings != nil {
		settings = input.Settings.Normalize()
	}
	t := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     input.Description,
		ParticipantType: input.ParticipantType,
		Participants:    append([]int(nil), input.Participants...),
		NumberOfSets:    input.NumberOfSets,
		Settings:        settings,
		Rounds:          []models.Round{},
		Standings:       brackets.ComputeStandings(input.Participants, nil, settings),
		Status:          models.StatusRegistration,
		OrganizerID:     userID,
		ScorerID:        userID,
		CreatedAt:       s.clock.Now().UTC(),
	}
	if input.ParticipantType == models.FormatParticipantTeam {
		format := *input.TeamFormat
		t.TeamFormat = &format
	}
	if input.ScorerID != nil {
		if *input.ScorerID <= 0 {
			return nil, fmt.Errorf("%w: scorer_id must be positive", ErrValidationFailed)
		}
		t.ScorerID = *input.ScorerID
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "failed to create tournament", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID),
		slog.Int("participants", len(t.Participants)))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrTournamentNotFound)
	}
	return t, nil
}

func (s *tournamentService) Schedule(ctx context.Context, id string) ([]models.Round, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Rounds, nil
}

// StartTournament generates the round-robin schedule once and creates one
// match document per pairing.
func (s *tournamentService) StartTournament(ctx context.Context, userID int, id string) (*models.Tournament, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrTournamentNotFound)
	}
	if userID <= 0 || userID != t.OrganizerID {
		return nil, ErrForbiddenOperation
	}
	if t.Status == models.StatusActive {
		return nil, fmt.Errorf("%w: tournament already started", ErrTournamentInvalidStatusTransition)
	}
	if !isValidStatusTransition(t.Status, models.StatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, models.StatusActive)
	}

	schedule, err := s.generator.GenerateSchedule(ctx, brackets.GenerateScheduleParams{
		Participants: t.Participants,
		Legs:         t.Settings.Legs,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	rounds := make([]models.Round, 0, len(schedule))
	for _, rp := range schedule {
		round := models.Round{
			Number:   rp.Number,
			MatchIDs: make([]string, 0, len(rp.Pairings)),
			Byes:     rp.Byes,
		}
		for _, pairing := range rp.Pairings {
			matchID, err := s.createScheduledMatch(ctx, t, rp.Number, pairing, now)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to create scheduled match",
					slog.String("tournament_id", t.ID),
					slog.Int("round", rp.Number),
					slog.Any("error", err))
				return nil, err
			}
			round.MatchIDs = append(round.MatchIDs, matchID)
		}
		rounds = append(rounds, round)
	}

	t.Rounds = rounds
	t.Status = models.StatusActive
	t.StartedAt = timePtr(now)
	t.Standings = brackets.ComputeStandings(t.Participants, nil, t.Settings)
	t.StandingsAt = timePtr(now)
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, handleRepositoryError(err, ErrTournamentNotFound)
	}

	s.logger.InfoContext(ctx, "tournament started",
		slog.String("tournament_id", t.ID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("rounds", len(t.Rounds)),
		slog.Int("matches", len(t.MatchIDs())))
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.TournamentUpdated, t.ID, now, t))
	return t, nil
}

func (s *tournamentService) createScheduledMatch(ctx context.Context, t *models.Tournament, round int, p brackets.Pairing, now time.Time) (string, error) {
	tournamentID := t.ID
	roundNumber := round

	if t.ParticipantType == models.FormatParticipantTeam {
		tm := newTeamMatch(CreateTeamMatchInput{
			Team1ID:      p.Side1,
			Team2ID:      p.Side2,
			Format:       *t.TeamFormat,
			NumberOfSets: t.NumberOfSets,
			TournamentID: &tournamentID,
			Round:        &roundNumber,
		}, t.OrganizerID, now)
		tm.ScorerID = t.ScorerID
		if err := s.teamMatchRepo.Create(ctx, tm); err != nil {
			return "", err
		}
		return tm.ID, nil
	}

	m := &models.Match{
		ID:           uuid.NewString(),
		TournamentID: &tournamentID,
		Round:        &roundNumber,
		Type:         models.MatchTypeSingles,
		Participants: []int{p.Side1, p.Side2},
		ScorerID:     t.ScorerID,
		CreatedBy:    t.OrganizerID,
		CreatedAt:    now,
		Scoresheet:   models.NewScoresheet(t.NumberOfSets),
	}
	if err := s.matchRepo.Create(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// RefreshStandings rebuilds the table from the current state of every
// scheduled match, flags finished rounds and completes the tournament once
// every round is done.
func (s *tournamentService) RefreshStandings(ctx context.Context, userID int, id string) (*models.Tournament, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, ErrTournamentNotFound)
	}
	if !canOperate(userID, t.ScorerID, t.OrganizerID) {
		return nil, ErrForbiddenOperation
	}
	if len(t.Rounds) == 0 {
		return nil, ErrTournamentNotStarted
	}

	ids := t.MatchIDs()
	results := make([]brackets.MatchResult, len(ids))
	statuses := make([]models.MatchStatus, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, matchID := range ids {
		i, matchID := i, matchID
		g.Go(func() error {
			if t.ParticipantType == models.FormatParticipantTeam {
				tm, err := s.teamMatchRepo.GetByID(gCtx, matchID)
				if err != nil {
					return fmt.Errorf("failed to load team match %s: %w", matchID, err)
				}
				results[i] = brackets.ResultFromTeamMatch(tm)
				statuses[i] = tm.Status
				return nil
			}
			m, err := s.matchRepo.GetByID(gCtx, matchID)
			if err != nil {
				return fmt.Errorf("failed to load match %s: %w", matchID, err)
			}
			if r, ok := brackets.ResultFromMatch(m); ok {
				results[i] = r
			}
			statuses[i] = m.Status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to load tournament matches",
			slog.String("tournament_id", t.ID), slog.Any("error", err))
		return nil, handleRepositoryError(err, ErrMatchNotFound)
	}

	finished := make(map[string]bool, len(ids))
	for i, matchID := range ids {
		finished[matchID] = statuses[i] == models.MatchStatusCompleted || statuses[i] == models.MatchStatusCancelled
	}

	now := s.clock.Now().UTC()
	t.Standings = brackets.ComputeStandings(t.Participants, results, t.Settings)
	t.StandingsAt = timePtr(now)
	allDone := brackets.SettleRounds(t.Rounds, func(matchID string) bool { return finished[matchID] })
	if allDone && isValidStatusTransition(t.Status, models.StatusCompleted) && t.Status != models.StatusCompleted {
		t.Status = models.StatusCompleted
		t.CompletedAt = timePtr(now)
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, handleRepositoryError(err, ErrTournamentNotFound)
	}
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.StandingsRecomputed, t.ID, now, t.Standings))
	return t, nil
}
