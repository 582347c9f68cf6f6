package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tabletennis-scoring/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
}

type tournamentRepository struct {
	docs documentRepository[models.Tournament, *models.Tournament]
}

func NewTournamentRepository(store DocumentStore) TournamentRepository {
	return &tournamentRepository{docs: documentRepository[models.Tournament, *models.Tournament]{
		store:    store,
		kind:     KindTournament,
		notFound: ErrTournamentNotFound,
	}}
}

func (r *tournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	return r.docs.create(ctx, t)
}

func (r *tournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return r.docs.get(ctx, id)
}

func (r *tournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	return r.docs.update(ctx, t)
}
