package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tabletennis-scoring/models"
)

var ErrTeamMatchNotFound = errors.New("team match not found")

type TeamMatchRepository interface {
	Create(ctx context.Context, teamMatch *models.TeamMatch) error
	GetByID(ctx context.Context, id string) (*models.TeamMatch, error)
	Update(ctx context.Context, teamMatch *models.TeamMatch) error
}

type teamMatchRepository struct {
	docs documentRepository[models.TeamMatch, *models.TeamMatch]
}

func NewTeamMatchRepository(store DocumentStore) TeamMatchRepository {
	return &teamMatchRepository{docs: documentRepository[models.TeamMatch, *models.TeamMatch]{
		store:    store,
		kind:     KindTeamMatch,
		notFound: ErrTeamMatchNotFound,
	}}
}

func (r *teamMatchRepository) Create(ctx context.Context, tm *models.TeamMatch) error {
	return r.docs.create(ctx, tm)
}

func (r *teamMatchRepository) GetByID(ctx context.Context, id string) (*models.TeamMatch, error) {
	return r.docs.get(ctx, id)
}

func (r *teamMatchRepository) Update(ctx context.Context, tm *models.TeamMatch) error {
	return r.docs.update(ctx, tm)
}
