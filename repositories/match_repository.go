package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tabletennis-scoring/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
}

type matchRepository struct {
	docs documentRepository[models.Match, *models.Match]
}

func NewMatchRepository(store DocumentStore) MatchRepository {
	return &matchRepository{docs: documentRepository[models.Match, *models.Match]{
		store:    store,
		kind:     KindMatch,
		notFound: ErrMatchNotFound,
	}}
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	return r.docs.create(ctx, match)
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	return r.docs.get(ctx, id)
}

func (r *matchRepository) Update(ctx context.Context, match *models.Match) error {
	return r.docs.update(ctx, match)
}
