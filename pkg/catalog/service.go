// Package catalog is the base item store: the items every user can see, the
// user directory they belong to and the explicit ratings behind the
// top-rated list.
package catalog

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Load replaces the store's contents with seed.
func (s *Service) Load(ctx context.Context, seed *Seed) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{(*models.Rating)(nil), (*models.Item)(nil), (*models.User)(nil)} {
			_, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if len(seed.Users) > 0 {
			_, err := tx.NewInsert().Model(&seed.Users).Exec(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to insert users")
			}
		}
		if len(seed.Items) > 0 {
			items := make([]models.Item, len(seed.Items))
			copy(items, seed.Items)
			for i := range items {
				items[i].RowID = 0
			}
			_, err := tx.NewInsert().Model(&items).Exec(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to insert items")
			}
		}
		if len(seed.Ratings) > 0 {
			_, err := tx.NewInsert().Model(&seed.Ratings).Exec(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to insert ratings")
			}
		}
		return nil
	})
}

// ListItems returns the base catalog in insertion order.
func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := s.db.NewSelect().
		Model(&items).
		Order("i.row_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return items, nil
}

func (s *Service) ListRatings(ctx context.Context) ([]*models.Rating, error) {
	ratings := []*models.Rating{}
	err := s.db.NewSelect().
		Model(&ratings).
		Order("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ratings, nil
}

// TopRated returns the base items with the highest average explicit rating.
func (s *Service) TopRated(ctx context.Context, limit int) ([]models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ListRatings(ctx)
	if err != nil {
		return nil, err
	}
	return TopRated(items, ratings, limit), nil
}
