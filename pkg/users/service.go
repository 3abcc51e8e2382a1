package users

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/uptrace/bun"
)

// Service reads the user directory.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

func (s *Service) selectUsers(model interface{}) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(model).
		ColumnExpr("u.*").
		ColumnExpr("(SELECT COUNT(*) FROM ratings AS r WHERE r.user_id = u.id) AS rating_count")
}

// Retrieve returns a single user with their rating count.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.selectUsers(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("User")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// ListOptions contains options for listing users.
type ListOptions struct {
	Limit  int
	Offset int
}

// List returns a paginated list of users ordered by ID, along with the total
// number of users.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.User, int, error) {
	users := []*models.User{}

	query := s.selectUsers(&users).
		Order("u.id ASC")

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}
