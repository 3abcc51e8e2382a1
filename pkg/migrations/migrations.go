// Package migrations holds the catalog schema. The catalog store only lives as
// long as the process, so the schema is applied from scratch on every start.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator over the catalog schema. A migration is only
// marked as applied once it succeeds, so a failed start can be retried.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations, migrate.WithMarkAppliedOnSuccess(true))
}

// BringUpToDate applies every pending migration. The returned group has a
// zero ID when nothing was pending.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create migration tables")
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply catalog schema")
	}
	return group, nil
}
