package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY,
				age INTEGER,
				location TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE items (
				row_id INTEGER PRIMARY KEY AUTOINCREMENT,
				isbn TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL DEFAULT '',
				author TEXT NOT NULL DEFAULT '',
				publisher TEXT NOT NULL DEFAULT '',
				publication_year TEXT NOT NULL DEFAULT '',
				image_url_s TEXT NOT NULL DEFAULT '',
				image_url_m TEXT NOT NULL DEFAULT '',
				image_url_l TEXT NOT NULL DEFAULT '',
				score REAL,
				owner_user_id INTEGER REFERENCES users (id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_items_isbn ON items (isbn)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_items_owner_user_id ON items (owner_user_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE ratings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				isbn TEXT NOT NULL,
				value INTEGER NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_ratings_user_isbn ON ratings (user_id, isbn)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_ratings_isbn ON ratings (isbn)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS ratings`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE IF EXISTS items`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE IF EXISTS users`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
