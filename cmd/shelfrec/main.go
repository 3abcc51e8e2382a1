package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelfrec/pkg/app"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/database"
	"github.com/shishobooks/shelfrec/pkg/migrations"
	"github.com/shishobooks/shelfrec/pkg/users"
	"github.com/shishobooks/shelfrec/pkg/views"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := newCLI(cfg, os.Stdout).Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func newCLI(cfg *config.Config, out io.Writer) *cli.App {
	return &cli.App{
		Name:        "shelfrec",
		Usage:       "CLI to inspect the catalog and the recommendation view",
		Description: "CLI to inspect the catalog and the recommendation view",
		Writer:      out,
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "list users and their rating counts",
				Action: func(c *cli.Context) error {
					a, err := app.New(c.Context, cfg, app.Options{})
					if err != nil {
						return err
					}
					defer a.Close()

					list, total, err := a.Users.List(c.Context, users.ListOptions{})
					if err != nil {
						return err
					}
					for _, u := range list {
						fmt.Fprintf(out, "%d\t%d ratings\t%s\n", u.ID, u.RatingCount, u.Location)
					}
					fmt.Fprintf(out, "%d users\n", total)
					return nil
				},
			},
			viewCommand(cfg, out),
			{
				Name:  "top-rated",
				Usage: "print the catalog items with the highest average rating",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "number of items", Value: 3},
				},
				Action: func(c *cli.Context) error {
					a, err := app.New(c.Context, cfg, app.Options{})
					if err != nil {
						return err
					}
					defer a.Close()

					items, err := a.Catalog.TopRated(c.Context, c.Int("limit"))
					if err != nil {
						return err
					}
					return writeJSON(out, views.PresentItems(items))
				},
			},
			migrationsCommand(cfg, out),
		},
	}
}

// migrationsCommand only covers what is useful for a store that lives as long
// as the process: the schema is applied on every start, so there is nothing
// to migrate or roll back from the command line.
func migrationsCommand(cfg *config.Config, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "migrations",
		Usage: "inspect and author catalog schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list the migrations applied to the catalog store on start",
				Action: func(c *cli.Context) error {
					sorted := migrations.Migrations.Sorted()
					for _, m := range sorted {
						fmt.Fprintf(out, "%s\t%s\n", m.Name, m.Comment)
					}
					fmt.Fprintf(out, "%d migrations\n", len(sorted))
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create Go migration",
				ArgsUsage: "<name words>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("migration name is required")
					}

					db, err := database.New(cfg)
					if err != nil {
						return err
					}
					defer db.Close()

					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrations.NewMigrator(db).CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Created migration %s (%s)\n", mf.Name, mf.Path)

					return nil
				},
			},
		},
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
