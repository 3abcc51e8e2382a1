package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/app"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
	"github.com/shishobooks/shelfrec/pkg/views"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/urfave/cli/v2"
)

func viewCommand(cfg *config.Config, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "compute one page of the view for a user",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "user", Usage: "user to fetch recommendations for (default: first user)"},
			&cli.BoolFlag{Name: "no-user", Usage: "show the catalog without an active user"},
			&cli.StringFlag{Name: "mode", Usage: "owned or recommendations", Value: string(models.ViewModeOwned)},
			&cli.StringFlag{Name: "search", Usage: "substring of the title, author, publisher or id"},
			&cli.StringFlag{Name: "author", Usage: "author substring"},
			&cli.StringFlag{Name: "publisher", Usage: "publisher substring"},
			&cli.IntFlag{Name: "year-min", Usage: "earliest publication year"},
			&cli.IntFlag{Name: "year-max", Usage: "latest publication year"},
			&cli.StringFlag{Name: "sort", Usage: "title, author, year-desc, year-asc or rating-desc", Value: string(pipeline.DefaultSort)},
			&cli.IntFlag{Name: "page", Usage: "page number", Value: 1},
			&cli.IntFlag{Name: "page-size", Usage: "items per page"},
		},
		Action: func(c *cli.Context) error {
			mode := models.ViewMode(c.String("mode"))
			if !mode.Valid() {
				return errors.Errorf("unknown view mode %q", c.String("mode"))
			}
			sort := pipeline.SortKey(c.String("sort"))
			if !sort.Valid() {
				return errors.Errorf("unknown sort %q", c.String("sort"))
			}

			a, err := app.New(c.Context, cfg, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			resp := struct {
				Fetch *views.FetchResult `json:"fetch,omitempty"`
				View  views.ViewResponse `json:"view"`
			}{}

			if !c.Bool("no-user") {
				var result recommendations.Result
				if c.IsSet("user") {
					result = a.State.SwitchUser(c.Context, c.Int("user"))
				} else {
					var ok bool
					result, ok = a.LoadDefaultUser(c.Context)
					if !ok {
						return errors.New("no users in the catalog")
					}
				}
				fetch := views.NewFetchResult(result)
				resp.Fetch = &fetch
			}

			// A successful fetch jumps back to the owned view, so the mode is
			// applied after it.
			applyViewFlags(c, a.State, mode, sort)

			resp.View = views.Present(a.State.View())
			return writeJSON(out, resp)
		},
	}
}

func applyViewFlags(c *cli.Context, state *viewstate.State, mode models.ViewMode, sort pipeline.SortKey) {
	state.SetViewMode(mode)

	update := viewstate.FilterUpdate{}
	if c.IsSet("search") {
		v := c.String("search")
		update.Query = &v
	}
	if c.IsSet("author") {
		v := c.String("author")
		update.Author = &v
	}
	if c.IsSet("publisher") {
		v := c.String("publisher")
		update.Publisher = &v
	}
	if c.IsSet("year-min") {
		v := c.Int("year-min")
		update.YearMin = &v
	}
	if c.IsSet("year-max") {
		v := c.Int("year-max")
		update.YearMax = &v
	}
	state.SetFilter(update)
	state.SetSort(sort)

	if c.IsSet("page-size") {
		state.SetPageSize(c.Int("page-size"))
	}
	state.SetPage(c.Int("page"))
}
