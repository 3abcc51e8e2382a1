// Package app assembles the engine from config: the store, the seeded
// catalog, the recommendation coordinator and the view state.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/database"
	"github.com/shishobooks/shelfrec/pkg/facets"
	"github.com/shishobooks/shelfrec/pkg/migrations"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
	"github.com/shishobooks/shelfrec/pkg/users"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/uptrace/bun"
)

type App struct {
	Config      *config.Config
	DB          *bun.DB
	Catalog     *catalog.Service
	Users       *users.Service
	Coordinator *recommendations.Coordinator
	State       *viewstate.State
}

// Options overrides parts of the assembly. A nil Provider means the HTTP
// client built from config.
type Options struct {
	Provider recommendations.Provider
}

// New opens the store, brings it up to date, loads the catalog seed and builds
// the view state over it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.FromContext(ctx)

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, db, opts)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			log.Err(cerr).Warn("database close error")
		}
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, db *bun.DB, opts Options) (*App, error) {
	log := logger.FromContext(ctx)

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	seed, err := catalog.LoadSeed(cfg.CatalogSeedFile)
	if err != nil {
		return nil, err
	}
	catalogService := catalog.NewService(db)
	if err := catalogService.Load(ctx, seed); err != nil {
		return nil, err
	}
	log.Info("catalog loaded", logger.Data{
		"users":   len(seed.Users),
		"items":   len(seed.Items),
		"ratings": len(seed.Ratings),
		"source":  seedSource(cfg.CatalogSeedFile),
	})

	provider := opts.Provider
	if provider == nil {
		provider, err = recommendations.NewClient(recommendations.ClientOptions{
			BaseURL:         cfg.RecommenderBaseURL,
			Timeout:         cfg.RecommenderTimeout,
			RateLimit:       cfg.RecommenderRateLimit,
			BreakerFailures: cfg.RecommenderBreakerFailures,
			BreakerCooldown: cfg.RecommenderBreakerCooldown,
		})
		if err != nil {
			return nil, err
		}
	}

	paginator, err := pagination.NewPaginator(cfg.MinPageSize, cfg.MaxPageSize, cfg.DefaultPageSize)
	if err != nil {
		return nil, errors.Wrap(err, "invalid page size bounds")
	}

	coordinator := recommendations.NewCoordinator(provider, cfg.RecommenderTopN)
	state := viewstate.New(viewstate.Options{
		Paginator:     paginator,
		Coordinator:   coordinator,
		FallbackYears: facets.YearRange{Min: cfg.DefaultYearMin, Max: cfg.DefaultYearMax},
	})

	userService := users.NewService(db)
	if err := Reload(ctx, catalogService, userService, state); err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		DB:          db,
		Catalog:     catalogService,
		Users:       userService,
		Coordinator: coordinator,
		State:       state,
	}, nil
}

// Reload copies the stored catalog and user directory into the view state.
func Reload(ctx context.Context, catalogService *catalog.Service, userService *users.Service, state *viewstate.State) error {
	items, err := catalogService.ListItems(ctx)
	if err != nil {
		return err
	}
	all, _, err := userService.List(ctx, users.ListOptions{})
	if err != nil {
		return err
	}
	state.SetBase(items)
	state.SetUsers(all)
	return nil
}

// LoadDefaultUser makes the first user active and fetches their
// recommendations. It reports false when the directory is empty.
func (a *App) LoadDefaultUser(ctx context.Context) (recommendations.Result, bool) {
	userID, ok := a.State.DefaultUserID()
	if !ok {
		return recommendations.Result{}, false
	}
	return a.State.SwitchUser(ctx, userID), true
}

func (a *App) Close() error {
	return errors.WithStack(a.DB.Close())
}

func seedSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
