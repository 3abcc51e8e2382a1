package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/shelfrec/pkg/binder"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/testutils"
	"github.com/shishobooks/shelfrec/pkg/users"
	"github.com/shishobooks/shelfrec/pkg/views"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, state *viewstate.State) (*http.Server, error) {
	e, err := newEcho(cfg, db, state)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, state *viewstate.State) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	config.RegisterRoutes(e, cfg)
	users.RegisterRoutes(e, db, state)
	views.RegisterRoutes(e, state, catalog.NewService(db))

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db, state)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
