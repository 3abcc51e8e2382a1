package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shishobooks/shelfrec/pkg/app"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/server"
	"github.com/shishobooks/shelfrec/pkg/version"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting shelfrec", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	a, err := app.New(log.WithContext(ctx), cfg, app.Options{})
	if err != nil {
		log.Err(err).Fatal("startup error")
	}

	srv, err := server.New(cfg, a.DB, a.State)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		// Extract actual port (useful when ServerPort is 0)
		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort})

		if err := writePortFile(actualPort); err != nil {
			log.Err(err).Error("failed to write port file")
		}

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	// The first user is loaded in the background so the server answers while
	// the recommender is slow or down.
	go func() {
		initLog := log.ID(uuid.NewString()).Root(logger.Data{"trigger": "startup"})
		result, ok := a.LoadDefaultUser(initLog.WithContext(ctx))
		if !ok {
			initLog.Warn("user directory is empty; no default user")
			return
		}
		initLog.Info("default user loaded", logger.Data{"user_id": result.UserID, "outcome": result.Outcome})
	}()

	var refresher *viewstate.Refresher
	if cfg.RefreshInterval > 0 {
		refresher = viewstate.NewRefresher(a.State, cfg.RefreshInterval, cfg.RecommenderTimeout)
		refresher.Start()
		log.Info("refresher started", logger.Data{"interval": cfg.RefreshInterval.String()})
	}

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	if refresher != nil {
		refresher.Shutdown()
		log.Info("refresher shutdown")
	}

	err = a.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// writePortFile writes the server's actual port to tmp/api.port for local
// tooling. Skips silently if tmp/ directory doesn't exist (e.g., in Docker).
func writePortFile(port int) error {
	if _, err := os.Stat("tmp"); os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile("tmp/api.port", []byte(strconv.Itoa(port)), 0600)
}
