package viewstate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
)

// Refresher periodically refreshes the active user's recommendations.
type Refresher struct {
	state    *State
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// NewRefresher returns a refresher that fires every interval. Each refresh is
// bounded by timeout when it is positive.
func NewRefresher(state *State, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		state:    state,
		interval: interval,
		timeout:  timeout,
		log:      logger.New(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Refresher) Start() {
	go r.run()
}

func (r *Refresher) run() {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-r.shutdown:
			r.done <- struct{}{}
			return
		case <-timer.C:
			r.refresh()
			timer.Reset(r.interval)
		}
	}
}

func (r *Refresher) refresh() {
	log := r.log.ID(uuid.NewString()).Root(logger.Data{"trigger": "interval"})
	ctx := log.WithContext(context.Background())
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, ok := r.state.Refresh(ctx)
	if !ok {
		log.Info("no active user to refresh")
		return
	}
	log.Info("refreshed recommendations", logger.Data{"user_id": result.UserID, "outcome": result.Outcome})
}

// Shutdown stops the refresher and waits for an in-progress refresh to finish.
func (r *Refresher) Shutdown() {
	close(r.shutdown)
	<-r.done
}
