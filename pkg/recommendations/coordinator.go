package recommendations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelfrec/pkg/models"
)

// NoRecommendationsMessage is the advisory shown when the provider has nothing
// for the user. It is informational, not an error.
const NoRecommendationsMessage = "No recommendations available for this user"

// State is the coordinator's request lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Outcome says how a single Fetch call ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeEmpty     Outcome = "empty"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSuperseded means a newer trigger arrived while this request was
	// in flight and its result was discarded.
	OutcomeSuperseded Outcome = "superseded"
)

// Result is what a Fetch call produced.
type Result struct {
	models.RecommendationResult
	RequestID string
	Outcome   Outcome
	Err       error
}

// Snapshot is a consistent view of the coordinator for readers.
type Snapshot struct {
	State State
	// ActiveUserID is the user most recently requested.
	ActiveUserID *int
	// ResultUserID is the user the current recommendations, error and
	// advisory belong to. It lags ActiveUserID while a fetch is in flight.
	ResultUserID    *int
	Recommendations []models.Item
	Error           string
	Advisory        string
	// Version changes whenever Recommendations or ResultUserID is replaced.
	Version uint64
}

func (s Snapshot) Loading() bool {
	return s.State == StateFetching
}

// Coordinator runs recommendation requests for the active user. A trigger for
// any user supersedes whatever is in flight: the older request's context is
// cancelled and its result, if it still arrives, is discarded.
type Coordinator struct {
	provider Provider
	topN     int

	mu           sync.Mutex
	state        State
	activeUserID *int
	resultUserID *int
	recs         []models.Item
	errMsg       string
	advisory     string
	version      uint64
	seq          uint64
	cancel       context.CancelFunc
}

func NewCoordinator(provider Provider, topN int) *Coordinator {
	return &Coordinator{
		provider: provider,
		topN:     max(topN, 1),
		state:    StateIdle,
	}
}

// Fetch requests recommendations for userID and blocks until the provider
// answers. Previous recommendations stay visible while the request is in
// flight.
func (c *Coordinator) Fetch(ctx context.Context, userID int) Result {
	requestID := uuid.New().String()
	log := logger.FromContext(ctx).Data(logger.Data{"request_id": requestID, "user_id": userID})

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	uid := userID
	c.activeUserID = &uid
	c.state = StateFetching
	// The previous list stays on display. Its error and advisory don't.
	c.errMsg = ""
	c.advisory = ""
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	log.Info("fetching recommendations", logger.Data{"top_n": c.topN})
	start := time.Now()
	items, err := c.provider.Recommend(fetchCtx, userID, c.topN)
	fetchDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	result := Result{
		RecommendationResult: models.RecommendationResult{UserID: userID},
		RequestID:            requestID,
		Err:                  err,
	}

	if seq != c.seq || c.activeUserID == nil || *c.activeUserID != userID {
		result.Outcome = OutcomeSuperseded
		fetchOutcomes.WithLabelValues(string(result.Outcome)).Inc()
		log.Info("discarding superseded recommendations")
		return result
	}
	c.cancel = nil

	c.resultUserID = &uid
	c.version++

	switch {
	case err != nil:
		result.Outcome = OutcomeFailed
		c.state = StateFailed
		c.recs = nil
		c.errMsg = "Error: " + err.Error()
		c.advisory = ""
		log.Err(err).Warn("recommendation fetch failed")
	case len(items) == 0:
		result.Outcome = OutcomeEmpty
		c.state = StateSucceeded
		c.recs = []models.Item{}
		c.errMsg = ""
		c.advisory = NoRecommendationsMessage
		log.Info("no recommendations for user")
	default:
		result.Outcome = OutcomeSucceeded
		result.Items = items
		c.state = StateSucceeded
		c.recs = items
		c.errMsg = ""
		c.advisory = ""
		log.Info("fetched recommendations", logger.Data{"count": len(items)})
	}

	fetchOutcomes.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

// ActiveUserID returns the user most recently requested, if any.
func (c *Coordinator) ActiveUserID() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeUserID == nil {
		return 0, false
	}
	return *c.activeUserID, true
}

// Snapshot returns the current state. The recommendation slice is shared and
// must not be modified; it is only ever replaced wholesale.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:           c.state,
		ActiveUserID:    copyInt(c.activeUserID),
		ResultUserID:    copyInt(c.resultUserID),
		Recommendations: c.recs,
		Error:           c.errMsg,
		Advisory:        c.advisory,
		Version:         c.version,
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
