// Package viewstate holds the single interactive view: which user and view
// mode are active, the filter, sort and page parameters, and the derived
// pool, facets and projection. Each derived value is cached against exactly
// the inputs it depends on and is only recomputed when one of them changes.
package viewstate

import (
	"context"
	"sync"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelfrec/pkg/facets"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
	"github.com/shishobooks/shelfrec/pkg/pool"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
)

type Options struct {
	Paginator   *pagination.Paginator
	Coordinator *recommendations.Coordinator
	// FallbackYears are the year bounds of a pool with no dated items.
	FallbackYears facets.YearRange
}

type State struct {
	paginator     *pagination.Paginator
	coordinator   *recommendations.Coordinator
	fallbackYears facets.YearRange

	mu sync.Mutex

	base        []models.Item
	baseVersion uint64
	users       []*models.User

	mode      models.ViewMode
	query     string
	author    string
	publisher string
	sort      pipeline.SortKey
	page      int
	pageSize  int

	// years is the held year filter. yearsFitted is the pool bounds it was
	// last fitted to, so a pool change can tell whether the user narrowed it.
	years       facets.YearRange
	yearsFitted facets.YearRange
	yearsSet    bool

	poolCache       poolCache
	projectionCache projectionCache
}

type poolKey struct {
	baseVersion uint64
	recsVersion uint64
	hasUser     bool
	userID      int
	mode        models.ViewMode
}

type poolCache struct {
	valid   bool
	key     poolKey
	version uint64
	items   []models.Item
	facets  facets.Facets
}

type projectionKey struct {
	poolVersion uint64
	filter      pipeline.Key
	sort        pipeline.SortKey
}

type projectionCache struct {
	valid bool
	key   projectionKey
	items []models.Item
}

func New(opts Options) *State {
	fallback := opts.FallbackYears
	if fallback == (facets.YearRange{}) {
		fallback = facets.YearRange{Min: facets.DefaultMinYear, Max: facets.DefaultMaxYear}
	}
	return &State{
		paginator:     opts.Paginator,
		coordinator:   opts.Coordinator,
		fallbackYears: fallback.Normalize(),
		mode:          models.ViewModeOwned,
		sort:          pipeline.DefaultSort,
		page:          1,
		pageSize:      opts.Paginator.DefaultPageSize,
	}
}

// SetBase replaces the base catalog wholesale.
func (s *State) SetBase(items []models.Item) {
	cp := make([]models.Item, len(items))
	copy(cp, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = cp
	s.baseVersion++
}

// SetUsers replaces the user directory. The first user is the default user.
func (s *State) SetUsers(users []*models.User) {
	cp := make([]*models.User, len(users))
	copy(cp, users)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = cp
}

// DefaultUserID is the user the initial load is made for.
func (s *State) DefaultUserID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) == 0 {
		return 0, false
	}
	return s.users[0].ID, true
}

// ActiveUserID is the user most recently selected, or nil before the first
// selection.
func (s *State) ActiveUserID() *int {
	return s.coordinator.Snapshot().ActiveUserID
}

// SwitchUser makes userID the active user and fetches their recommendations.
// The previous user's results stay on display until the new ones arrive.
func (s *State) SwitchUser(ctx context.Context, userID int) recommendations.Result {
	logger.FromContext(ctx).Info("switching user", logger.Data{"user_id": userID})
	return s.fetch(ctx, userID)
}

// Refresh refetches recommendations for the active user. It reports false when
// there is no active user yet.
func (s *State) Refresh(ctx context.Context) (recommendations.Result, bool) {
	userID, ok := s.coordinator.ActiveUserID()
	if !ok {
		return recommendations.Result{}, false
	}
	return s.fetch(ctx, userID), true
}

func (s *State) fetch(ctx context.Context, userID int) recommendations.Result {
	result := s.coordinator.Fetch(ctx, userID)
	if result.Outcome != recommendations.OutcomeSucceeded {
		return result
	}

	// New recommendations are only visible in the owned view, so jump there.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != models.ViewModeOwned {
		s.mode = models.ViewModeOwned
		s.page = 1
	}
	return result
}

// SetViewMode switches between the owned collection and the raw
// recommendation list. Invalid modes are ignored.
func (s *State) SetViewMode(mode models.ViewMode) {
	if !mode.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return
	}
	s.mode = mode
	s.page = 1
}

// FilterUpdate carries the filter fields to change. Nil fields are left as
// they are.
type FilterUpdate struct {
	Query     *string
	Author    *string
	Publisher *string
	YearMin   *int
	YearMax   *int
}

// SetFilter applies the non-nil fields of u. Any actual change resets the
// page to 1.
func (s *State) SetFilter(u FilterUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	set := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	set(&s.query, u.Query)
	set(&s.author, u.Author)
	set(&s.publisher, u.Publisher)

	if u.YearMin != nil || u.YearMax != nil {
		_, current := s.derivePool(s.coordinator.Snapshot())
		bounds := current.facets.Years
		held := s.heldYears(bounds)
		next := held
		if u.YearMin != nil {
			next.Min = *u.YearMin
		}
		if u.YearMax != nil {
			next.Max = *u.YearMax
		}
		next = next.Normalize()
		if next != held {
			changed = true
		}
		s.years = next
		s.yearsFitted = bounds
		s.yearsSet = true
	}

	if changed {
		s.page = 1
	}
}

// SetSort selects the result order. Unknown keys are kept and leave the
// filtered order untouched.
func (s *State) SetSort(key pipeline.SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sort == key {
		return
	}
	s.sort = key
	s.page = 1
}

// SetPage requests a page. It is clamped when the view is computed.
func (s *State) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

// SetPageSize changes the page size within the configured bounds.
func (s *State) SetPageSize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = s.paginator.ClampPageSize(size)
}

// ResetFilters clears the text filters, resets the year filter to the pool's
// bounds and the sort to the default, and goes back to the first page.
func (s *State) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.author = ""
	s.publisher = ""
	s.yearsSet = false
	s.sort = pipeline.DefaultSort
	s.page = 1
}

// derivePool returns the display pool and its facets for the current inputs,
// rebuilding them only when the base catalog, the recommendations, the user
// they belong to or the view mode changed. Callers hold s.mu.
func (s *State) derivePool(snap recommendations.Snapshot) (uint64, poolCache) {
	// Everything shown belongs to one user: the one the current
	// recommendations were fetched for, or the requested user before any
	// result has arrived.
	user := snap.ResultUserID
	if user == nil {
		user = snap.ActiveUserID
	}

	key := poolKey{
		baseVersion: s.baseVersion,
		recsVersion: snap.Version,
		mode:        s.mode,
	}
	if user != nil {
		key.hasUser = true
		key.userID = *user
	}

	if s.poolCache.valid && s.poolCache.key == key {
		return s.poolCache.version, s.poolCache
	}

	items := pool.BuildDisplayPool(s.base, snap.Recommendations, user, s.mode)
	derived := facets.Derive(items, s.fallbackYears)

	previous := s.poolCache
	s.poolCache = poolCache{
		valid:   true,
		key:     key,
		version: previous.version + 1,
		items:   items,
		facets:  derived,
	}

	if s.yearsSet {
		s.years = facets.ClampYearRange(s.years, s.yearsFitted, derived.Years)
		s.yearsFitted = derived.Years
	}

	return s.poolCache.version, s.poolCache
}

// heldYears is the active year filter: the user's range if one was set,
// otherwise the pool's bounds.
func (s *State) heldYears(bounds facets.YearRange) facets.YearRange {
	if !s.yearsSet {
		return bounds
	}
	return s.years
}

func (s *State) project(poolVersion uint64, items []models.Item, spec pipeline.FilterSpec) []models.Item {
	key := projectionKey{poolVersion: poolVersion, filter: spec.Key(), sort: s.sort}
	if s.projectionCache.valid && s.projectionCache.key == key {
		return s.projectionCache.items
	}
	projected := pipeline.Project(items, spec, s.sort)
	s.projectionCache = projectionCache{valid: true, key: key, items: projected}
	return projected
}
