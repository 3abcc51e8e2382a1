package viewstate

import (
	"github.com/shishobooks/shelfrec/pkg/facets"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
)

// View is everything the presentation layer renders.
type View struct {
	Mode            models.ViewMode              `json:"mode"`
	ActiveUserID    *int                         `json:"active_user_id"`
	Filter          Filter                       `json:"filter"`
	Sort            pipeline.SortKey             `json:"sort"`
	Page            pagination.Page[models.Item] `json:"page"`
	Stats           Stats                        `json:"stats"`
	Facets          facets.Facets                `json:"facets"`
	Recommendations RecommendationStatus         `json:"recommendations"`
}

type Filter struct {
	Query     string           `json:"query"`
	Author    string           `json:"author"`
	Publisher string           `json:"publisher"`
	Years     facets.YearRange `json:"years"`
}

type Stats struct {
	PoolSize            int              `json:"pool_size"`
	FilteredCount       int              `json:"filtered_count"`
	TotalPages          int              `json:"total_pages"`
	YearBounds          facets.YearRange `json:"year_bounds"`
	TotalUsers          int              `json:"total_users"`
	RecommendationCount int              `json:"recommendation_count"`
}

type RecommendationStatus struct {
	State    recommendations.State `json:"state"`
	Loading  bool                  `json:"loading"`
	Error    string                `json:"error,omitempty"`
	Advisory string                `json:"advisory,omitempty"`
	Count    int                   `json:"count"`
}

// View computes the current page. The page number is clamped into range and
// the clamped value is kept.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.coordinator.Snapshot()
	poolVersion, current := s.derivePool(snap)
	years := s.heldYears(current.facets.Years)

	spec := pipeline.FilterSpec{
		Query:     s.query,
		Author:    s.author,
		Publisher: s.publisher,
		YearRange: &years,
	}
	projected := s.project(poolVersion, current.items, spec)

	page := pagination.Paginate(projected, s.pageSize, s.page)
	s.page = page.CurrentPage

	return View{
		Mode:         s.mode,
		ActiveUserID: snap.ActiveUserID,
		Filter: Filter{
			Query:     s.query,
			Author:    s.author,
			Publisher: s.publisher,
			Years:     years,
		},
		Sort:   s.sort,
		Page:   page,
		Facets: current.facets,
		Stats: Stats{
			PoolSize:            len(current.items),
			FilteredCount:       len(projected),
			TotalPages:          page.TotalPages,
			YearBounds:          current.facets.Years,
			TotalUsers:          len(s.users),
			RecommendationCount: len(snap.Recommendations),
		},
		Recommendations: RecommendationStatus{
			State:    snap.State,
			Loading:  snap.Loading(),
			Error:    snap.Error,
			Advisory: snap.Advisory,
			Count:    len(snap.Recommendations),
		},
	}
}
