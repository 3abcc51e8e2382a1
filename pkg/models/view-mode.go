package models

// ViewMode selects which logical collection is shown.
type ViewMode string

const (
	// ViewModeOwned is the active user's collection merged with their
	// recommendations.
	ViewModeOwned ViewMode = "owned"
	// ViewModeRecommendations is the raw ranked recommendation list.
	ViewModeRecommendations ViewMode = "recommendations"
)

func (m ViewMode) Valid() bool {
	return m == ViewModeOwned || m == ViewModeRecommendations
}

// RecommendationResult is the ranked output of the provider for one user,
// kept in the order the provider returned it.
type RecommendationResult struct {
	UserID int    `json:"user_id"`
	Items  []Item `json:"items"`
}
