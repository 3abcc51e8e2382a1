// Package pool assembles the display pool for a (view mode, user) pair from
// the base catalog and the active user's recommendations.
package pool

import (
	"github.com/shishobooks/shelfrec/pkg/models"
)

// BuildDisplayPool merges base and recommendation items into a deduplicated,
// ordered collection.
//
// In the recommendations view the pool is exactly recs. In the owned view it
// holds every base item that is unowned, owned by activeUserID, or also
// recommended, followed by the recommendations stamped with activeUserID.
// When two entries share an identity the later one replaces the earlier one
// but keeps the earlier one's position, so a recommendation overrides the base
// record in the base record's slot. Items without identity are never merged.
//
// The inputs are never modified.
func BuildDisplayPool(base, recs []models.Item, activeUserID *int, mode models.ViewMode) []models.Item {
	if mode == models.ViewModeRecommendations {
		out := make([]models.Item, len(recs))
		copy(out, recs)
		return out
	}

	recommended := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		if id, ok := rec.Identity(); ok {
			recommended[id] = struct{}{}
		}
	}

	m := newOrderedMerge(len(base) + len(recs))
	for _, item := range base {
		if visibleTo(item, activeUserID, recommended) {
			m.put(item)
		}
	}
	for _, rec := range recs {
		if activeUserID != nil {
			rec = rec.WithOwner(*activeUserID)
		}
		m.put(rec)
	}

	return m.items
}

func visibleTo(item models.Item, activeUserID *int, recommended map[string]struct{}) bool {
	if item.OwnerUserID == nil {
		return true
	}
	if activeUserID != nil && item.IsOwnedBy(*activeUserID) {
		return true
	}
	if id, ok := item.Identity(); ok {
		_, found := recommended[id]
		return found
	}
	return false
}

// orderedMerge is an insertion-ordered map from identity to item.
type orderedMerge struct {
	items []models.Item
	index map[string]int
}

func newOrderedMerge(capacity int) *orderedMerge {
	return &orderedMerge{
		items: make([]models.Item, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (m *orderedMerge) put(item models.Item) {
	id, ok := item.Identity()
	if !ok {
		m.items = append(m.items, item)
		return
	}
	if pos, found := m.index[id]; found {
		m.items[pos] = item
		return
	}
	m.index[id] = len(m.items)
	m.items = append(m.items, item)
}
