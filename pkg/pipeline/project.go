// Package pipeline filters and orders a display pool.
package pipeline

import (
	"slices"

	"github.com/shishobooks/shelfrec/pkg/models"
)

// Project filters pool by spec and stably sorts the survivors by key. The pool
// is left untouched; the result is always a new slice.
func Project(pool []models.Item, spec FilterSpec, key SortKey) []models.Item {
	match := spec.compile()

	result := make([]models.Item, 0, len(pool))
	for _, item := range pool {
		if match(item) {
			result = append(result, item)
		}
	}

	slices.SortStableFunc(result, Comparator(key))
	return result
}
