package catalog

import (
	"cmp"
	"slices"

	"github.com/shishobooks/shelfrec/pkg/models"
)

const DefaultTopRatedLimit = 3

// TopRated scores each item with the average of its explicit ratings (0 when
// unrated), orders by that average descending and keeps the first limit
// items. Ties keep catalog order. A limit below 1 means DefaultTopRatedLimit.
func TopRated(items []models.Item, ratings []*models.Rating, limit int) []models.Item {
	if limit < 1 {
		limit = DefaultTopRatedLimit
	}

	type tally struct {
		sum   int
		count int
	}
	tallies := map[string]*tally{}
	for _, r := range ratings {
		t, ok := tallies[r.ItemID]
		if !ok {
			t = &tally{}
			tallies[r.ItemID] = t
		}
		t.sum += r.Value
		t.count++
	}

	scored := make([]models.Item, len(items))
	for i, item := range items {
		avg := 0.0
		if id, ok := item.Identity(); ok {
			if t, ok := tallies[id]; ok {
				avg = float64(t.sum) / float64(t.count)
			}
		}
		scored[i] = item.WithScore(avg)
	}

	slices.SortStableFunc(scored, func(a, b models.Item) int {
		return cmp.Compare(b.ScoreValue(), a.ScoreValue())
	})

	return scored[:min(limit, len(scored))]
}
