package pipeline

import (
	"strings"

	"github.com/shishobooks/shelfrec/pkg/facets"
	"github.com/shishobooks/shelfrec/pkg/models"
)

// FilterSpec holds the active predicates. An empty field imposes no
// constraint; a nil YearRange imposes none either.
type FilterSpec struct {
	Query     string
	YearRange *facets.YearRange
	Author    string
	Publisher string
}

// Key is a comparable snapshot of the filter, usable as a cache key.
type Key struct {
	Query     string
	HasYears  bool
	Years     facets.YearRange
	Author    string
	Publisher string
}

func (f FilterSpec) Key() Key {
	k := Key{
		Query:     strings.ToLower(f.Query),
		Author:    strings.ToLower(f.Author),
		Publisher: strings.ToLower(f.Publisher),
	}
	if f.YearRange != nil {
		k.HasYears = true
		k.Years = f.YearRange.Normalize()
	}
	return k
}

// Matches reports whether the item satisfies every non-empty predicate.
func (f FilterSpec) Matches(item models.Item) bool {
	return f.compile()(item)
}

type predicate func(models.Item) bool

// compile lowers the query strings once so a projection doesn't redo it per
// item.
func (f FilterSpec) compile() predicate {
	k := f.Key()
	preds := []predicate{}

	if k.Query != "" {
		q := k.Query
		preds = append(preds, func(i models.Item) bool {
			return containsFold(i.Title, q) ||
				containsFold(i.Author, q) ||
				containsFold(i.Publisher, q) ||
				containsFold(i.ID, q)
		})
	}
	if k.HasYears {
		years := k.Years
		preds = append(preds, func(i models.Item) bool {
			return years.Contains(i.CoerceYear())
		})
	}
	if k.Author != "" {
		a := k.Author
		preds = append(preds, func(i models.Item) bool { return containsFold(i.Author, a) })
	}
	if k.Publisher != "" {
		p := k.Publisher
		preds = append(preds, func(i models.Item) bool { return containsFold(i.Publisher, p) })
	}

	return func(i models.Item) bool {
		for _, p := range preds {
			if !p(i) {
				return false
			}
		}
		return true
	}
}

// containsFold expects needle to be lowercased already.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
