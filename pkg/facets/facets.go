// Package facets derives the filter vocabularies and year bounds of a display
// pool.
package facets

import (
	"slices"
	"strings"

	"github.com/shishobooks/shelfrec/pkg/models"
)

// Fallback year bounds for a pool where no item has a positive year.
const (
	DefaultMinYear = 1900
	DefaultMaxYear = 2024
)

// YearRange is an inclusive range of publication years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Normalize swaps inverted bounds.
func (r YearRange) Normalize() YearRange {
	if r.Min > r.Max {
		return YearRange{Min: r.Max, Max: r.Min}
	}
	return r
}

func (r YearRange) Contains(year int) bool {
	r = r.Normalize()
	return year >= r.Min && year <= r.Max
}

// Facets is everything the filter controls need from a pool.
type Facets struct {
	Authors    []string  `json:"authors"`
	Publishers []string  `json:"publishers"`
	Years      YearRange `json:"years"`
}

// Derive computes all facets of pool in one pass per facet. fallback is used
// for the year bounds when no item has a positive year.
func Derive(pool []models.Item, fallback YearRange) Facets {
	return Facets{
		Authors:    DistinctAuthors(pool),
		Publishers: DistinctPublishers(pool),
		Years:      YearBoundsOr(pool, fallback),
	}
}

// DistinctAuthors returns the sorted, deduplicated, non-empty authors.
func DistinctAuthors(pool []models.Item) []string {
	return distinct(pool, func(i models.Item) string { return i.Author })
}

// DistinctPublishers returns the sorted, deduplicated, non-empty publishers.
func DistinctPublishers(pool []models.Item) []string {
	return distinct(pool, func(i models.Item) string { return i.Publisher })
}

func distinct(pool []models.Item, field func(models.Item) string) []string {
	seen := make(map[string]struct{})
	values := []string{}
	for _, item := range pool {
		v := field(item)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// YearBounds returns the smallest and largest positive publication year in the
// pool, or 1900–2024 when there is none.
func YearBounds(pool []models.Item) (int, int) {
	r := YearBoundsOr(pool, YearRange{Min: DefaultMinYear, Max: DefaultMaxYear})
	return r.Min, r.Max
}

// YearBoundsOr is YearBounds with a caller-supplied fallback.
func YearBoundsOr(pool []models.Item, fallback YearRange) YearRange {
	found := false
	r := YearRange{}
	for _, item := range pool {
		y := item.CoerceYear()
		if y <= 0 {
			continue
		}
		if !found {
			r = YearRange{Min: y, Max: y}
			found = true
			continue
		}
		r.Min = min(r.Min, y)
		r.Max = max(r.Max, y)
	}
	if !found {
		return fallback.Normalize()
	}
	return r
}

// ClampYearRange re-fits a held year filter to the bounds of a new pool.
//
// A filter that still spans the previous bounds was never narrowed, so it
// follows the new bounds. A narrowed filter is intersected with the new
// bounds, and if nothing is left it is reset to them.
func ClampYearRange(held, previousBounds, bounds YearRange) YearRange {
	held = held.Normalize()
	bounds = bounds.Normalize()
	if held == previousBounds.Normalize() {
		return bounds
	}

	clamped := YearRange{Min: max(held.Min, bounds.Min), Max: min(held.Max, bounds.Max)}
	if clamped.Min > clamped.Max {
		return bounds
	}
	return clamped
}
