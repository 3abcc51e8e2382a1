package pipeline

import (
	"cmp"
	"strings"

	"github.com/shishobooks/shelfrec/pkg/models"
)

// SortKey names one of the supported total orders.
type SortKey string

const (
	SortTitle      SortKey = "title"
	SortAuthor     SortKey = "author"
	SortYearDesc   SortKey = "year-desc"
	SortYearAsc    SortKey = "year-asc"
	SortRatingDesc SortKey = "rating-desc"
)

// DefaultSort is the order used until the user picks one.
const DefaultSort = SortTitle

// SortKeys lists every supported key in display order.
var SortKeys = []SortKey{SortTitle, SortAuthor, SortYearDesc, SortYearAsc, SortRatingDesc}

func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// ParseSortKey accepts the wire names case-insensitively and falls back to
// DefaultSort for anything unknown.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k
	}
	return DefaultSort
}

// Comparator returns the three-way comparison for key. Missing fields compare
// as the empty string or 0. An unknown key compares everything as equal, which
// with a stable sort keeps the input order.
func Comparator(key SortKey) func(a, b models.Item) int {
	switch key {
	case SortTitle:
		return func(a, b models.Item) int { return strings.Compare(a.Title, b.Title) }
	case SortAuthor:
		return func(a, b models.Item) int { return strings.Compare(a.Author, b.Author) }
	case SortYearDesc:
		return func(a, b models.Item) int { return cmp.Compare(b.CoerceYear(), a.CoerceYear()) }
	case SortYearAsc:
		return func(a, b models.Item) int { return cmp.Compare(a.CoerceYear(), b.CoerceYear()) }
	case SortRatingDesc:
		return func(a, b models.Item) int { return cmp.Compare(b.ScoreValue(), a.ScoreValue()) }
	default:
		return func(models.Item, models.Item) int { return 0 }
	}
}
