package pipeline

import (
	"testing"

	"github.com/shishobooks/shelfrec/pkg/facets"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func sampleCatalog() []models.Item {
	return []models.Item{
		{ID: "0345417623", Title: "Timeline", Author: "MICHAEL CRICHTON", Publisher: "Ballantine Books", PublicationYear: "2000"},
		models.Item{ID: "0385504209", Title: "The Da Vinci Code", Author: "Dan Brown", Publisher: "Doubleday", PublicationYear: "2003"}.WithScore(4.05),
		models.Item{ID: "0451205367", Title: "Angels & Demons", Author: "Dan Brown", Publisher: "Pocket Star", PublicationYear: "2001"}.WithScore(9.5),
		{ID: "0439136350", Title: "Harry Potter and the Prisoner of Azkaban", Author: "J.K. Rowling", Publisher: "Scholastic", PublicationYear: "2001"},
		{ID: "nodate", Title: "Undated", Author: "Anon", Publisher: "Small Press", PublicationYear: "n/a"},
	}
}

func TestProject_SortByAuthorAscending(t *testing.T) {
	t.Parallel()

	pool := []models.Item{{ID: "1", Author: "Z"}, {ID: "2", Author: "A"}}
	got := Project(pool, FilterSpec{}, SortAuthor)
	assert.Equal(t, []string{"2", "1"}, ids(got))
	assert.Equal(t, []string{"1", "2"}, ids(pool))
}

func TestProject_YearFilterExcludesUnparseableYear(t *testing.T) {
	t.Parallel()

	pool := []models.Item{{ID: "bad", PublicationYear: "unknown"}, {ID: "good", PublicationYear: "2010"}}
	got := Project(pool, FilterSpec{YearRange: &facets.YearRange{Min: 2000, Max: 2024}}, SortTitle)
	assert.Equal(t, []string{"good"}, ids(got))

	got = Project(pool, FilterSpec{YearRange: &facets.YearRange{Min: 0, Max: 2024}}, SortYearAsc)
	assert.Equal(t, []string{"bad", "good"}, ids(got))
}

func TestProject_InvertedYearRangeIsNormalized(t *testing.T) {
	t.Parallel()

	got := Project(sampleCatalog(), FilterSpec{YearRange: &facets.YearRange{Min: 2001, Max: 2000}}, SortYearAsc)
	assert.Equal(t, []string{"0345417623", "0451205367", "0439136350"}, ids(got))
}

func TestProject_TextQueryMatchesAnyField(t *testing.T) {
	t.Parallel()

	pool := sampleCatalog()

	tcs := []struct {
		query string
		want  []string
	}{
		{"da vinci", []string{"0385504209"}},
		{"crichton", []string{"0345417623"}},
		{"SCHOLASTIC", []string{"0439136350"}},
		{"045120", []string{"0451205367"}},
		{"nothing matches this", []string{}},
	}

	for _, tc := range tcs {
		got := Project(pool, FilterSpec{Query: tc.query}, "")
		assert.Equal(t, tc.want, ids(got), "query %q", tc.query)
	}
}

func TestProject_FiltersAreConjunctive(t *testing.T) {
	t.Parallel()

	spec := FilterSpec{
		Author:    "brown",
		Publisher: "pocket",
		YearRange: &facets.YearRange{Min: 2000, Max: 2002},
	}
	got := Project(sampleCatalog(), spec, SortTitle)
	assert.Equal(t, []string{"0451205367"}, ids(got))
}

func TestProject_Idempotent(t *testing.T) {
	t.Parallel()

	spec := FilterSpec{Query: "a", YearRange: &facets.YearRange{Min: 1990, Max: 2024}}
	for _, key := range SortKeys {
		once := Project(sampleCatalog(), spec, key)
		twice := Project(once, spec, key)
		assert.Equal(t, once, twice, "sort %s", key)
	}
}

func TestProject_TighteningNeverGrowsResult(t *testing.T) {
	t.Parallel()

	pool := sampleCatalog()

	loose := []FilterSpec{
		{Author: "b"},
		{Publisher: "o"},
		{Query: "an"},
		{YearRange: &facets.YearRange{Min: 1990, Max: 2010}},
	}
	tight := []FilterSpec{
		{Author: "brown"},
		{Publisher: "pocket"},
		{Query: "angels"},
		{YearRange: &facets.YearRange{Min: 2001, Max: 2002}},
	}

	for i := range loose {
		l := len(Project(pool, loose[i], SortTitle))
		tt := len(Project(pool, tight[i], SortTitle))
		assert.LessOrEqual(t, tt, l, "case %d", i)
	}
}

func TestProject_SortOrders(t *testing.T) {
	t.Parallel()

	pool := sampleCatalog()

	assert.Equal(t,
		[]string{"0451205367", "0439136350", "0385504209", "0345417623", "nodate"},
		ids(Project(pool, FilterSpec{}, SortTitle)))
	assert.Equal(t,
		[]string{"0385504209", "0451205367"},
		ids(Project(pool, FilterSpec{Author: "dan"}, SortAuthor)))
	assert.Equal(t,
		[]string{"0385504209", "0451205367", "0439136350", "0345417623", "nodate"},
		ids(Project(pool, FilterSpec{}, SortYearDesc)))
	assert.Equal(t,
		[]string{"nodate", "0345417623", "0451205367", "0439136350", "0385504209"},
		ids(Project(pool, FilterSpec{}, SortYearAsc)))
	assert.Equal(t,
		[]string{"0451205367", "0385504209", "0345417623", "0439136350", "nodate"},
		ids(Project(pool, FilterSpec{}, SortRatingDesc)))
}

func TestProject_UnknownSortKeepsInputOrder(t *testing.T) {
	t.Parallel()

	pool := sampleCatalog()
	assert.Equal(t, ids(pool), ids(Project(pool, FilterSpec{}, SortKey("bogus"))))
}

func TestComparator_AntisymmetricAndStable(t *testing.T) {
	t.Parallel()

	pool := append(sampleCatalog(),
		models.Item{ID: "tie-1", Title: "Same", Author: "Same", PublicationYear: "2001"},
		models.Item{ID: "tie-2", Title: "Same", Author: "Same", PublicationYear: "2001"},
		models.Item{},
	)

	for _, key := range SortKeys {
		cmpFn := Comparator(key)
		for _, a := range pool {
			for _, b := range pool {
				ab := cmpFn(a, b)
				ba := cmpFn(b, a)
				assert.False(t, ab < 0 && ba < 0, "sort %s: %q and %q both less", key, a.ID, b.ID)
				assert.Equal(t, ab == 0, ba == 0, "sort %s", key)
			}
		}

		got := Project(pool, FilterSpec{Query: "same"}, key)
		require.Len(t, got, 2)
		assert.Equal(t, []string{"tie-1", "tie-2"}, ids(got), "sort %s must keep tie order", key)
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SortYearDesc, ParseSortKey(" Year-Desc "))
	assert.Equal(t, SortRatingDesc, ParseSortKey("rating-desc"))
	assert.Equal(t, DefaultSort, ParseSortKey("popularity"))
	assert.Equal(t, DefaultSort, ParseSortKey(""))
}

func TestFilterSpec_KeyNormalizes(t *testing.T) {
	t.Parallel()

	a := FilterSpec{Query: "Dan", YearRange: &facets.YearRange{Min: 2004, Max: 2000}}
	b := FilterSpec{Query: "dan", YearRange: &facets.YearRange{Min: 2000, Max: 2004}}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, FilterSpec{}.Key(), b.Key())
}
