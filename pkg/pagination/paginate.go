// Package pagination slices an ordered result into pages.
package pagination

import (
	"github.com/pkg/errors"
)

// Page is one bounded slice of a result plus its page metadata.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
}

// TotalPages is max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (count + pageSize - 1) / pageSize
	return max(1, pages)
}

// ClampPage fits requested into [1, totalPages].
func ClampPage(requested, totalPages int) int {
	return min(max(requested, 1), max(totalPages, 1))
}

// Paginate returns the requested page of items, clamping the page number into
// range. A pageSize below 1 is treated as 1. The returned slice shares no
// backing array with items.
func Paginate[T any](items []T, pageSize, requestedPage int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := TotalPages(len(items), pageSize)
	current := ClampPage(requestedPage, total)

	start := min((current-1)*pageSize, len(items))
	end := min(current*pageSize, len(items))

	slice := make([]T, end-start)
	copy(slice, items[start:end])

	return Page[T]{
		Items:       slice,
		CurrentPage: current,
		TotalPages:  total,
		PageSize:    pageSize,
		TotalItems:  len(items),
	}
}

// Paginator carries the configured page-size bounds.
type Paginator struct {
	MinPageSize     int
	MaxPageSize     int
	DefaultPageSize int
}

func NewPaginator(minSize, maxSize, defaultSize int) (*Paginator, error) {
	if minSize < 1 {
		return nil, errors.Errorf("minimum page size must be positive, got %d", minSize)
	}
	if maxSize < minSize {
		return nil, errors.Errorf("maximum page size %d is below minimum %d", maxSize, minSize)
	}
	p := &Paginator{MinPageSize: minSize, MaxPageSize: maxSize}
	p.DefaultPageSize = p.ClampPageSize(defaultSize)
	return p, nil
}

// ClampPageSize fits size into the configured bounds.
func (p *Paginator) ClampPageSize(size int) int {
	return min(max(size, p.MinPageSize), p.MaxPageSize)
}
