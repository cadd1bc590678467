package listing

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// PageInfo describes one page of a listing.
type PageInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
}

// NormalizePage clamps page and size to their allowed ranges.
func NormalizePage(page, size int) (int, int) {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return page, size
}

// Paginate returns the 1-based page of items and its description. A page past
// the end yields an empty slice.
func Paginate[T any](items []T, page, size int) ([]T, PageInfo) {
	page, size = NormalizePage(page, size)

	total := len(items)
	start, end := total, total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
		end = min(start+size, total)
	}

	totalPages := int(math.Ceil(float64(total) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  total,
	}
}
