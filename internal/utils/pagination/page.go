package pagination

import "math"

const (
	// DefaultPageSize is used when a caller does not ask for a size.
	DefaultPageSize = 50
	// MaxPageSize bounds a single page.
	MaxPageSize = 500
)

// Normalize clamps page to at least 1 and pageSize into (0, MaxPageSize].
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Offset returns the number of rows to skip for a 1-based page. Pages too far out to
// address saturate at math.MaxInt, which is past the end of any result.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
