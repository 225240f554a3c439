package shared

// Page sizes offered by list views. Applied client-side only; the backend
// is never asked for a page.
var PageSizeOptions = []int{5, 10, 20}

// DefaultPageSize is the page size list views start with
const DefaultPageSize = 5

// Paginated represents one client-side slice of a list
type Paginated[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the requested 1-based page.
// Out of range pages yield an empty Items slice with the totals still set.
func Paginate[T any](items []T, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Paginated[T]{
		Items:      items[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// IsValidPageSize reports whether size is one of PageSizeOptions
func IsValidPageSize(size int) bool {
	for _, s := range PageSizeOptions {
		if s == size {
			return true
		}
	}
	return false
}
