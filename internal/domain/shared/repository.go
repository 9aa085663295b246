package shared

// DefaultPageSize is the page size used by list endpoints unless stated otherwise
const DefaultPageSize = 20

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Paginate slices items (already filtered and sorted) into the requested
// 1-based page. Pages past the end yield an empty slice.
func Paginate[T any](items []T, page, pageSize int) Paginated[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	from := (page - 1) * pageSize
	if from > total {
		from = total
	}
	to := from + pageSize
	if to > total {
		to = total
	}
	window := make([]T, to-from)
	copy(window, items[from:to])
	return NewPaginated(window, int64(total), page, pageSize)
}
