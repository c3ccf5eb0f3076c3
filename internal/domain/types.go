package domain

// Pagination defines standard offset paging inputs for list operations.
// Page is 1-based; PageSize is already clamped by the transport layer.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the number of items preceding the requested page.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// Page carries one page of results plus the size of the filtered set.
type Page[T any] struct {
	Items []T
	Total int
}
