package models

// DefaultPageSize is the fixed page size of every list endpoint.
const DefaultPageSize = 10

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination builds metadata for the given page. TotalPages is at least 1.
func NewPagination(page, size, total int) *Pagination {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}

// NormalizePage clamps page into [1, lastPage] where lastPage derives from
// total and size. Requests beyond the end land on the last page.
func NormalizePage(page, size, total int) int {
	if page < 1 {
		page = 1
	}
	last := NewPagination(page, size, total).TotalPages
	if page > last {
		return last
	}
	return page
}
