// Package common holds small value types shared across layers.
package common

import "math"

// Pagination describes one page of a listing.  Pages are 1-based.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination clamps page to >= 1 and to maxPage.  pageSize must already be positive.
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if last := maxPage(pageSize); page > last {
		page = last
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset returns the SQL OFFSET value.  It never overflows: pages past
// maxPage share its offset, which is past any real table.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.PageSize <= 0 {
		return 0
	}
	return (min(p.Page, maxPage(p.PageSize)) - 1) * p.PageSize
}

// maxPage bounds the page number so that its offset fits in an int.
func maxPage(pageSize int) int {
	if pageSize <= 0 {
		return math.MaxInt
	}
	return math.MaxInt / pageSize
}

// TotalPages returns the number of pages needed for Total items.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
