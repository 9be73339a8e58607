package services

import (
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Pagination is a 1-based page request
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination clamps page and size to sane values
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo is the pagination block returned with list responses
type PageInfo struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalRecords int64 `json:"total_records"`
	PerPage      int   `json:"per_page"`
}

// Info builds the pagination metadata for a result of total rows
func (p Pagination) Info(total int64) PageInfo {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return PageInfo{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalRecords: total,
		PerPage:      p.PageSize,
	}
}

// likePattern wraps a search term for a substring LIKE match. SQLite LIKE
// is case-insensitive for ASCII.
func likePattern(term string) string {
	return "%" + strings.TrimSpace(term) + "%"
}
