package pagination

import (
	"net/url"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Params are the normalized page/pageSize a search runs with.
type Params struct {
	Page     int
	PageSize int
}

// Parse reads page and pageSize from query parameters. Page is at least 1,
// pageSize is clamped to [1, 100] with a default of 10.
func Parse(query url.Values) Params {
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return Params{Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta is the pagination block of the response envelope.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewMeta computes response metadata for a result set.
func NewMeta(p Params, totalItems int) Meta {
	totalPages := totalItems / p.PageSize
	if totalItems%p.PageSize != 0 {
		totalPages++
	}
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
