package models

import "strings"

// Pagination defaults shared by every list endpoint.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit far from int overflow; Postgres rejects
	// a negative OFFSET.
	MaxPage = 1_000_000
)

// SortDirection is either "asc" or "desc".
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField is one positional entry of a multi-field sort.
type SortField struct {
	Field     string
	Direction SortDirection
}

// ListQuery carries the paging and sorting parameters common to all lists.
// SortBy and SortOrder are zipped positionally; a missing direction means asc.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    []string
	SortOrder []string
}

// Normalize applies defaults and clamps the page number and size.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}

	if q.Page > MaxPage {
		q.Page = MaxPage
	}

	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset returns the number of rows to skip for the current page.
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Sort zips SortBy with SortOrder. Anything other than "desc" sorts ascending.
func (q *ListQuery) Sort() []SortField {
	fields := make([]SortField, 0, len(q.SortBy))

	for i, f := range q.SortBy {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		dir := SortAsc
		if i < len(q.SortOrder) && strings.EqualFold(strings.TrimSpace(q.SortOrder[i]), string(SortDesc)) {
			dir = SortDesc
		}

		fields = append(fields, SortField{Field: f, Direction: dir})
	}

	return fields
}

// Page is one page of a filtered list plus the total number of matches.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
