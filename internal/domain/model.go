package domain

import "time"

// SortDir is the direction of a sorted column.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// PageRequest is the wire-level shape of a list read: zero-based page index,
// page size, free-text search, optional sort and entity-specific filters.
// Filters with an empty value are treated as unset.
type PageRequest struct {
	PageIndex  int
	PageSize   int
	Search     string
	SortColumn string
	SortDir    SortDir
	Filters    map[string]string
}

// Filter returns the value of the named filter, or "" when unset.
func (r PageRequest) Filter(name string) string {
	if r.Filters == nil {
		return ""
	}
	return r.Filters[name]
}

// Envelope is a normalized page of a remote collection.
//
// Invariants after normalization: len(Items) <= PageSize, TotalCount >= 0,
// Page >= 1, and TotalPages == ceil(TotalCount/PageSize) (0 for an empty
// collection).
type Envelope[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// TotalPages computes ceil(total/size); it is 0 when total or size is not positive.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Timestamps holds the server-assigned audit times present on most records.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
