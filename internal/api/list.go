package api

import (
	"net/url"
	"strconv"

	"github.com/simp-lee/parkdash/internal/domain"
)

const defaultPageSize = 10

// listResponse is the paginated envelope as the backend sends it.
type listResponse[T any] struct {
	Data       []T `json:"data"`
	TotalItems int `json:"totalItems"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// itemResponse wraps single-record responses.
type itemResponse[T any] struct {
	Data T `json:"data"`
}

// listQuery encodes req as list query parameters. page is one-based on the
// wire; search and filters are sent only when non-empty. filters names the
// entity filters the endpoint understands; anything else in req is dropped.
func listQuery(req domain.PageRequest, filters ...string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(req.PageIndex, 0)+1))
	if req.PageSize > 0 {
		q.Set("limit", strconv.Itoa(req.PageSize))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.SortColumn != "" {
		q.Set("sortBy", req.SortColumn)
		dir := req.SortDir
		if dir != domain.SortDesc {
			dir = domain.SortAsc
		}
		q.Set("sortOrder", string(dir))
	}
	for _, name := range filters {
		if v := req.Filter(name); v != "" {
			q.Set(name, v)
		}
	}
	return q
}

// normalizeList turns a raw list response into an Envelope that satisfies the
// envelope invariants regardless of what the server sent: nil data becomes an
// empty slice, missing paging fields are taken from the request, totalPages
// is recomputed, and items beyond the page size are dropped.
func normalizeList[T any](resp listResponse[T], req domain.PageRequest) domain.Envelope[T] {
	size := resp.Limit
	if size <= 0 {
		size = req.PageSize
	}
	if size <= 0 {
		size = max(len(resp.Data), defaultPageSize)
	}

	page := resp.Page
	if page < 1 {
		page = max(req.PageIndex, 0) + 1
	}

	items := resp.Data
	if items == nil {
		items = []T{}
	}
	if size > 0 && len(items) > size {
		items = items[:size]
	}

	total := resp.TotalItems
	if total < 0 {
		total = 0
	}
	if total < len(items) && page == 1 {
		total = len(items)
	}

	return domain.Envelope[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: domain.TotalPages(total, size),
	}
}
