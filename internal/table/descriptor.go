// Package table is the controlled view-model behind every paginated list.
//
// A Descriptor carries the list parameters a page asked for (page, size,
// search, sort and filters) and round-trips through the URL query string.
// A Table combines a Descriptor with one page of rows and renders a View; it
// never fetches. A Tracker discards responses that a newer request for the
// same table has superseded.
package table

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Query string parameter names.
const (
	ParamPage   = "page"
	ParamSize   = "size"
	ParamSearch = "q"
	ParamSort   = "sort"
	ParamDir    = "dir"
	// FilterPrefix prefixes entity filters, e.g. f.slotStatus=AVAILABLE.
	FilterPrefix = "f."
)

// DefaultPageSize is used when no or an unsupported size is requested.
const DefaultPageSize = 10

// PageSizes are the only page sizes a table offers.
var PageSizes = []int{10, 20, 30, 50, 100}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// State is the interaction state a table owns: search text and sort.
type State struct {
	Search     string
	SortColumn string
	SortDir    domain.SortDir
}

// ToggleSort returns the state after the header of col was clicked. The same
// column flips asc and desc; any other column starts at asc.
func (s State) ToggleSort(col string) State {
	if col == "" {
		return s
	}
	if s.SortColumn == col && s.SortDir != domain.SortDesc {
		s.SortDir = domain.SortDesc
		return s
	}
	s.SortColumn = col
	s.SortDir = domain.SortAsc
	return s
}

// Descriptor is the full parameter set for one table read. The zero value
// is the first page of DefaultPageSize with nothing else set.
//
// Descriptors are values; every With method returns a modified copy.
type Descriptor struct {
	PageIndex int
	PageSize  int
	State
	Filters map[string]string
}

// NewDescriptor returns the first page with the default size.
func NewDescriptor() Descriptor {
	return Descriptor{PageSize: DefaultPageSize}
}

// ParseDescriptor reads a Descriptor from query values. Only the named
// filters are accepted; unknown sizes fall back to DefaultPageSize and
// malformed page numbers to the first page.
func ParseDescriptor(q url.Values, filters ...string) Descriptor {
	d := NewDescriptor()

	if p, err := strconv.Atoi(q.Get(ParamPage)); err == nil && p > 1 {
		d.PageIndex = p - 1
	}
	if n, err := strconv.Atoi(q.Get(ParamSize)); err == nil && ValidPageSize(n) {
		d.PageSize = n
	}
	d.Search = strings.TrimSpace(q.Get(ParamSearch))

	if col := strings.TrimSpace(q.Get(ParamSort)); col != "" {
		d.SortColumn = col
		d.SortDir = domain.SortAsc
		if strings.EqualFold(q.Get(ParamDir), string(domain.SortDesc)) {
			d.SortDir = domain.SortDesc
		}
	}

	for _, name := range filters {
		if v := strings.TrimSpace(q.Get(FilterPrefix + name)); v != "" {
			if d.Filters == nil {
				d.Filters = make(map[string]string, len(filters))
			}
			d.Filters[name] = v
		}
	}
	return d
}

// WithPage moves to the zero-based page index, clamped at 0.
func (d Descriptor) WithPage(index int) Descriptor {
	d.PageIndex = max(index, 0)
	return d
}

// WithPageSize changes the page size and returns to the first page.
func (d Descriptor) WithPageSize(n int) Descriptor {
	if !ValidPageSize(n) {
		n = DefaultPageSize
	}
	d.PageSize = n
	d.PageIndex = 0
	return d
}

// WithSearch changes the search text and returns to the first page.
func (d Descriptor) WithSearch(s string) Descriptor {
	d.Search = strings.TrimSpace(s)
	d.PageIndex = 0
	return d
}

// WithFilter sets (or with an empty value clears) a filter and returns to
// the first page.
func (d Descriptor) WithFilter(name, value string) Descriptor {
	filters := make(map[string]string, len(d.Filters)+1)
	for k, v := range d.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, name)
	} else {
		filters[name] = value
	}
	d.Filters = filters
	d.PageIndex = 0
	return d
}

// ToggleSort applies State.ToggleSort. The page index is kept.
func (d Descriptor) ToggleSort(col string) Descriptor {
	d.State = d.State.ToggleSort(col)
	return d
}

// Filter returns the value of the named filter.
func (d Descriptor) Filter(name string) string {
	return d.Filters[name]
}

// Request converts d into the wire-level request the query layer expects.
func (d Descriptor) Request() domain.PageRequest {
	size := d.PageSize
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	req := domain.PageRequest{
		PageIndex:  max(d.PageIndex, 0),
		PageSize:   size,
		Search:     d.Search,
		SortColumn: d.SortColumn,
		SortDir:    d.SortDir,
	}
	if len(d.Filters) > 0 {
		req.Filters = make(map[string]string, len(d.Filters))
		for k, v := range d.Filters {
			req.Filters[k] = v
		}
	}
	return req
}

// Values encodes d as query parameters. Defaults are omitted so that links
// stay short.
func (d Descriptor) Values() url.Values {
	q := url.Values{}
	if d.PageIndex > 0 {
		q.Set(ParamPage, strconv.Itoa(d.PageIndex+1))
	}
	if d.PageSize != DefaultPageSize && ValidPageSize(d.PageSize) {
		q.Set(ParamSize, strconv.Itoa(d.PageSize))
	}
	if d.Search != "" {
		q.Set(ParamSearch, d.Search)
	}
	if d.SortColumn != "" {
		q.Set(ParamSort, d.SortColumn)
		q.Set(ParamDir, string(d.SortDir))
	}
	for name, v := range d.Filters {
		if v != "" {
			q.Set(FilterPrefix+name, v)
		}
	}
	return q
}

// URL returns path with d encoded as its query string.
func (d Descriptor) URL(path string) string {
	enc := d.Values().Encode()
	if enc == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + enc
}
