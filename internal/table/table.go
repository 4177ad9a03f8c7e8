package table

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Column maps a row to a cell.
//
// Value gives the plain-text form and is always used by the terminal
// renderer. HTML, when set, replaces Value in the web view and must return
// markup that is already safe.
type Column[T any] struct {
	Key      string
	Header   string
	Sortable bool
	Value    func(T) string
	HTML     func(T) template.HTML
}

// Filter is a select-style filter offered above the table.
type Filter struct {
	Name    string
	Label   string
	Options []Option
}

// Option is one choice of a Filter. The empty value means "any".
type Option struct {
	Value string
	Label string
}

// Table is one page of rows plus everything needed to render it. The caller
// fills it; Table never fetches.
type Table[T any] struct {
	// ID is the DOM id of the table container and its Tracker key.
	ID string
	// Path is the endpoint that renders the table body for a Descriptor.
	Path              string
	Columns           []Column[T]
	Filters           []Filter
	SearchPlaceholder string

	Descriptor Descriptor
	Rows       []T
	TotalCount int
	Loading    bool
	Err        error
	// ErrMessage overrides the message shown for Err.
	ErrMessage string
}

// FromResult fills rows, count and error state from a cached read.
// A disabled read renders as loading since its inputs are not known yet.
func (t *Table[T]) FromResult(r domain.Result[domain.Envelope[T]]) {
	switch r.State {
	case domain.ResultOk:
		t.Rows = r.Value.Items
		t.TotalCount = r.Value.TotalCount
		t.Loading = false
		t.Err = nil
	case domain.ResultErr:
		t.Rows = nil
		t.TotalCount = 0
		t.Loading = false
		t.Err = r.Err
	default:
		t.Loading = true
	}
}

// BodyState selects what the table body shows.
type BodyState int

const (
	BodyRows BodyState = iota
	BodyLoading
	BodyEmpty
	BodyError
)

func (s BodyState) String() string {
	switch s {
	case BodyLoading:
		return "loading"
	case BodyEmpty:
		return "empty"
	case BodyError:
		return "error"
	default:
		return "rows"
	}
}

// Header is a rendered column header.
type Header struct {
	Key      string
	Label    string
	Sortable bool
	// Active is set on the column the table is sorted by.
	Active bool
	Dir    domain.SortDir
	// URL re-reads the table with the sort toggled on this column.
	URL string
}

// Cell is one rendered cell. HTML is empty when the column has no HTML func.
type Cell struct {
	Text string
	HTML template.HTML
}

// Link is a pager control.
type Link struct {
	URL      string
	Disabled bool
}

// Pager holds the four navigation controls.
type Pager struct {
	First, Prev, Next, Last Link
}

// SizeOption is one entry of the page-size selector.
type SizeOption struct {
	Size     int
	Selected bool
}

// FilterView is a Filter with its current selection.
type FilterView struct {
	Name    string
	Param   string
	Label   string
	Options []OptionView
}

// OptionView is an Option with its selection state.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// View is the fully computed, template-ready form of a Table.
type View struct {
	ID                string
	Path              string
	Self              string
	Headers           []Header
	Rows              [][]Cell
	State             BodyState
	Error             string
	Search            string
	SearchPlaceholder string
	SearchParam       string
	Filters           []FilterView
	PageSizes         []SizeOption
	Pager             Pager

	PageIndex  int
	PageSize   int
	TotalCount int
	TotalPages int
	RangeStart int
	RangeEnd   int

	// Hidden carries the descriptor fields a form submit must preserve.
	Hidden map[string]string
}

// RefreshEvent is the client event that makes a table re-read itself.
func (v View) RefreshEvent() string {
	return RefreshEvent(v.ID)
}

// RefreshEvent names the client event that re-reads the table with id.
func RefreshEvent(id string) string {
	return "refresh-" + id
}

// Colspan is the number of columns, for full-width rows.
func (v View) Colspan() int {
	return max(len(v.Headers), 1)
}

// RangeText reads e.g. "Showing 11 to 20 of 45".
func (v View) RangeText() string {
	return fmt.Sprintf("Showing %d to %d of %d", v.RangeStart, v.RangeEnd, v.TotalCount)
}

// PageText reads e.g. "Page 2 of 5". An empty table is "Page 1 of 1".
func (v View) PageText() string {
	return fmt.Sprintf("Page %d of %d", v.PageIndex+1, max(v.TotalPages, 1))
}

// URL returns the body URL for d.
func (v View) URL(d Descriptor) string {
	return d.URL(v.Path)
}

const genericLoadError = "Could not load data. Please try again."

// View computes the rendered form of t.
func (t *Table[T]) View() View {
	d := t.Descriptor
	if !ValidPageSize(d.PageSize) {
		d.PageSize = DefaultPageSize
	}
	d.PageIndex = max(d.PageIndex, 0)

	total := max(t.TotalCount, 0)
	totalPages := domain.TotalPages(total, d.PageSize)

	v := View{
		ID:                t.ID,
		Path:              t.Path,
		Self:              d.URL(t.Path),
		Search:            d.Search,
		SearchPlaceholder: t.SearchPlaceholder,
		SearchParam:       ParamSearch,
		PageIndex:         d.PageIndex,
		PageSize:          d.PageSize,
		TotalCount:        total,
		TotalPages:        totalPages,
		Hidden:            hiddenFields(d),
	}

	for _, col := range t.Columns {
		h := Header{Key: col.Key, Label: col.Header, Sortable: col.Sortable && col.Key != ""}
		if h.Sortable {
			h.Active = d.SortColumn == col.Key
			if h.Active {
				h.Dir = d.SortDir
			}
			h.URL = d.ToggleSort(col.Key).URL(t.Path)
		}
		v.Headers = append(v.Headers, h)
	}

	switch {
	case t.Loading:
		v.State = BodyLoading
	case t.Err != nil:
		v.State = BodyError
		v.Error = t.ErrMessage
		if v.Error == "" {
			v.Error = domain.UserMessage(t.Err, genericLoadError)
		}
	case len(t.Rows) == 0:
		v.State = BodyEmpty
	default:
		v.State = BodyRows
		v.Rows = make([][]Cell, 0, len(t.Rows))
		for _, row := range t.Rows {
			cells := make([]Cell, len(t.Columns))
			for i, col := range t.Columns {
				if col.Value != nil {
					cells[i].Text = col.Value(row)
				}
				if col.HTML != nil {
					cells[i].HTML = col.HTML(row)
				}
			}
			v.Rows = append(v.Rows, cells)
		}
	}

	rows := len(v.Rows)
	if rows > 0 {
		v.RangeStart = d.PageIndex*d.PageSize + 1
	}
	v.RangeEnd = min((d.PageIndex+1)*d.PageSize, total)

	last := max(totalPages-1, 0)
	atStart := d.PageIndex <= 0
	atEnd := d.PageIndex >= totalPages-1
	v.Pager = Pager{
		First: Link{URL: d.WithPage(0).URL(t.Path), Disabled: atStart},
		Prev:  Link{URL: d.WithPage(d.PageIndex - 1).URL(t.Path), Disabled: atStart},
		Next:  Link{URL: d.WithPage(d.PageIndex + 1).URL(t.Path), Disabled: atEnd},
		Last:  Link{URL: d.WithPage(last).URL(t.Path), Disabled: atEnd},
	}

	for _, n := range PageSizes {
		v.PageSizes = append(v.PageSizes, SizeOption{Size: n, Selected: n == d.PageSize})
	}

	for _, f := range t.Filters {
		fv := FilterView{Name: f.Name, Param: FilterPrefix + f.Name, Label: f.Label}
		current := d.Filter(f.Name)
		for _, o := range f.Options {
			fv.Options = append(fv.Options, OptionView{Value: o.Value, Label: o.Label, Selected: o.Value == current})
		}
		v.Filters = append(v.Filters, fv)
	}
	return v
}

// hiddenFields lists the sort parameters; page, size, search and filters
// are form controls of their own and reset the page when they change.
func hiddenFields(d Descriptor) map[string]string {
	h := map[string]string{}
	if d.SortColumn != "" {
		h[ParamSort] = d.SortColumn
		h[ParamDir] = string(d.SortDir)
	}
	return h
}

// EnumOptions builds filter options for a string enum, led by an "All" entry.
func EnumOptions[E ~string](values []E) []Option {
	opts := make([]Option, 0, len(values)+1)
	opts = append(opts, Option{Value: "", Label: "All"})
	for _, v := range values {
		opts = append(opts, Option{Value: string(v), Label: string(v)})
	}
	return opts
}

// YearOptions builds filter options for the years from..to, newest first.
func YearOptions(from, to int) []Option {
	opts := []Option{{Value: "", Label: "All"}}
	for y := to; y >= from; y-- {
		s := strconv.Itoa(y)
		opts = append(opts, Option{Value: s, Label: s})
	}
	return opts
}
