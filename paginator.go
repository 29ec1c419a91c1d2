package tables

import (
	"math"
	"strconv"
	"strings"
)

// Paginator splits the primary rows of a table into pages.
//
// Fields:
//   - rows: The rows being paginated.
//   - perPage: The number of primary rows on a full page.
//   - orphans: The number of trailing rows merged into the previous page
//     instead of getting a page of their own.
//   - allowEmptyFirstPage: Whether page 1 is valid when there are no rows.
type Paginator struct {
	rows                *BoundRows
	perPage             int
	orphans             int
	allowEmptyFirstPage bool
	count               *int
}

// NewPaginator returns a paginator over rows. A perPage below 1 uses the
// default page size.
func NewPaginator(rows *BoundRows, perPage, orphans int, allowEmptyFirstPage bool) *Paginator {
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return &Paginator{
		rows:                rows,
		perPage:             perPage,
		orphans:             max(orphans, 0),
		allowEmptyFirstPage: allowEmptyFirstPage,
	}
}

// PerPage returns the page size.
func (p *Paginator) PerPage() int {
	return p.perPage
}

// Count returns the number of primary rows. Pinned rows are not counted.
func (p *Paginator) Count() (int, error) {
	if p.count != nil {
		return *p.count, nil
	}
	n, err := p.rows.Len()
	if err != nil {
		return 0, err
	}
	p.count = &n
	return n, nil
}

// NumPages returns the number of pages.
func (p *Paginator) NumPages() (int, error) {
	count, err := p.Count()
	if err != nil {
		return 0, err
	}
	if count == 0 && !p.allowEmptyFirstPage {
		return 0, nil
	}
	hits := max(1, count-p.orphans)
	return int(math.Ceil(float64(hits) / float64(p.perPage))), nil
}

// PageRange returns the valid page numbers, starting at 1.
func (p *Paginator) PageRange() ([]int, error) {
	n, err := p.NumPages()
	if err != nil {
		return nil, err
	}
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages, nil
}

// ValidateNumber converts number to a page number and checks its range. The
// returned error is a *PageError matching ErrPageNotAnInteger or
// ErrEmptyPage, unless counting the rows failed.
func (p *Paginator) ValidateNumber(number any) (int, error) {
	n, ok := pageNumber(number)
	if !ok {
		return 0, &PageError{Page: number, Reason: "that page number is not an integer", Err: ErrPageNotAnInteger}
	}
	if n < 1 {
		return 0, &PageError{Page: number, Reason: "that page number is less than 1", Err: ErrEmptyPage}
	}
	pages, err := p.NumPages()
	if err != nil {
		return 0, err
	}
	if n > pages && !(n == 1 && p.allowEmptyFirstPage) {
		return 0, &PageError{Page: number, Reason: "that page contains no results", Err: ErrEmptyPage}
	}
	return n, nil
}

// Page returns the page with the given number. The last page absorbs up to
// orphans extra rows.
func (p *Paginator) Page(number any) (*Page, error) {
	n, err := p.ValidateNumber(number)
	if err != nil {
		return nil, err
	}
	count, err := p.Count()
	if err != nil {
		return nil, err
	}
	numPages, err := p.NumPages()
	if err != nil {
		return nil, err
	}

	bottom := (n - 1) * p.perPage
	top := bottom + p.perPage
	if top+p.orphans >= count {
		top = count
	}
	return &Page{
		number:    n,
		numPages:  numPages,
		count:     count,
		perPage:   p.perPage,
		paginator: p,
		rows:      p.rows.Slice(bottom, max(top-bottom, 0)),
	}, nil
}

func pageNumber(number any) (int, bool) {
	switch v := number.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Page is a single page of a Paginator.
type Page struct {
	number    int
	numPages  int
	count     int
	perPage   int
	paginator *Paginator
	rows      *BoundRows
}

// Number returns the page number, starting at 1.
func (p *Page) Number() int {
	return p.number
}

// Paginator returns the paginator the page belongs to.
func (p *Page) Paginator() *Paginator {
	return p.paginator
}

// Rows returns the rows of the page, pinned rows included.
func (p *Page) Rows() *BoundRows {
	return p.rows
}

// NumPages returns the number of pages at the time the page was taken.
func (p *Page) NumPages() int {
	return p.numPages
}

// HasNext reports whether a page follows this one.
func (p *Page) HasNext() bool {
	return p.number < p.numPages
}

// HasPrevious reports whether a page precedes this one.
func (p *Page) HasPrevious() bool {
	return p.number > 1
}

// HasOtherPages reports whether the paginator has more than this page.
func (p *Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

// NextPageNumber returns the number of the following page; ok is false on
// the last page.
func (p *Page) NextPageNumber() (int, bool) {
	if !p.HasNext() {
		return 0, false
	}
	return p.number + 1, true
}

// PreviousPageNumber returns the number of the preceding page; ok is false
// on the first page.
func (p *Page) PreviousPageNumber() (int, bool) {
	if !p.HasPrevious() {
		return 0, false
	}
	return p.number - 1, true
}

// StartIndex returns the 1-based index of the first row on the page, or 0
// when there are no rows.
func (p *Page) StartIndex() int {
	if p.count == 0 {
		return 0
	}
	return p.perPage*(p.number-1) + 1
}

// EndIndex returns the 1-based index of the last row on the page.
func (p *Page) EndIndex() int {
	if p.number == p.numPages {
		return p.count
	}
	return p.number * p.perPage
}
