package tables

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Request holds the table parameters of an HTTP request.
//
// Fields:
//   - OrderBy: The ordering terms, from every value of the ordering field.
//   - Page: The raw page number; empty when absent.
//   - PerPage: The requested page size; 0 when absent.
type Request struct {
	OrderBy []string
	Page    string
	PerPage int
}

// ParseRequest parses the table parameters of r, honouring the table's field
// prefix. An error is returned for a page size that is not a positive
// integer.
func ParseRequest(r *http.Request, t *Table) (*Request, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	req := &Request{
		Page: strings.TrimSpace(r.Form.Get(t.PrefixedPageField())),
	}
	for _, v := range r.Form[t.PrefixedOrderByField()] {
		if v = strings.TrimSpace(v); v != "" {
			req.OrderBy = append(req.OrderBy, v)
		}
	}

	if v := strings.TrimSpace(r.Form.Get(t.PrefixedPerPageField())); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 {
			return nil, fmt.Errorf("invalid value for %s: %q", t.PrefixedPerPageField(), v)
		}
		req.PerPage = perPage
	}

	return req, nil
}

// RequestConfig applies the parameters of HTTP requests to tables.
//
// Fields:
//   - Paginate: Whether Configure paginates the table.
//   - PerPage: The page size used when the request does not ask for one; the
//     table configuration applies when 0.
//   - Silent: Replace invalid page numbers and sizes instead of failing.
type RequestConfig struct {
	Paginate bool
	PerPage  int
	Silent   bool
}

// NewRequestConfig returns a RequestConfig that paginates silently.
func NewRequestConfig() RequestConfig {
	return RequestConfig{Paginate: true, Silent: true}
}

// Configure orders and paginates t according to r.
func (rc RequestConfig) Configure(r *http.Request, t *Table) error {
	req, err := ParseRequest(r, t)
	if err != nil {
		if !rc.Silent {
			return err
		}
		t.logger.Debug().Err(err).Str("table", t.Name()).Msg("ignoring invalid request parameters")
		req = &Request{
			OrderBy: r.Form[t.PrefixedOrderByField()],
			Page:    strings.TrimSpace(r.Form.Get(t.PrefixedPageField())),
		}
	}

	if len(req.OrderBy) > 0 {
		t.SetOrderBy(req.OrderBy)
	}
	if !rc.Paginate {
		return nil
	}

	page := PageRequest{PerPage: req.PerPage, Silent: rc.Silent}
	if page.PerPage == 0 {
		page.PerPage = rc.PerPage
	}
	if req.Page != "" {
		page.Page = req.Page
	}
	return t.Paginate(page)
}
