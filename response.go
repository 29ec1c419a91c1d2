package tables

import (
	"fmt"
	"runtime"
	"sync"
)

// AsValues returns the table as rows of export values, starting with a row
// of headers. Every column takes part, hidden ones included, except those
// excluded from export and those named in exclude. Pinned rows are included
// in their positions.
func (t *Table) AsValues(exclude ...string) ([][]any, error) {
	var columns []*BoundColumn
	for _, col := range t.columns.All() {
		if col.Column().ExcludedFromExport() || containsString(exclude, col.Name()) {
			continue
		}
		columns = append(columns, col)
	}

	rows, err := t.Rows().All()
	if err != nil {
		return nil, err
	}

	values := make([][]any, 0, len(rows)+1)
	headers := make([]any, len(columns))
	for i, col := range columns {
		headers[i] = col.VerboseName()
	}
	values = append(values, headers)
	for _, row := range rows {
		line := make([]any, len(columns))
		for i, col := range columns {
			line[i] = row.value(col)
		}
		values = append(values, line)
	}
	return values, nil
}

// Make renders the selected page, or every row of an unpaginated table, into
// a payload for a client side table.
//
// The payload holds:
//  1. "headers": the headers of the visible columns.
//  2. "data": one map per row from column name to display value, with the
//     row class under "DT_RowClass" and the row id attribute, when set,
//     under "DT_RowId".
//  3. "recordsTotal": the number of primary rows.
//  4. "page" and "numPages": the page position, 1 of 1 when unpaginated.
//
// Rows are rendered in parallel; render functions must not mutate shared
// state.
func (t *Table) Make() (map[string]any, error) {
	rows, err := t.PaginatedRows().All()
	if err != nil {
		return nil, err
	}
	total, err := t.Rows().Len()
	if err != nil {
		return nil, err
	}

	columns := t.columns.Visible()
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.VerboseName()
	}

	var (
		wg      sync.WaitGroup
		semChan = make(chan struct{}, runtime.NumCPU()*2)
		data    = make([]map[string]any, len(rows))
	)
	wg.Add(len(rows))
	for i, row := range rows {
		go func() {
			defer wg.Done()
			semChan <- struct{}{}
			defer func() { <-semChan }()
			data[i] = t.renderRow(row, columns)
		}()
	}
	wg.Wait()

	page, numPages := 1, 1
	if t.page != nil {
		page, numPages = t.page.Number(), t.page.NumPages()
	}
	response := map[string]any{
		responseHeaders:  headers,
		responseData:     data,
		responseTotal:    total,
		responsePage:     page,
		responseNumPages: numPages,
	}
	if len(data) == 0 && t.emptyText != "" {
		response[responseEmptyText] = t.emptyText
	}
	return response, nil
}

func (t *Table) renderRow(row *BoundRow, columns []*BoundColumn) map[string]any {
	rendered := make(map[string]any, len(columns)+2)
	for _, col := range columns {
		value := row.render(col)
		if s, ok := value.(fmt.Stringer); ok {
			value = s.String()
		}
		rendered[col.Name()] = value
	}

	attrs := row.Attrs()
	if class, ok := attrs["class"]; ok {
		rendered[rowClassKey] = class
	}
	if id, ok := attrs["id"]; ok {
		rendered[rowIDKey] = id
	}
	return rendered
}
