package tables

import (
	"sort"
)

// TableData is the data behind a table: either a QuerySource whose ordering,
// counting and slicing is delegated, or an in-memory list of records sorted
// in place.
type TableData struct {
	table    *Table
	source   QuerySource
	records  []any
	ordering OrderByTuple
	count    *int
}

// newTableData wraps data for t. A nil data falls back to the default source
// of the table's model.
func newTableData(t *Table, data any) (*TableData, error) {
	if data == nil {
		if provider, ok := t.Model().(SourceProvider); ok {
			return &TableData{table: t, source: provider.DefaultSource()}, nil
		}
		return nil, configErrorf(t.Name(), nil, "no data given and the table has no model to query")
	}
	if source, ok := data.(QuerySource); ok {
		return &TableData{table: t, source: source}, nil
	}
	records, ok := toRecords(data)
	if !ok {
		return nil, configErrorf(t.Name(), nil, "unsupported data of type %T", data)
	}
	return &TableData{table: t, records: records}, nil
}

// IsQuery reports whether the data is backed by a QuerySource.
func (d *TableData) IsQuery() bool {
	return d.source != nil
}

// Source returns the current, possibly reordered, query source; nil for
// in-memory data.
func (d *TableData) Source() QuerySource {
	return d.source
}

// Ordering returns the aliases the data was last ordered by.
func (d *TableData) Ordering() OrderByTuple {
	return d.ordering
}

// Len returns the number of records. The count of a query source is cached
// after the first call.
func (d *TableData) Len() (int, error) {
	if d.source == nil {
		return len(d.records), nil
	}
	if d.count != nil {
		return *d.count, nil
	}
	n, err := d.source.Count()
	if err != nil {
		return 0, err
	}
	d.count = &n
	return n, nil
}

// Slice returns at most limit records starting at offset, in the current
// order. A negative limit returns every record after offset.
func (d *TableData) Slice(offset, limit int) ([]any, error) {
	if offset < 0 {
		offset = 0
	}
	if d.source != nil {
		return d.source.Slice(offset, limit)
	}
	if offset >= len(d.records) {
		return []any{}, nil
	}
	end := len(d.records)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]any(nil), d.records[offset:end]...), nil
}

// Records returns every record in the current order.
func (d *TableData) Records() ([]any, error) {
	return d.Slice(0, -1)
}

// orderBy orders the data by aliases, which must all name orderable columns
// of the table. Each alias expands into the accessors of its column.
func (d *TableData) orderBy(aliases OrderByTuple) {
	d.ordering = aliases
	if d.source != nil {
		d.orderSource(aliases)
		return
	}

	var keys OrderByTuple
	for _, alias := range aliases {
		if col, ok := d.table.columns.Get(alias.Bare()); ok {
			keys = append(keys, col.expandOrderBy(alias)...)
		}
	}
	d.sortRecords(keys)
}

// orderSource delegates ordering to the query source. Order hooks run first
// for every alias; when any of them reports that it ordered the source
// itself, the accessor based ordering is skipped altogether.
func (d *TableData) orderSource(aliases OrderByTuple) {
	source := d.source
	modified := false
	var fields []string
	for _, alias := range aliases {
		col, ok := d.table.columns.Get(alias.Bare())
		if !ok {
			continue
		}
		fields = append(fields, col.expandOrderBy(alias).Strings()...)
		if hook := d.table.hooks.order[col.Name()]; hook != nil {
			if next, ok := hook(source, alias.IsDescending()); ok {
				source = next
				modified = true
			}
		}
	}

	switch {
	case modified:
		d.source = source
	case len(fields) > 0:
		d.source = d.source.OrderBy(fields...)
	}
	d.table.logger.Debug().
		Str("table", d.table.Name()).
		Strs("order_by", aliases.Strings()).
		Bool("hooked", modified).
		Msg("ordered query source")
}

// sortRecords sorts the in-memory records by keys with a stable sort, so
// equal records keep their relative order. Every key is resolved once per
// record; a descending key compares its pair swapped.
func (d *TableData) sortRecords(keys OrderByTuple) {
	if len(keys) == 0 || len(d.records) < 2 {
		return
	}

	type sortable struct {
		record any
		keys   []any
	}
	items := make([]sortable, len(d.records))
	for i, record := range d.records {
		resolved := make([]any, len(keys))
		for k, key := range keys {
			resolved[k] = key.Accessor().Resolve(record)
		}
		items[i] = sortable{record: record, keys: resolved}
	}

	sort.SliceStable(items, func(i, j int) bool {
		for k, key := range keys {
			a, b := items[i].keys[k], items[j].keys[k]
			if key.IsDescending() {
				a, b = b, a
			}
			if c := compareSortKeys(a, b); c != 0 {
				return c < 0
			}
		}
		return false
	})

	for i, item := range items {
		d.records[i] = item.record
	}
}
