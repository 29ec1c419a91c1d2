package tables

import (
	"fmt"
	"strings"
)

// Cell carries everything a render, value or attribute function may need
// about the cell being computed.
type Cell struct {
	Value  any
	Record any
	Index  int
	Table  *Table
	Column *BoundColumn
	Row    *BoundRow

	fallback func(Cell) any
}

// Fallback runs the next renderer in the chain for the same cell: the
// column's own render function, then its kind. At the end of the chain the
// value is returned unchanged.
func (c Cell) Fallback() any {
	if c.fallback == nil {
		return c.Value
	}
	next := c.fallback
	c.fallback = nil
	return next(c)
}

type useDefault struct{}

// UseDefault is returned by a compute hook to let the cell be computed from
// the column's accessor as if the hook did not exist.
var UseDefault any = useDefault{}

// PinnedPosition tells where a pinned row is shown.
type PinnedPosition int

const (
	NotPinned PinnedPosition = iota
	PinnedTop
	PinnedBottom
)

func (p PinnedPosition) String() string {
	switch p {
	case PinnedTop:
		return "top"
	case PinnedBottom:
		return "bottom"
	}
	return ""
}

// BoundRow is a single record of a table. Cells are computed on demand.
type BoundRow struct {
	table    *Table
	record   any
	index    int
	position PinnedPosition
}

// Record returns the underlying record.
func (r *BoundRow) Record() any {
	return r.record
}

// Index returns the position of the record in the table's ordered data, or
// -1 for pinned rows.
func (r *BoundRow) Index() int {
	return r.index
}

// Table returns the table the row belongs to.
func (r *BoundRow) Table() *Table {
	return r.table
}

// Pinned returns where the row is pinned, or NotPinned.
func (r *BoundRow) Pinned() PinnedPosition {
	return r.position
}

// IsPinned reports whether the row is a pinned row.
func (r *BoundRow) IsPinned() bool {
	return r.position != NotPinned
}

// Cell returns the display value of the column called name.
func (r *BoundRow) Cell(name string) (any, error) {
	col, ok := r.table.columns.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return r.render(col), nil
}

// CellValue returns the export value of the column called name.
func (r *BoundRow) CellValue(name string) (any, error) {
	col, ok := r.table.columns.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return r.value(col), nil
}

// RowItem pairs a visible column with its display value.
type RowItem struct {
	Column *BoundColumn
	Value  any
}

// Items returns the display values of the visible columns, in order.
func (r *BoundRow) Items() []RowItem {
	columns := r.table.columns.Visible()
	items := make([]RowItem, len(columns))
	for i, col := range columns {
		items[i] = RowItem{Column: col, Value: r.render(col)}
	}
	return items
}

// Values returns the display values of the visible columns, in order.
func (r *BoundRow) Values() []any {
	items := r.Items()
	values := make([]any, len(items))
	for i, item := range items {
		values[i] = item.Value
	}
	return values
}

// Attrs returns the attributes of the row element. Primary rows get the
// even/odd class of their index, pinned rows their pinned attrs and the
// pinned class.
func (r *BoundRow) Attrs() Attrs {
	cell := Cell{Record: r.record, Index: r.index, Table: r.table, Row: r}
	if r.IsPinned() {
		attrs := r.table.pinnedRowAttrs.Computed(cell)
		attrs.AddClass(classPinned)
		return attrs
	}
	attrs := r.table.rowAttrs.Computed(cell)
	if r.index%2 == 0 {
		attrs.AddClass(classEven)
	} else {
		attrs.AddClass(classOdd)
	}
	return attrs
}

// cell prepares the computation of col: it reports the computed hook value
// when a compute hook answered, and otherwise the resolved cell along with
// whether the default applies.
func (r *BoundRow) cell(col *BoundColumn) (cell Cell, computed any, useDef bool) {
	if hook := r.table.hooks.compute[col.Name()]; hook != nil {
		if v := hook(r); v != UseDefault {
			return Cell{}, v, false
		}
	}

	cell = Cell{
		Value:  col.Accessor().Resolve(r.record),
		Record: r.record,
		Index:  r.index,
		Table:  r.table,
		Column: col,
		Row:    r,
	}
	if IsNothing(cell.Value) {
		if k, ok := col.Column().Kind().(valuelessKind); ok && k.rendersWithoutValue() {
			cell.Value = nil
			return cell, UseDefault, false
		}
		return cell, UseDefault, true
	}
	return cell, UseDefault, col.isEmpty(cell.Value)
}

// render computes the display value of col for the row. Pinned rows show
// the resolved value or the default and skip every render function.
func (r *BoundRow) render(col *BoundColumn) any {
	if r.IsPinned() {
		return r.pinnedValue(col)
	}
	cell, computed, useDef := r.cell(col)
	switch {
	case computed != UseDefault:
		return computed
	case useDef:
		return col.Default(r.record)
	}
	if hook := r.table.hooks.render[col.Name()]; hook != nil {
		cell.fallback = col.Column().renderCell
		return hook(cell)
	}
	return col.Column().renderCell(cell)
}

// value computes the export value of col for the row.
func (r *BoundRow) value(col *BoundColumn) any {
	if r.IsPinned() {
		return r.pinnedValue(col)
	}
	cell, computed, useDef := r.cell(col)
	switch {
	case computed != UseDefault:
		return computed
	case useDef:
		return col.Default(r.record)
	}
	if hook := r.table.hooks.value[col.Name()]; hook != nil {
		cell.fallback = col.Column().valueCell
		return hook(cell)
	}
	return col.Column().valueCell(cell)
}

func (r *BoundRow) pinnedValue(col *BoundColumn) any {
	value := col.Accessor().Resolve(r.record)
	if IsNothing(value) || col.isEmpty(value) {
		return col.Default(r.record)
	}
	return value
}

func (r *BoundRow) String() string {
	values := r.Values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "<BoundRow " + strings.Join(parts, ", ") + ">"
}

// BoundRows is a window over the rows of a table. Pinned rows surround the
// primary rows of every window but are not counted by Len.
type BoundRows struct {
	table  *Table
	offset int
	limit  int
}

// Len returns the number of primary rows in the window.
func (r *BoundRows) Len() (int, error) {
	n, err := r.table.data.Len()
	if err != nil {
		return 0, err
	}
	n -= r.offset
	if n < 0 {
		n = 0
	}
	if r.limit >= 0 && n > r.limit {
		n = r.limit
	}
	return n, nil
}

// Slice returns a narrower window, relative to this one. A negative limit
// extends to the end of the window. The pinned rows are kept.
func (r *BoundRows) Slice(offset, limit int) *BoundRows {
	if offset < 0 {
		offset = 0
	}
	if r.limit >= 0 {
		remaining := max(r.limit-offset, 0)
		if limit < 0 || limit > remaining {
			limit = remaining
		}
	}
	return &BoundRows{table: r.table, offset: r.offset + offset, limit: limit}
}

// Records returns the records of the primary rows in the window.
func (r *BoundRows) Records() ([]any, error) {
	return r.table.data.Slice(r.offset, r.limit)
}

// Primary returns the rows of the window without the pinned rows.
func (r *BoundRows) Primary() ([]*BoundRow, error) {
	records, err := r.Records()
	if err != nil {
		return nil, err
	}
	rows := make([]*BoundRow, len(records))
	for i, record := range records {
		rows[i] = &BoundRow{table: r.table, record: record, index: r.offset + i}
	}
	return rows, nil
}

// All returns the top pinned rows, the primary rows of the window and the
// bottom pinned rows, in that order.
func (r *BoundRows) All() ([]*BoundRow, error) {
	primary, err := r.Primary()
	if err != nil {
		return nil, err
	}
	top, bottom := r.table.pinnedRows()
	rows := make([]*BoundRow, 0, len(top)+len(primary)+len(bottom))
	rows = append(rows, top...)
	rows = append(rows, primary...)
	rows = append(rows, bottom...)
	return rows, nil
}

func newPinnedRows(t *Table, records []any, position PinnedPosition) []*BoundRow {
	rows := make([]*BoundRow, len(records))
	for i, record := range records {
		rows[i] = &BoundRow{table: t, record: record, index: -1, position: position}
	}
	return rows
}
