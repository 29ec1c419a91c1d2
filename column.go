package tables

import "slices"

// RenderFunc computes the display value of a cell. It is only called for
// values that are not empty; Cell.Fallback delegates to the next renderer in
// the chain.
type RenderFunc func(cell Cell) any

// ValueFunc computes the export value of a cell, the plain counterpart of
// RenderFunc used when a table is serialized instead of displayed.
type ValueFunc func(cell Cell) any

// DefaultFunc computes a column default from the record being rendered.
type DefaultFunc func(record any) any

// FooterFunc computes a column footer for a table.
type FooterFunc func(table *Table, column *BoundColumn) any

// Column declares how a single field is extracted, defaulted and rendered.
//
// A Column is an immutable value shared by every table created from the same
// Definition: the With* methods return modified copies and per-table state
// (visibility toggles, ordering) lives on BoundColumn.
//
// Fields:
//   - name: The column name, also its ordering alias.
//   - accessor: The path used to read the value; defaults to the name.
//   - def: The value, or DefaultFunc, used for empty cells.
//   - verboseName: The explicit header text.
//   - visible: Whether the column is shown.
//   - orderable: Whether the column accepts ordering; nil defers to the table.
//   - emptyValues: The values treated as "no data"; nil defers to the kind.
//   - orderBy: The accessors used when ordering by this column.
//   - attrs: Attributes for the generated th/td/tf elements.
//   - kind: The semantic type controlling default rendering.
type Column struct {
	name              string
	accessor          string
	def               any
	verboseName       string
	visible           bool
	orderable         *bool
	emptyValues       []any
	emptySet          bool
	orderBy           []string
	attrs             Attrs
	footer            any
	kind              Kind
	render            RenderFunc
	value             ValueFunc
	excludeFromExport bool
}

// NewColumn returns a visible text column reading the field called name.
func NewColumn(name string) Column {
	return Column{name: name, visible: true}
}

// Name returns the column name.
func (c Column) Name() string {
	return c.name
}

// Accessor returns the accessor used to read the cell value.
func (c Column) Accessor() Accessor {
	if c.accessor == "" {
		return NewAccessor(c.name)
	}
	return NewAccessor(c.accessor)
}

// Default returns the declared default, which may be a DefaultFunc, or nil.
func (c Column) Default() any {
	return c.def
}

// VerboseName returns the explicit header text, or "".
func (c Column) VerboseName() string {
	return c.verboseName
}

// Visible reports whether the column is visible by declaration.
func (c Column) Visible() bool {
	return c.visible
}

// Orderable returns the declared orderability; ok is false when the column
// defers to its table.
func (c Column) Orderable() (orderable bool, ok bool) {
	if c.orderable == nil {
		return false, false
	}
	return *c.orderable, true
}

// EmptyValues returns the values substituted by the default. Columns that
// declare none use their kind's empty values, falling back to nil and "".
func (c Column) EmptyValues() []any {
	if c.emptySet {
		return append([]any{}, c.emptyValues...)
	}
	if k, ok := c.kind.(EmptyValuesKind); ok {
		return k.EmptyValues()
	}
	return []any{nil, ""}
}

// OrderBy returns the accessors used when ordering by this column, or nil
// when the column orders by its own accessor.
func (c Column) OrderBy() OrderByTuple {
	if len(c.orderBy) == 0 {
		return nil
	}
	return ParseOrderBy(c.orderBy)
}

// Attrs returns a copy of the declared attributes.
func (c Column) Attrs() Attrs {
	return MergeAttrs(c.attrs)
}

// Footer returns the declared footer, a static value or a FooterFunc.
func (c Column) Footer() any {
	return c.footer
}

// Kind returns the semantic type of the column.
func (c Column) Kind() Kind {
	if c.kind == nil {
		return TextKind{}
	}
	return c.kind
}

// ExcludedFromExport reports whether the column is skipped by Table.AsValues.
func (c Column) ExcludedFromExport() bool {
	return c.excludeFromExport
}

// WithAccessor sets the dotted path used to read the value.
func (c Column) WithAccessor(path string) Column {
	c.accessor = path
	return c
}

// WithDefault sets the value used for empty cells. A DefaultFunc is called
// with the record.
func (c Column) WithDefault(def any) Column {
	c.def = def
	return c
}

// WithVerboseName sets the header text.
func (c Column) WithVerboseName(name string) Column {
	c.verboseName = name
	return c
}

// WithVisible shows or hides the column.
func (c Column) WithVisible(visible bool) Column {
	c.visible = visible
	return c
}

// WithOrderable overrides the table's orderability for this column.
func (c Column) WithOrderable(orderable bool) Column {
	c.orderable = &orderable
	return c
}

// WithEmptyValues replaces the values treated as "no data".
func (c Column) WithEmptyValues(values ...any) Column {
	c.emptyValues = slices.Clone(values)
	c.emptySet = true
	return c
}

// WithOrderBy sets the accessors, optionally prefixed with "-", used when
// the table is ordered by this column.
func (c Column) WithOrderBy(accessors ...string) Column {
	c.orderBy = slices.Clone(accessors)
	return c
}

// WithAttrs sets the attributes of the generated elements, grouped under
// "th", "td", "tf" and "cell".
func (c Column) WithAttrs(attrs Attrs) Column {
	c.attrs = MergeAttrs(attrs)
	return c
}

// WithFooter sets a static footer or a FooterFunc.
func (c Column) WithFooter(footer any) Column {
	c.footer = footer
	return c
}

// WithKind sets the semantic type of the column.
func (c Column) WithKind(kind Kind) Column {
	c.kind = kind
	return c
}

// WithRender sets a render function that takes precedence over the kind.
func (c Column) WithRender(fn RenderFunc) Column {
	c.render = fn
	return c
}

// WithValue sets an export function that takes precedence over rendering.
func (c Column) WithValue(fn ValueFunc) Column {
	c.value = fn
	return c
}

// WithExcludeFromExport skips the column in Table.AsValues.
func (c Column) WithExcludeFromExport() Column {
	c.excludeFromExport = true
	return c
}

// renderCell runs the column's own render chain: render func, then kind.
func (c Column) renderCell(cell Cell) any {
	kindRender := func(cell Cell) any {
		return c.Kind().Render(cell)
	}
	if c.render != nil {
		cell.fallback = kindRender
		return c.render(cell)
	}
	return kindRender(cell)
}

// valueCell runs the column's export chain: value func, then the kind's
// value, then the render chain.
func (c Column) valueCell(cell Cell) any {
	next := c.renderCell
	if k, ok := c.Kind().(ValueKind); ok {
		next = k.Value
	}
	if c.value != nil {
		cell.fallback = next
		return c.value(cell)
	}
	cell.fallback = nil
	return next(cell)
}

// conflictingOrderBy returns the first accessor named more than once in the
// column's order_by declaration.
func (c Column) conflictingOrderBy() (string, bool) {
	seen := make(map[string]bool, len(c.orderBy))
	for _, accessor := range c.orderBy {
		bare := OrderBy(accessor).Bare()
		if seen[bare] {
			return bare, true
		}
		seen[bare] = true
	}
	return "", false
}
