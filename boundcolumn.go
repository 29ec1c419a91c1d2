package tables

import (
	"fmt"
	"slices"
)

// BoundColumn is a Column attached to a Table. It answers the questions that
// depend on the table's state: visibility, orderability, current ordering
// and headers.
type BoundColumn struct {
	table   *Table
	column  Column
	visible bool
}

func newBoundColumn(t *Table, c Column) *BoundColumn {
	return &BoundColumn{table: t, column: c, visible: c.Visible()}
}

// Name returns the column name.
func (c *BoundColumn) Name() string {
	return c.column.Name()
}

// Column returns the declaration the column is bound from.
func (c *BoundColumn) Column() Column {
	return c.column
}

// Table returns the table the column is bound to.
func (c *BoundColumn) Table() *Table {
	return c.table
}

// Accessor returns the accessor used to read cell values.
func (c *BoundColumn) Accessor() Accessor {
	return c.column.Accessor()
}

// Visible reports whether the column is currently shown.
func (c *BoundColumn) Visible() bool {
	return c.visible
}

// Orderable reports whether the table may be ordered by this column. Columns
// without their own setting follow the table.
func (c *BoundColumn) Orderable() bool {
	if orderable, ok := c.column.Orderable(); ok {
		return orderable
	}
	return c.table.orderable
}

// Default returns the value shown for an empty cell of record: the column
// default, or the table default when the column declares none.
func (c *BoundColumn) Default(record any) any {
	def := c.column.Default()
	if def == nil {
		return c.table.defaultValue
	}
	switch fn := def.(type) {
	case DefaultFunc:
		return fn(record)
	case func(any) any:
		return fn(record)
	}
	return def
}

// EmptyValues returns the values replaced by the default.
func (c *BoundColumn) EmptyValues() []any {
	return c.column.EmptyValues()
}

func (c *BoundColumn) isEmpty(value any) bool {
	return slices.ContainsFunc(c.EmptyValues(), func(empty any) bool {
		return valuesEqual(value, empty)
	})
}

// VerboseName returns the header text. An explicit verbose name wins, then
// the verbose name of the model field the accessor points at, then the
// titleized column name.
func (c *BoundColumn) VerboseName() string {
	if name := c.column.VerboseName(); name != "" {
		return name
	}
	if model := c.table.Model(); model != nil {
		if field, err := c.Accessor().GetField(model); err == nil && field.VerboseName != "" {
			return field.VerboseName
		}
	}
	return titleize(c.Name())
}

// Header is an alias of VerboseName.
func (c *BoundColumn) Header() string {
	return c.VerboseName()
}

// OrderByAlias returns the column's alias as it appears in the table's
// current ordering, or its plain ascending alias when the table is not
// ordered by it.
func (c *BoundColumn) OrderByAlias() OrderBy {
	return c.table.orderBy.Get(c.Name(), OrderBy(c.Name()))
}

// NextOrderByAlias returns the alias a client should request to order by
// this column next: the opposite direction when it is already ordered,
// ascending otherwise.
func (c *BoundColumn) NextOrderByAlias() OrderBy {
	if c.IsOrdered() {
		return c.OrderByAlias().Opposite()
	}
	return c.OrderByAlias()
}

// IsOrdered reports whether the table is currently ordered by this column.
func (c *BoundColumn) IsOrdered() bool {
	return c.table.orderBy.Contains(c.Name())
}

// OrderBy returns the accessors the table sorts by for this column, in the
// direction of its current alias.
func (c *BoundColumn) OrderBy() OrderByTuple {
	return c.expandOrderBy(c.OrderByAlias())
}

// expandOrderBy translates an alias for this column into accessors. A
// descending alias flips every declared direction.
func (c *BoundColumn) expandOrderBy(alias OrderBy) OrderByTuple {
	accessors := c.column.OrderBy()
	if len(accessors) == 0 {
		accessors = OrderByTuple{OrderBy(c.Accessor().String())}
	}
	if alias.IsDescending() {
		return accessors.Opposite()
	}
	return accessors
}

// Attrs returns the attributes of the header ("th"), data ("td") and footer
// ("tf") elements. The "cell" group applies to all three; the table's own
// groups are layered under the column's. Header attributes carry the
// orderable and asc/desc classes.
func (c *BoundColumn) Attrs() Attrs {
	return Attrs{
		"th": c.elementAttrs("th", Cell{Table: c.table, Column: c}),
		"td": c.elementAttrs("td", Cell{Table: c.table, Column: c}),
		"tf": c.elementAttrs("tf", Cell{Table: c.table, Column: c}),
	}
}

// CellAttrs returns the "td" attributes computed for a single cell.
func (c *BoundColumn) CellAttrs(cell Cell) Attrs {
	return c.elementAttrs("td", cell)
}

func (c *BoundColumn) elementAttrs(group string, cell Cell) Attrs {
	table, column := c.table.attrs, c.column.attrs
	attrs := MergeAttrs(
		table.Group("cell"), table.Group(group),
		column.Group("cell"), column.Group(group),
	).Computed(cell)

	if group == "th" {
		if c.Orderable() {
			attrs.AddClass(classOrderable)
		}
		if c.IsOrdered() {
			if c.OrderByAlias().IsDescending() {
				attrs.AddClass(classDesc)
			} else {
				attrs.AddClass(classAsc)
			}
		}
	}
	return attrs
}

// Footer returns the footer of the column, or nil when it declares none.
func (c *BoundColumn) Footer() any {
	switch f := c.column.Footer().(type) {
	case nil:
		return nil
	case FooterFunc:
		return f(c.table, c)
	case func(*Table, *BoundColumn) any:
		return f(c.table, c)
	default:
		return f
	}
}

// HasFooter reports whether the column declares a footer.
func (c *BoundColumn) HasFooter() bool {
	return c.column.Footer() != nil
}

func (c *BoundColumn) String() string {
	return fmt.Sprintf("<%s.%s>", c.table.Name(), c.Name())
}

// BoundColumns is the ordered set of columns of a table.
type BoundColumns struct {
	table   *Table
	columns []*BoundColumn
	byName  map[string]*BoundColumn
}

func newBoundColumns(t *Table, columns []Column) *BoundColumns {
	bc := &BoundColumns{
		table:   t,
		columns: make([]*BoundColumn, 0, len(columns)),
		byName:  make(map[string]*BoundColumn, len(columns)),
	}
	for _, c := range columns {
		bound := newBoundColumn(t, c)
		bc.columns = append(bc.columns, bound)
		bc.byName[c.Name()] = bound
	}
	return bc
}

// All returns every column, hidden ones included, in sequence order.
func (bc *BoundColumns) All() []*BoundColumn {
	return slices.Clone(bc.columns)
}

// Visible returns the columns currently shown, in sequence order.
func (bc *BoundColumns) Visible() []*BoundColumn {
	visible := make([]*BoundColumn, 0, len(bc.columns))
	for _, c := range bc.columns {
		if c.visible {
			visible = append(visible, c)
		}
	}
	return visible
}

// Orderable returns every column the table may be ordered by.
func (bc *BoundColumns) Orderable() []*BoundColumn {
	orderable := make([]*BoundColumn, 0, len(bc.columns))
	for _, c := range bc.columns {
		if c.Orderable() {
			orderable = append(orderable, c)
		}
	}
	return orderable
}

// Names returns the names of the visible columns.
func (bc *BoundColumns) Names() []string {
	visible := bc.Visible()
	names := make([]string, len(visible))
	for i, c := range visible {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of visible columns.
func (bc *BoundColumns) Len() int {
	return len(bc.Visible())
}

// Get returns the column called name, hidden or not.
func (bc *BoundColumns) Get(name string) (*BoundColumn, bool) {
	c, ok := bc.byName[name]
	return c, ok
}

// Contains reports whether the table has a column called name.
func (bc *BoundColumns) Contains(name string) bool {
	_, ok := bc.byName[name]
	return ok
}

// Index returns the position of the column called name, or -1.
func (bc *BoundColumns) Index(name string) int {
	return slices.IndexFunc(bc.columns, func(c *BoundColumn) bool {
		return c.Name() == name
	})
}

// Hide hides the column called name on this table only.
func (bc *BoundColumns) Hide(name string) error {
	return bc.setVisible(name, false)
}

// Show shows the column called name on this table only.
func (bc *BoundColumns) Show(name string) error {
	return bc.setVisible(name, true)
}

func (bc *BoundColumns) setVisible(name string, visible bool) error {
	c, ok := bc.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	c.visible = visible
	return nil
}
