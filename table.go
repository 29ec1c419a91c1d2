package tables

import (
	"errors"
	"slices"

	"github.com/rs/zerolog"
)

// Options customizes a single table created from a Definition.
//
// Fields:
//   - ExtraColumns: Columns added to, or replacing, the declared ones.
//   - Exclude: Columns left out of this table.
//   - Sequence: The column order, overriding the declared one.
//   - OrderBy: The initial ordering, overriding the declared one.
//   - Orderable: Overrides the default orderability of columns.
//   - Attrs: Table attributes layered key by key over the declared ones; a
//     nil value removes a declared key.
//   - Default: Table-wide value for empty cells.
//   - EmptyText: Text shown by a table without rows.
//   - Prefix: Prefix of every request field name.
//   - PinnedTop, PinnedBottom: Override the declared pinned records.
//   - Logger: Receives debug and warning events; disabled when nil.
type Options struct {
	ExtraColumns []Column
	Exclude      []string
	Sequence     []string
	OrderBy      any
	Orderable    *bool
	Attrs        Attrs
	Default      any
	EmptyText    string
	Prefix       string
	PinnedTop    func(t *Table) []any
	PinnedBottom func(t *Table) []any
	Logger       *zerolog.Logger
}

// Table binds a Definition to data for a single render. It is not safe for
// concurrent mutation.
//
// Fields:
//   - def: The definition the table was created from.
//   - columns: The bound columns in sequence order.
//   - data: The records, ordered in place or through their query source.
//   - orderBy: The validated current ordering.
//   - hooks: The per-column hooks.
//   - paginator, page: Set by Paginate.
//   - pinned: The pinned rows, resolved once.
type Table struct {
	def            *Definition
	columns        *BoundColumns
	data           *TableData
	orderBy        OrderByTuple
	orderable      bool
	attrs          Attrs
	rowAttrs       Attrs
	pinnedRowAttrs Attrs
	defaultValue   any
	emptyText      string
	prefix         string
	config         Config
	hooks          hookSet
	logger         zerolog.Logger
	pinnedTop      func(t *Table) []any
	pinnedBottom   func(t *Table) []any
	pinned         *[2][]*BoundRow
	paginator      *Paginator
	page           *Page
}

// New creates a table over data. Data is a QuerySource, a slice or array of
// records, an Indexable or an iter.Seq[any]; nil uses the default source of
// the definition's model.
func (d *Definition) New(data any, opts Options) (*Table, error) {
	t := &Table{
		def:            d,
		orderable:      d.config.Orderable,
		attrs:          MergeAttrs(d.attrs, opts.Attrs),
		rowAttrs:       d.rowAttrs,
		pinnedRowAttrs: d.pinnedRowAttrs,
		defaultValue:   d.defaultValue,
		emptyText:      d.emptyText,
		prefix:         d.config.Prefix,
		config:         d.config,
		hooks:          d.hooks,
		logger:         zerolog.Nop(),
		pinnedTop:      d.pinnedTop,
		pinnedBottom:   d.pinnedBottom,
	}
	if opts.Logger != nil {
		t.logger = *opts.Logger
	}
	if opts.Orderable != nil {
		t.orderable = *opts.Orderable
	}
	if opts.Default != nil {
		t.defaultValue = opts.Default
	}
	if t.defaultValue == nil {
		t.defaultValue = defaultCellValue
	}
	if opts.EmptyText != "" {
		t.emptyText = opts.EmptyText
	}
	if opts.Prefix != "" {
		t.prefix = opts.Prefix
	}
	if opts.PinnedTop != nil {
		t.pinnedTop = opts.PinnedTop
	}
	if opts.PinnedBottom != nil {
		t.pinnedBottom = opts.PinnedBottom
	}

	columns := slices.Clone(d.columns)
	for _, c := range opts.ExtraColumns {
		if c.Name() == "" {
			return nil, configErrorf(d.name, nil, "extra column without a name")
		}
		columns = upsertColumn(columns, c)
	}
	columns = slices.DeleteFunc(columns, func(c Column) bool {
		return containsString(opts.Exclude, c.Name())
	})
	if opts.Sequence != nil {
		ordered, err := applySequence(d.name, columns, opts.Sequence)
		if err != nil {
			return nil, err
		}
		columns = ordered
	}
	t.columns = newBoundColumns(t, columns)

	tableData, err := newTableData(t, data)
	if err != nil {
		return nil, err
	}
	t.data = tableData

	orderBy := opts.OrderBy
	if orderBy == nil {
		orderBy = d.orderBy
	}
	if orderBy != nil {
		t.SetOrderBy(orderBy)
	}
	return t, nil
}

// New defines a table from meta and creates it over data in one step.
func New(meta Meta, data any, opts Options) (*Table, error) {
	d, err := Define(meta)
	if err != nil {
		return nil, err
	}
	return d.New(data, opts)
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.def.name
}

// Definition returns the definition the table was created from.
func (t *Table) Definition() *Definition {
	return t.def
}

// Model returns the model schema of the table, or nil.
func (t *Table) Model() ModelSchema {
	return t.def.model
}

// Config returns the configuration of the table.
func (t *Table) Config() Config {
	return t.config
}

// Logger returns the table logger.
func (t *Table) Logger() *zerolog.Logger {
	return &t.logger
}

// Columns returns the bound columns.
func (t *Table) Columns() *BoundColumns {
	return t.columns
}

// Data returns the table data.
func (t *Table) Data() *TableData {
	return t.data
}

// Attrs returns the table attributes, without the column groups.
func (t *Table) Attrs() Attrs {
	attrs := MergeAttrs(t.attrs)
	for _, group := range []string{"th", "td", "tf", "cell"} {
		delete(attrs, group)
	}
	return attrs
}

// Default returns the table-wide value for empty cells.
func (t *Table) Default() any {
	return t.defaultValue
}

// EmptyText returns the text shown when the table has no rows.
func (t *Table) EmptyText() string {
	return t.emptyText
}

// Orderable reports the default orderability of columns.
func (t *Table) Orderable() bool {
	return t.orderable
}

// OrderBy returns the current ordering.
func (t *Table) OrderBy() OrderByTuple {
	return slices.Clone(t.orderBy)
}

// SetOrderBy orders the table. The value is parsed with ParseOrderBy; aliases
// that do not name an orderable column are dropped, and the data is ordered
// by the rest. Returns the updated Table instance.
func (t *Table) SetOrderBy(value any) *Table {
	requested := ParseOrderBy(value)
	valid := make(OrderByTuple, 0, len(requested))
	for _, alias := range requested {
		col, ok := t.columns.Get(alias.Bare())
		if !ok || !col.Orderable() {
			t.logger.Debug().
				Str("table", t.Name()).
				Str("alias", string(alias)).
				Msg("ignoring order by an unknown or unorderable column")
			continue
		}
		valid = append(valid, alias)
	}
	t.orderBy = valid
	t.data.orderBy(valid)
	return t
}

// Prefix returns the prefix of the request field names.
func (t *Table) Prefix() string {
	return t.prefix
}

// PrefixedOrderByField returns the request field carrying the ordering.
func (t *Table) PrefixedOrderByField() string {
	return t.prefix + t.config.OrderByField
}

// PrefixedPageField returns the request field carrying the page number.
func (t *Table) PrefixedPageField() string {
	return t.prefix + t.config.PageField
}

// PrefixedPerPageField returns the request field carrying the page size.
func (t *Table) PrefixedPerPageField() string {
	return t.prefix + t.config.PerPageField
}

// HasFooter reports whether any visible column declares a footer.
func (t *Table) HasFooter() bool {
	return slices.ContainsFunc(t.columns.Visible(), (*BoundColumn).HasFooter)
}

// Rows returns every row of the table.
func (t *Table) Rows() *BoundRows {
	return &BoundRows{table: t, limit: -1}
}

// pinnedRows returns the top and bottom pinned rows, computing them on the
// first call.
func (t *Table) pinnedRows() (top, bottom []*BoundRow) {
	if t.pinned == nil {
		var records [2][]any
		if t.pinnedTop != nil {
			records[0] = t.pinnedTop(t)
		}
		if t.pinnedBottom != nil {
			records[1] = t.pinnedBottom(t)
		}
		t.pinned = &[2][]*BoundRow{
			newPinnedRows(t, records[0], PinnedTop),
			newPinnedRows(t, records[1], PinnedBottom),
		}
	}
	return t.pinned[0], t.pinned[1]
}

// PageRequest selects the page shown by Table.Paginate.
//
// Fields:
//   - Page: The page number, as an int or a string.
//   - PerPage: The page size; the configured size when below 1.
//   - Silent: Fall back to page 1 for numbers that are not integers, and to
//     the last page for numbers out of range, instead of failing.
type PageRequest struct {
	Page    any
	PerPage int
	Silent  bool
}

// Paginate splits the rows of the table into pages and selects one. Errors
// are *PageError values unless the request is Silent.
func (t *Table) Paginate(req PageRequest) error {
	perPage := req.PerPage
	if perPage < 1 {
		perPage = t.config.PerPage
	}
	paginator := NewPaginator(t.Rows(), perPage, t.config.Orphans, t.config.AllowEmptyFirstPage)

	number := req.Page
	if number == nil {
		number = 1
	}
	page, err := paginator.Page(number)
	if err != nil && req.Silent {
		var fallback int
		switch {
		case errors.Is(err, ErrPageNotAnInteger):
			fallback = 1
		case errors.Is(err, ErrEmptyPage):
			last, nerr := paginator.NumPages()
			if nerr != nil {
				return nerr
			}
			fallback = max(last, 1)
		default:
			return err
		}
		t.logger.Debug().
			Err(err).
			Str("table", t.Name()).
			Int("fallback", fallback).
			Msg("invalid page requested")
		page, err = paginator.Page(fallback)
	}
	if err != nil {
		return err
	}
	t.paginator = paginator
	t.page = page
	return nil
}

// Paginator returns the paginator set by Paginate, or nil.
func (t *Table) Paginator() *Paginator {
	return t.paginator
}

// Page returns the page selected by Paginate, or nil.
func (t *Table) Page() *Page {
	return t.page
}

// PaginatedRows returns the rows of the selected page, or every row when the
// table is not paginated.
func (t *Table) PaginatedRows() *BoundRows {
	if t.page != nil {
		return t.page.Rows()
	}
	return t.Rows()
}
