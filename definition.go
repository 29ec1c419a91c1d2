package tables

import (
	"slices"
)

// Meta declares a table: its columns, where they come from and how they are
// presented. It is turned into a reusable Definition by Define.
//
// Fields:
//   - Name: The table name used in logs and errors.
//   - Extends: A parent definition whose columns, attrs and hooks are
//     inherited and overridden by this one.
//   - Columns: Explicitly declared columns. A column named like an
//     inherited one replaces it in place.
//   - Remove: Inherited columns to drop.
//   - Model: A schema from which columns are derived.
//   - Fields: The model fields to derive columns for, as accessors. All
//     non-relational fields when empty.
//   - Exclude: Columns left out of the table.
//   - Sequence: The column order. It may contain "..." once, standing for
//     every column it does not name.
//   - OrderBy: The initial ordering, in any form ParseOrderBy accepts.
//   - Attrs: Table attributes. The "th", "td", "tf" and "cell" groups apply
//     to every column.
//   - RowAttrs: Attributes of primary rows.
//   - PinnedRowAttrs: Attributes of pinned rows.
//   - Default: Table-wide value for empty cells; "—" when nil.
//   - EmptyText: Text shown by a table without rows.
//   - Config: Shared configuration; DefaultConfig when nil.
//   - Render, Value, Order, Compute: Per-column hooks, keyed by column name.
//   - Hooks: A value whose methods named RenderX, ValueX, OrderX and
//     ComputeX are registered as hooks for the column x.
//   - PinnedTop, PinnedBottom: Compute records shown above and below the
//     primary rows of every page.
type Meta struct {
	Name           string
	Extends        *Definition
	Columns        []Column
	Remove         []string
	Model          ModelSchema
	Fields         []string
	Exclude        []string
	Sequence       []string
	OrderBy        any
	Attrs          Attrs
	RowAttrs       Attrs
	PinnedRowAttrs Attrs
	Default        any
	EmptyText      string
	Config         *Config
	Render         map[string]RenderFunc
	Value          map[string]ValueFunc
	Order          map[string]OrderFunc
	Compute        map[string]ComputeFunc
	Hooks          any
	PinnedTop      func(t *Table) []any
	PinnedBottom   func(t *Table) []any
}

// Definition is a validated table declaration. It is immutable and safe to
// share between goroutines creating tables.
type Definition struct {
	name           string
	columns        []Column
	model          ModelSchema
	orderBy        any
	attrs          Attrs
	rowAttrs       Attrs
	pinnedRowAttrs Attrs
	defaultValue   any
	emptyText      string
	config         Config
	hooks          hookSet
	hooksValue     any
	pinnedTop      func(t *Table) []any
	pinnedBottom   func(t *Table) []any
}

// Define validates meta and returns the resulting Definition. Every
// inconsistency is reported as a *ConfigError.
func Define(meta Meta) (*Definition, error) {
	d := &Definition{
		name:   meta.Name,
		config: DefaultConfig(),
		hooks:  newHookSet(),
	}
	if parent := meta.Extends; parent != nil {
		d.inherit(parent)
	}

	if err := d.declareColumns(meta); err != nil {
		return nil, err
	}
	if meta.Model != nil {
		d.model = meta.Model
		if err := d.deriveColumns(meta); err != nil {
			return nil, err
		}
	}

	d.columns = slices.DeleteFunc(d.columns, func(c Column) bool {
		return containsString(meta.Exclude, c.Name())
	})

	sequence := meta.Sequence
	if sequence == nil && len(meta.Fields) > 0 {
		sequence = append(slices.Clone(meta.Fields), sequenceRemainder)
	}
	if sequence != nil {
		ordered, err := applySequence(d.name, d.columns, sequence)
		if err != nil {
			return nil, err
		}
		d.columns = ordered
	}

	if meta.Config != nil {
		d.config = *meta.Config
	}
	if err := d.config.Validate(); err != nil {
		return nil, configErrorf(d.name, err, "invalid config")
	}

	if meta.OrderBy != nil {
		d.orderBy = meta.OrderBy
	}
	d.attrs = MergeAttrs(d.attrs, meta.Attrs)
	d.rowAttrs = MergeAttrs(d.rowAttrs, meta.RowAttrs)
	d.pinnedRowAttrs = MergeAttrs(d.pinnedRowAttrs, meta.PinnedRowAttrs)
	if meta.Default != nil {
		d.defaultValue = meta.Default
	}
	if meta.EmptyText != "" {
		d.emptyText = meta.EmptyText
	}
	if meta.PinnedTop != nil {
		d.pinnedTop = meta.PinnedTop
	}
	if meta.PinnedBottom != nil {
		d.pinnedBottom = meta.PinnedBottom
	}

	if meta.Hooks != nil {
		d.hooksValue = meta.Hooks
	}
	if err := d.hooks.register(d.name, d.hooksValue, d.columnNames(d.columns)); err != nil {
		return nil, err
	}
	d.hooks.merge(meta)
	return d, nil
}

// MustDefine is like Define but panics on error. It is meant for package
// level table declarations.
func MustDefine(meta Meta) *Definition {
	d, err := Define(meta)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) inherit(parent *Definition) {
	d.columns = slices.Clone(parent.columns)
	d.model = parent.model
	d.orderBy = parent.orderBy
	d.attrs = MergeAttrs(parent.attrs)
	d.rowAttrs = MergeAttrs(parent.rowAttrs)
	d.pinnedRowAttrs = MergeAttrs(parent.pinnedRowAttrs)
	d.defaultValue = parent.defaultValue
	d.emptyText = parent.emptyText
	d.config = parent.config
	d.hooks = parent.hooks.clone()
	d.hooksValue = parent.hooksValue
	d.pinnedTop = parent.pinnedTop
	d.pinnedBottom = parent.pinnedBottom
}

// declareColumns applies the explicit columns and removals of meta over the
// inherited columns.
func (d *Definition) declareColumns(meta Meta) error {
	seen := make(map[string]bool, len(meta.Columns))
	for _, c := range meta.Columns {
		if c.Name() == "" {
			return configErrorf(d.name, nil, "column without a name")
		}
		if seen[c.Name()] {
			return configErrorf(d.name, nil, "column %q declared more than once", c.Name())
		}
		seen[c.Name()] = true
		if accessor, conflict := c.conflictingOrderBy(); conflict {
			return configErrorf(d.name, nil, "column %q orders by %q more than once", c.Name(), accessor)
		}
		d.columns = upsertColumn(d.columns, c)
	}

	d.columns = slices.DeleteFunc(d.columns, func(c Column) bool {
		return containsString(meta.Remove, c.Name())
	})
	return nil
}

// deriveColumns appends a column for every model field that is not already
// declared. Named fields must exist in the model.
func (d *Definition) deriveColumns(meta Meta) error {
	declared := d.columnNames(d.columns)
	add := func(name string, field SchemaField) {
		if containsString(declared, name) {
			return
		}
		d.columns = append(d.columns, columnForField(name, field))
	}

	if len(meta.Fields) == 0 {
		for _, field := range meta.Model.Fields() {
			if field.Related != nil && field.Many {
				continue
			}
			add(field.Name, field)
		}
		return nil
	}

	for _, name := range meta.Fields {
		field, err := NewAccessor(name).GetField(meta.Model)
		if err != nil {
			return configErrorf(d.name, err, "field %q of model %s", name, meta.Model.Name())
		}
		add(name, field)
	}
	return nil
}

func (d *Definition) columnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	return names
}

// Name returns the table name.
func (d *Definition) Name() string {
	return d.name
}

// Columns returns the declared columns in sequence order.
func (d *Definition) Columns() []Column {
	return slices.Clone(d.columns)
}

// Model returns the model schema of the definition, or nil.
func (d *Definition) Model() ModelSchema {
	return d.model
}

// Config returns the shared configuration.
func (d *Definition) Config() Config {
	return d.config
}

// upsertColumn replaces the column named like c, or appends c.
func upsertColumn(columns []Column, c Column) []Column {
	if i := slices.IndexFunc(columns, func(existing Column) bool {
		return existing.Name() == c.Name()
	}); i >= 0 {
		columns[i] = c
		return columns
	}
	return append(columns, c)
}

// applySequence reorders columns by sequence. Names in the sequence that are
// not columns are ignored. Without "..." the sequence must name every
// column.
func applySequence(table string, columns []Column, sequence []string) ([]Column, error) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	order, err := expandSequence(table, names, sequence)
	if err != nil {
		return nil, err
	}

	ordered := make([]Column, 0, len(columns))
	for _, name := range order {
		i := slices.IndexFunc(columns, func(c Column) bool { return c.Name() == name })
		ordered = append(ordered, columns[i])
	}
	return ordered, nil
}

// expandSequence returns names in the order given by sequence, with "..."
// replaced by the names the sequence does not mention.
func expandSequence(table string, names, sequence []string) ([]string, error) {
	remainders := 0
	for _, s := range sequence {
		if s == sequenceRemainder {
			remainders++
		}
	}
	if remainders > 1 {
		return nil, configErrorf(table, nil, "sequence may contain %q only once", sequenceRemainder)
	}

	var head, tail []string
	target := &head
	for _, s := range sequence {
		if s == sequenceRemainder {
			target = &tail
			continue
		}
		if !containsString(names, s) || containsString(head, s) || containsString(tail, s) {
			continue
		}
		*target = append(*target, s)
	}

	var rest []string
	for _, name := range names {
		if !containsString(head, name) && !containsString(tail, name) {
			rest = append(rest, name)
		}
	}
	if remainders == 0 && len(rest) > 0 {
		return nil, configErrorf(table, nil, "sequence does not name %v and has no %q", rest, sequenceRemainder)
	}

	order := make([]string, 0, len(names))
	order = append(order, head...)
	order = append(order, rest...)
	return append(order, tail...), nil
}
