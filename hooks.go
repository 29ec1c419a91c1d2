package tables

import (
	"maps"
	"reflect"
	"strings"
)

// OrderFunc orders a query source for a column. It returns the reordered
// source and true when it handled the ordering; returning false leaves the
// ordering to the column's accessors.
type OrderFunc func(source QuerySource, descending bool) (QuerySource, bool)

// ComputeFunc computes a cell from its row, bypassing the accessor. It
// returns UseDefault to let the cell be computed normally.
type ComputeFunc func(row *BoundRow) any

// hookSet holds the per-column hooks of a table, keyed by column name.
type hookSet struct {
	render  map[string]RenderFunc
	value   map[string]ValueFunc
	order   map[string]OrderFunc
	compute map[string]ComputeFunc
}

func newHookSet() hookSet {
	return hookSet{
		render:  map[string]RenderFunc{},
		value:   map[string]ValueFunc{},
		order:   map[string]OrderFunc{},
		compute: map[string]ComputeFunc{},
	}
}

func (h hookSet) clone() hookSet {
	return hookSet{
		render:  maps.Clone(h.render),
		value:   maps.Clone(h.value),
		order:   maps.Clone(h.order),
		compute: maps.Clone(h.compute),
	}
}

// merge layers the hook maps of meta over h.
func (h hookSet) merge(meta Meta) {
	maps.Copy(h.render, meta.Render)
	maps.Copy(h.value, meta.Value)
	maps.Copy(h.order, meta.Order)
	maps.Copy(h.compute, meta.Compute)
}

// register adds the methods of hooks named after a hook prefix and a column,
// such as RenderFirstName or OrderAge. The column part is converted to its
// snake_case form and matched against columns; methods that match no column
// are ignored, methods that match one must have the hook's signature.
func (h hookSet) register(table string, hooks any, columns []string) error {
	if hooks == nil {
		return nil
	}
	rv := reflect.ValueOf(hooks)
	rt := rv.Type()
	for i := range rt.NumMethod() {
		method := rt.Method(i)
		prefix, column, ok := hookTarget(method.Name, columns)
		if !ok {
			continue
		}

		fn := rv.Method(i).Interface()
		switch prefix {
		case hookRender:
			f, ok := fn.(func(Cell) any)
			if !ok {
				return configErrorf(table, nil, "hook %s must be func(Cell) any", method.Name)
			}
			h.render[column] = f
		case hookValue:
			f, ok := fn.(func(Cell) any)
			if !ok {
				return configErrorf(table, nil, "hook %s must be func(Cell) any", method.Name)
			}
			h.value[column] = f
		case hookOrder:
			f, ok := fn.(func(QuerySource, bool) (QuerySource, bool))
			if !ok {
				return configErrorf(table, nil, "hook %s must be func(QuerySource, bool) (QuerySource, bool)", method.Name)
			}
			h.order[column] = f
		case hookCompute:
			f, ok := fn.(func(*BoundRow) any)
			if !ok {
				return configErrorf(table, nil, "hook %s must be func(*BoundRow) any", method.Name)
			}
			h.compute[column] = f
		}
	}
	return nil
}

// hookTarget splits a method name into its hook prefix and the column it
// targets.
func hookTarget(method string, columns []string) (prefix, column string, ok bool) {
	for _, p := range []string{hookRender, hookValue, hookOrder, hookCompute} {
		rest, found := strings.CutPrefix(method, p)
		if !found || rest == "" {
			continue
		}
		for _, candidate := range []string{namer.ColumnName("", rest), rest} {
			if containsString(columns, candidate) {
				return p, candidate, true
			}
		}
	}
	return "", "", false
}
