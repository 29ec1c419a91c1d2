package tables

import (
	"reflect"
	"testing"
)

func TestColumnBuildersReturnCopies(t *testing.T) {
	base := NewColumn("name").WithAttrs(Attrs{"td": Attrs{"class": "name"}})
	changed := base.
		WithAccessor("person.name").
		WithVerboseName("Person").
		WithVisible(false).
		WithOrderable(false).
		WithEmptyValues("-").
		WithOrderBy("last", "first").
		WithKind(BooleanKind{}).
		WithExcludeFromExport()

	if base.Accessor().String() != "name" || base.VerboseName() != "" || !base.Visible() {
		t.Errorf("base column was modified: %+v", base)
	}
	if _, ok := base.Orderable(); ok {
		t.Error("expected the base column to defer orderability to its table")
	}
	if base.OrderBy() != nil || base.ExcludedFromExport() {
		t.Error("base column was modified")
	}
	if _, ok := base.Kind().(TextKind); !ok {
		t.Errorf("expected TextKind, got %T", base.Kind())
	}

	if changed.Accessor().String() != "person.name" || changed.VerboseName() != "Person" || changed.Visible() {
		t.Errorf("unexpected changed column: %+v", changed)
	}
	if orderable, ok := changed.Orderable(); !ok || orderable {
		t.Error("expected the changed column to be explicitly unorderable")
	}
	if got := changed.OrderBy(); !reflect.DeepEqual(got, OrderByTuple{"last", "first"}) {
		t.Errorf("expected [last first], got %v", got)
	}

	attrs := changed.Attrs()
	attrs.Group("td")["class"] = "other"
	if got := base.Attrs().Group("td")["class"]; got != "name" {
		t.Errorf("expected attrs to be copied, got %v", got)
	}
}

func TestColumnEmptyValues(t *testing.T) {
	tests := []struct {
		name     string
		column   Column
		expected []any
	}{
		{name: "default", column: NewColumn("a"), expected: []any{nil, ""}},
		{name: "kind", column: NewColumn("a").WithKind(BooleanKind{}), expected: []any{nil}},
		{name: "explicit_over_kind", column: NewColumn("a").WithKind(BooleanKind{}).WithEmptyValues(false), expected: []any{false}},
		{name: "explicit_none", column: NewColumn("a").WithEmptyValues(), expected: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.column.EmptyValues(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestColumnValueChain(t *testing.T) {
	cell := Cell{Value: true}

	tests := []struct {
		name     string
		column   Column
		expected any
	}{
		{name: "kind_value", column: NewColumn("a").WithKind(BooleanKind{}), expected: "true"},
		{name: "render_without_value_kind", column: NewColumn("a").WithRender(func(c Cell) any { return "yes" }), expected: "yes"},
		{
			name: "value_falls_back_to_kind",
			column: NewColumn("a").WithKind(BooleanKind{}).WithValue(func(c Cell) any {
				return "[" + c.Fallback().(string) + "]"
			}),
			expected: "[true]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.column.valueCell(cell); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
