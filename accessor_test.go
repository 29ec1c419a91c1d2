package tables

import (
	"errors"
	"reflect"
	"testing"
)

type Country struct {
	Name       string
	Population *int
}

type Person struct {
	FirstName string
	LastName  string
	Country   *Country
	Tags      []string
}

func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p Person) Initials() (string, error) {
	if p.FirstName == "" || p.LastName == "" {
		return "", errors.New("missing name")
	}
	return p.FirstName[:1] + p.LastName[:1], nil
}

func (p Person) Explode() string {
	panic("boom")
}

func (p *Person) Delete() bool {
	p.FirstName = "deleted"
	return true
}

func (p *Person) AltersData(method string) bool {
	return method == "Delete"
}

type lookupRecord map[string]string

func (l lookupRecord) Lookup(key string) (any, bool) {
	v, ok := l[key]
	return v, ok
}

type indexRecord []string

func (r indexRecord) Len() int        { return len(r) }
func (r indexRecord) Index(i int) any { return r[i] }

func TestAccessorResolve(t *testing.T) {
	population := 42
	person := &Person{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Country:   &Country{Name: "England", Population: &population},
		Tags:      []string{"math", "poetry"},
	}

	tests := []struct {
		name     string
		accessor string
		record   any
		expected any
	}{
		{name: "map_key", accessor: "name", record: map[string]any{"name": "A"}, expected: "A"},
		{name: "nested_map", accessor: "a.b", record: map[string]any{"a": map[string]any{"b": 1}}, expected: 1},
		{name: "typed_map", accessor: "x", record: map[string]int{"x": 7}, expected: 7},
		{name: "mapping_interface", accessor: "k", record: lookupRecord{"k": "v"}, expected: "v"},
		{name: "struct_field_go_name", accessor: "FirstName", record: person, expected: "Ada"},
		{name: "struct_field_snake_case", accessor: "first_name", record: person, expected: "Ada"},
		{name: "nested_struct_pointer", accessor: "country.name", record: person, expected: "England"},
		{name: "method_called", accessor: "full_name", record: person, expected: "Ada Lovelace"},
		{name: "method_with_error_result", accessor: "initials", record: person, expected: "AL"},
		{name: "slice_index", accessor: "tags.1", record: person, expected: "poetry"},
		{name: "negative_index", accessor: "tags.-1", record: person, expected: "poetry"},
		{name: "indexable_interface", accessor: "0", record: indexRecord{"first"}, expected: "first"},
		{name: "int_keyed_map", accessor: "2", record: map[int]string{2: "two"}, expected: "two"},
		{name: "func_value_called", accessor: "f", record: map[string]any{"f": func() any { return 3 }}, expected: 3},
		{name: "callable_mid_path", accessor: "f.x", record: map[string]any{"f": func() map[string]any { return map[string]any{"x": "y"} }}, expected: "y"},
		{name: "empty_path_returns_record", accessor: "", record: "self", expected: "self"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAccessor(tt.accessor).Resolve(tt.record)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAccessorResolveNeverPanics(t *testing.T) {
	tests := []struct {
		name     string
		accessor string
		record   any
	}{
		{name: "missing_key", accessor: "missing", record: map[string]any{}},
		{name: "nil_record", accessor: "name", record: nil},
		{name: "nil_intermediate", accessor: "country.name", record: &Person{}},
		{name: "wrong_type_intermediate", accessor: "name.first", record: map[string]any{"name": 3}},
		{name: "index_out_of_range", accessor: "tags.5", record: Person{Tags: []string{"a"}}},
		{name: "panicking_method", accessor: "explode", record: Person{}},
		{name: "method_returning_error", accessor: "initials", record: Person{}},
		{name: "string_not_indexed", accessor: "0", record: "abc"},
		{name: "unexported_field", accessor: "secret", record: struct{ secret int }{1}},
		{name: "typed_nil_pointer", accessor: "name", record: (*Country)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("resolve panicked: %v", r)
				}
			}()
			if got := NewAccessor(tt.accessor).Resolve(tt.record); !IsNothing(got) {
				t.Errorf("expected Nothing, got %v", got)
			}
			if got := NewAccessor(tt.accessor).ResolveDefault(tt.record, "def"); got != "def" {
				t.Errorf("expected default, got %v", got)
			}
		})
	}
}

func TestAccessorResolveStrict(t *testing.T) {
	_, err := NewAccessor("country.name").ResolveStrict(&Person{})
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("expected *ResolveError, got %v", err)
	}
	if resolveErr.Segment != "name" {
		t.Errorf("expected failing segment %q, got %q", "name", resolveErr.Segment)
	}
	if !errors.Is(err, ErrMissingSegment) {
		t.Errorf("expected ErrMissingSegment, got %v", err)
	}

	v, err := NewAccessor("first_name").ResolveStrict(Person{FirstName: "Grace"})
	if err != nil || v != "Grace" {
		t.Errorf("expected Grace, got %v (%v)", v, err)
	}
}

func TestAccessorRefusesDataAlteringCalls(t *testing.T) {
	t.Run("declared_method", func(t *testing.T) {
		person := &Person{FirstName: "Ada"}
		_, err := NewAccessor("delete").ResolveStrict(person)
		if !errors.Is(err, ErrAltersData) {
			t.Errorf("expected ErrAltersData, got %v", err)
		}
		if person.FirstName != "Ada" {
			t.Errorf("record was mutated: %q", person.FirstName)
		}
	})

	t.Run("wrapped_func", func(t *testing.T) {
		called := false
		record := map[string]any{"drop": AltersData(func() any {
			called = true
			return nil
		})}
		if got := NewAccessor("drop").Resolve(record); !IsNothing(got) {
			t.Errorf("expected Nothing, got %v", got)
		}
		if called {
			t.Error("altering func was called")
		}
	})
}

type testSchema struct {
	name   string
	fields []SchemaField
}

func (s testSchema) Name() string          { return s.name }
func (s testSchema) Fields() []SchemaField { return s.fields }

func TestAccessorGetField(t *testing.T) {
	country := testSchema{name: "countries", fields: []SchemaField{
		{Name: "name", Type: "string", VerboseName: "country name"},
	}}
	person := testSchema{name: "people", fields: []SchemaField{
		{Name: "first_name", Type: "string"},
		{Name: "country", Type: "belongs_to", Related: country},
	}}

	tests := []struct {
		name     string
		accessor string
		expected string
		wantErr  bool
	}{
		{name: "direct_field", accessor: "first_name", expected: "first_name"},
		{name: "related_field", accessor: "country.name", expected: "name"},
		{name: "unknown_field", accessor: "age", wantErr: true},
		{name: "through_non_relational", accessor: "first_name.x", wantErr: true},
		{name: "empty_path", accessor: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, err := NewAccessor(tt.accessor).GetField(person)
			if tt.wantErr {
				if !errors.Is(err, ErrNotConcreteField) {
					t.Errorf("expected ErrNotConcreteField, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if field.Name != tt.expected {
				t.Errorf("expected field %q, got %q", tt.expected, field.Name)
			}
		})
	}
}
