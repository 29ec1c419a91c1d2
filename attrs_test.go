package tables

import (
	"reflect"
	"testing"
)

func TestMergeAttrs(t *testing.T) {
	tests := []struct {
		name     string
		layers   []Attrs
		expected Attrs
	}{
		{
			name:     "later_layer_wins",
			layers:   []Attrs{{"class": "a", "id": "t"}, {"class": "b"}},
			expected: Attrs{"class": "b", "id": "t"},
		},
		{
			name:     "nil_removes_key",
			layers:   []Attrs{{"class": "a", "id": "t"}, {"id": nil}},
			expected: Attrs{"class": "a"},
		},
		{
			name: "nested_groups_merge_key_by_key",
			layers: []Attrs{
				{"th": Attrs{"class": "head", "scope": "col"}},
				{"th": Attrs{"class": "wide", "scope": nil}},
			},
			expected: Attrs{"th": Attrs{"class": "wide"}},
		},
		{
			name:     "nil_layers",
			layers:   []Attrs{nil, {"a": 1}, nil},
			expected: Attrs{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeAttrs(tt.layers...)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMergeAttrsDoesNotModifyLayers(t *testing.T) {
	base := Attrs{"th": Attrs{"class": "head"}}
	MergeAttrs(base, Attrs{"th": Attrs{"class": "other"}})

	if got := base.Group("th")["class"]; got != "head" {
		t.Errorf("expected base to keep %q, got %v", "head", got)
	}
}

func TestAttrsComputed(t *testing.T) {
	attrs := Attrs{
		"id":    AttrFunc(func(c Cell) any { return c.Index }),
		"title": func(c Cell) any { return nil },
		"class": "static",
	}

	got := attrs.Computed(Cell{Index: 3})
	expected := Attrs{"id": 3, "class": "static"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestAttrsAddClassAndString(t *testing.T) {
	attrs := Attrs{"class": "a", "data-x": `"q"`}
	attrs.AddClass("b", "a", "")

	if got := attrs["class"]; got != "a b" {
		t.Errorf("expected %q, got %v", "a b", got)
	}
	expected := `class="a b" data-x="&#34;q&#34;"`
	if got := attrs.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	empty := Attrs{}
	empty.AddClass("only")
	if got := empty["class"]; got != "only" {
		t.Errorf("expected %q, got %v", "only", got)
	}
}
