package tables

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Attrs holds attributes for a generated HTML element. Values may be static
// or an AttrFunc computed per cell. Nested Attrs are used for the per-element
// groups of a column ("th", "td", "tf", "cell").
type Attrs map[string]any

// AttrFunc computes an attribute value from the cell it is rendered for.
type AttrFunc func(cell Cell) any

// MergeAttrs layers every attrs over the previous ones, key by key. A nil
// value removes the key instead of setting it; nested Attrs are merged
// recursively. None of the inputs is modified.
func MergeAttrs(layers ...Attrs) Attrs {
	merged := Attrs{}
	for _, layer := range layers {
		for key, value := range layer {
			if value == nil {
				delete(merged, key)
				continue
			}
			if nested, ok := value.(Attrs); ok {
				if existing, ok := merged[key].(Attrs); ok {
					merged[key] = MergeAttrs(existing, nested)
					continue
				}
				merged[key] = MergeAttrs(nested)
				continue
			}
			merged[key] = value
		}
	}
	return merged
}

// Group returns the nested attrs stored under key, or nil.
func (a Attrs) Group(key string) Attrs {
	if group, ok := a[key].(Attrs); ok {
		return group
	}
	return nil
}

// Computed evaluates every AttrFunc against cell and returns a flat copy.
func (a Attrs) Computed(cell Cell) Attrs {
	computed := make(Attrs, len(a))
	for key, value := range a {
		if fn, ok := value.(AttrFunc); ok {
			value = fn(cell)
		}
		if fn, ok := value.(func(Cell) any); ok {
			value = fn(cell)
		}
		if value == nil {
			continue
		}
		computed[key] = value
	}
	return computed
}

// AddClass appends class names to the "class" attribute, skipping blanks and
// names already present.
func (a Attrs) AddClass(classes ...string) {
	current := strings.Fields(fmt.Sprint(a["class"]))
	if a["class"] == nil {
		current = nil
	}
	for _, c := range classes {
		if c == "" || containsString(current, c) {
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		a["class"] = strings.Join(current, " ")
	}
}

// String renders the attributes as an escaped, key-sorted HTML attribute
// list. Nested groups are skipped.
func (a Attrs) String() string {
	keys := make([]string, 0, len(a))
	for key, value := range a {
		if _, nested := value.(Attrs); nested {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, key, html.EscapeString(fmt.Sprint(a[key]))))
	}
	return strings.Join(parts, " ")
}
