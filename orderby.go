package tables

import (
	"fmt"
	"strings"
)

// OrderBy is a single ordering instruction: an alias optionally prefixed with
// "-" for descending order.
type OrderBy string

// Bare returns the alias without its direction prefix.
func (o OrderBy) Bare() string {
	return strings.TrimPrefix(string(o), orderDescPrefix)
}

// IsDescending reports whether the alias carries the descending prefix.
func (o OrderBy) IsDescending() bool {
	return strings.HasPrefix(string(o), orderDescPrefix)
}

// IsAscending reports whether the alias has no descending prefix.
func (o OrderBy) IsAscending() bool {
	return !o.IsDescending()
}

// Opposite returns the same alias with its direction toggled.
func (o OrderBy) Opposite() OrderBy {
	if o.IsDescending() {
		return OrderBy(o.Bare())
	}
	return OrderBy(orderDescPrefix + o.Bare())
}

// Equal compares two aliases by their bare form, ignoring direction.
func (o OrderBy) Equal(other OrderBy) bool {
	return o.Bare() == other.Bare()
}

// Accessor returns an accessor for the bare alias.
func (o OrderBy) Accessor() Accessor {
	return NewAccessor(o.Bare())
}

// OrderByTuple is an ordered list of OrderBy terms; the first term is the
// primary sort key.
type OrderByTuple []OrderBy

// ParseOrderBy builds an OrderByTuple from a comma separated string, a slice
// of strings, a slice of OrderBy or another OrderByTuple. Empty terms are
// skipped and when an alias appears more than once only its first occurrence
// is kept. Values of any other type produce an empty tuple.
func ParseOrderBy(value any) OrderByTuple {
	var terms []string
	switch v := value.(type) {
	case nil:
	case string:
		terms = strings.Split(v, orderSeparator)
	case OrderBy:
		terms = []string{string(v)}
	case []string:
		for _, s := range v {
			terms = append(terms, strings.Split(s, orderSeparator)...)
		}
	case []OrderBy:
		for _, o := range v {
			terms = append(terms, string(o))
		}
	case OrderByTuple:
		for _, o := range v {
			terms = append(terms, string(o))
		}
	case fmt.Stringer:
		terms = strings.Split(v.String(), orderSeparator)
	}

	tuple := make(OrderByTuple, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		o := OrderBy(term)
		if term == "" || o.Bare() == "" || tuple.Contains(o.Bare()) {
			continue
		}
		tuple = append(tuple, o)
	}
	return tuple
}

// NewOrderByTuple is a shortcut for ParseOrderBy over a list of aliases.
func NewOrderByTuple(aliases ...string) OrderByTuple {
	return ParseOrderBy(aliases)
}

// Contains reports whether alias is present in either direction. The alias
// may itself carry a direction prefix, which is ignored.
func (t OrderByTuple) Contains(alias string) bool {
	return t.Index(alias) >= 0
}

// Index returns the position of alias, compared by bare alias, or -1.
func (t OrderByTuple) Index(alias string) int {
	bare := OrderBy(alias).Bare()
	for i, o := range t {
		if o.Bare() == bare {
			return i
		}
	}
	return -1
}

// Get returns the term matching alias, compared by bare alias, or def.
func (t OrderByTuple) Get(alias string, def OrderBy) OrderBy {
	if i := t.Index(alias); i >= 0 {
		return t[i]
	}
	return def
}

// Opposite returns a new tuple with every term toggled, keeping the order.
func (t OrderByTuple) Opposite() OrderByTuple {
	if t == nil {
		return nil
	}
	opposite := make(OrderByTuple, len(t))
	for i, o := range t {
		opposite[i] = o.Opposite()
	}
	return opposite
}

// Strings returns the terms as plain strings.
func (t OrderByTuple) Strings() []string {
	out := make([]string, len(t))
	for i, o := range t {
		out[i] = string(o)
	}
	return out
}

// String renders the tuple in its request form, e.g. "name,-age".
func (t OrderByTuple) String() string {
	return strings.Join(t.Strings(), orderSeparator)
}
