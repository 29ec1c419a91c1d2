package tables

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// Mapping is implemented by records that expose keyed lookups without being
// a Go map.
type Mapping interface {
	Lookup(key string) (any, bool)
}

// Indexable is implemented by records that expose positional lookups without
// being a Go slice or array.
type Indexable interface {
	Len() int
	Index(i int) any
}

// DataAlterer is implemented by records that expose methods with side
// effects. An accessor never invokes a method for which AltersData reports
// true.
type DataAlterer interface {
	AltersData(method string) bool
}

// alterer is implemented by callables that refuse to be invoked during
// accessor resolution.
type alterer interface {
	AltersData() bool
}

type alteringFunc func() any

func (alteringFunc) AltersData() bool { return true }

// AltersData wraps fn so that an accessor reaching it treats the segment as
// unresolvable instead of calling it.
func AltersData(fn func() any) any {
	return alteringFunc(fn)
}

type nothing struct{}

func (nothing) String() string { return "" }

// Nothing is returned by Accessor.Resolve when the path cannot be resolved.
var Nothing any = nothing{}

// IsNothing reports whether v is the Nothing sentinel.
func IsNothing(v any) bool {
	_, ok := v.(nothing)
	return ok
}

// namer converts Go member names to their snake_case form, so that the
// accessor "first_name" reaches the struct field FirstName the same way gorm
// names its columns.
var namer = schema.NamingStrategy{}

// Accessor is an immutable dotted path used to extract a value from a record.
//
// Every segment is looked up on the current value by trying, in order, a
// mapping lookup, a member lookup (struct field or method, by Go name or by
// its snake_case column name) and, for integer segments, a positional lookup.
// When the value found is a zero-argument func it is called and its result
// becomes the current value.
type Accessor struct {
	path     string
	segments []string
}

// NewAccessor splits path on the accessor separator.
func NewAccessor(path string) Accessor {
	a := Accessor{path: path}
	if path != "" {
		a.segments = strings.Split(path, accessorSeparator)
	}
	return a
}

// String returns the dotted path.
func (a Accessor) String() string {
	return a.path
}

// Segments returns a copy of the path segments.
func (a Accessor) Segments() []string {
	return append([]string(nil), a.segments...)
}

// Resolve returns the value at the accessor path, or Nothing if any segment
// cannot be resolved. It never panics.
func (a Accessor) Resolve(record any) any {
	return a.ResolveDefault(record, Nothing)
}

// ResolveDefault returns the value at the accessor path, or def if any
// segment cannot be resolved.
func (a Accessor) ResolveDefault(record any, def any) any {
	value, err := a.ResolveStrict(record)
	if err != nil {
		return def
	}
	return value
}

// ResolveStrict returns the value at the accessor path. The returned error is
// a *ResolveError naming the failing segment.
func (a Accessor) ResolveStrict(record any) (any, error) {
	current := record
	for _, segment := range a.segments {
		next, err := resolveSegment(current, segment)
		if err != nil {
			return nil, &ResolveError{Path: a.path, Segment: segment, Err: err}
		}
		current = next
	}
	return current, nil
}

// GetField walks the accessor against a model schema instead of a record and
// returns the field the path ends on. Every segment but the last must name a
// relational field.
func (a Accessor) GetField(model ModelSchema) (SchemaField, error) {
	if len(a.segments) == 0 {
		return SchemaField{}, &ResolveError{Path: a.path, Err: ErrNotConcreteField}
	}

	var field SchemaField
	current := model
	for _, segment := range a.segments {
		if current == nil {
			return SchemaField{}, &ResolveError{Path: a.path, Segment: segment, Err: ErrNotConcreteField}
		}
		f, ok := lookupSchemaField(current, segment)
		if !ok {
			return SchemaField{}, &ResolveError{Path: a.path, Segment: segment, Err: ErrNotConcreteField}
		}
		field = f
		current = f.Related
	}
	return field, nil
}

func resolveSegment(current any, segment string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: panic: %v", ErrMissingSegment, r)
		}
	}()

	if isNil(current) || IsNothing(current) {
		return nil, ErrMissingSegment
	}

	value, ok := lookupMapping(current, segment)
	method := ""
	if !ok {
		value, method, ok = lookupMember(current, segment)
	}
	if !ok {
		value, ok = lookupIndex(current, segment)
	}
	if !ok {
		return nil, ErrMissingSegment
	}

	if method != "" {
		if da, ok := current.(DataAlterer); ok && da.AltersData(method) {
			return nil, ErrAltersData
		}
	}
	return invoke(value)
}

// invoke calls value when it is a zero-argument func returning a single
// value, optionally followed by an error. Any other value is returned as is.
func invoke(value any) (any, error) {
	if a, ok := value.(alterer); ok && a.AltersData() {
		return nil, ErrAltersData
	}
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return value, nil
	}
	t := rv.Type()
	if t.NumIn() != 0 {
		return value, nil
	}

	switch t.NumOut() {
	case 1:
		return rv.Call(nil)[0].Interface(), nil
	case 2:
		if !t.Out(1).Implements(errorType) {
			return value, nil
		}
		out := rv.Call(nil)
		if !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
	return value, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func lookupMapping(current any, segment string) (any, bool) {
	switch m := current.(type) {
	case Mapping:
		return m.Lookup(segment)
	case map[string]any:
		v, ok := m[segment]
		return v, ok
	}

	rv := reflect.Indirect(reflect.ValueOf(current))
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func lookupMember(current any, segment string) (any, string, bool) {
	rv := reflect.ValueOf(current)

	ev := rv
	for ev.Kind() == reflect.Pointer || ev.Kind() == reflect.Interface {
		if ev.IsNil() {
			return nil, "", false
		}
		ev = ev.Elem()
	}
	if ev.Kind() == reflect.Struct {
		if index, ok := membersOf(ev.Type()).fields[segment]; ok {
			f, err := ev.FieldByIndexErr(index)
			if err != nil {
				return nil, "", false
			}
			return f.Interface(), "", true
		}
	}

	if name, ok := membersOf(rv.Type()).methods[segment]; ok {
		return rv.MethodByName(name).Interface(), name, true
	}
	return nil, "", false
}

func lookupIndex(current any, segment string) (any, bool) {
	i, err := strconv.Atoi(segment)
	if err != nil {
		return nil, false
	}

	if ix, ok := current.(Indexable); ok {
		n := ix.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, false
		}
		return ix.Index(i), true
	}

	rv := reflect.Indirect(reflect.ValueOf(current))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Map:
		key := reflect.ValueOf(i)
		if !key.CanConvert(rv.Type().Key()) {
			return nil, false
		}
		switch rv.Type().Key().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return nil, false
		}
		v := rv.MapIndex(key.Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}

// memberIndex maps segment names to exported fields and methods of a type.
type memberIndex struct {
	fields  map[string][]int
	methods map[string]string
}

var memberCache sync.Map // reflect.Type -> *memberIndex

func membersOf(t reflect.Type) *memberIndex {
	if cached, ok := memberCache.Load(t); ok {
		return cached.(*memberIndex)
	}

	idx := &memberIndex{
		fields:  make(map[string][]int),
		methods: make(map[string]string),
	}
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			idx.fields[f.Name] = f.Index
		}
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			if _, taken := idx.fields[namer.ColumnName("", f.Name)]; !taken {
				idx.fields[namer.ColumnName("", f.Name)] = f.Index
			}
		}
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		idx.methods[m.Name] = m.Name
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		if _, taken := idx.methods[namer.ColumnName("", m.Name)]; !taken {
			idx.methods[namer.ColumnName("", m.Name)] = m.Name
		}
	}

	actual, _ := memberCache.LoadOrStore(t, idx)
	return actual.(*memberIndex)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
