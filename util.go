package tables

import (
	"fmt"
	"iter"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// titleize turns a column name such as "first_name" into "First Name".
// Words that already contain an upper case letter are kept as they are.
func titleize(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		if strings.IndexFunc(w, unicode.IsUpper) >= 0 {
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// qm takes a string as input and returns a string with any special
// characters properly escaped for use in a regular expression. It is used
// to build SQL expectations in tests.
func qm(str string) string {
	return regexp.QuoteMeta(str)
}

// toRecords materializes an in-memory data source into a slice of records.
// It accepts any slice or array, an Indexable and an iter.Seq[any]; the
// second result is false for anything else.
func toRecords(data any) ([]any, bool) {
	switch v := data.(type) {
	case []any:
		return append([]any(nil), v...), true
	case []map[string]any:
		records := make([]any, len(v))
		for i, row := range v {
			records[i] = row
		}
		return records, true
	case Indexable:
		records := make([]any, v.Len())
		for i := range records {
			records[i] = v.Index(i)
		}
		return records, true
	case iter.Seq[any]:
		return collect(v), true
	case func(func(any) bool):
		return collect(v), true
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Slice {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	records := make([]any, rv.Len())
	for i := range records {
		records[i] = rv.Index(i).Interface()
	}
	return records, true
}

func collect(seq iter.Seq[any]) []any {
	var records []any
	for record := range seq {
		records = append(records, record)
	}
	return records
}

type numberKind int

const (
	notNumber numberKind = iota
	signedNumber
	unsignedNumber
	floatNumber
)

func numberOf(rv reflect.Value) numberKind {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedNumber
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedNumber
	case reflect.Float32, reflect.Float64:
		return floatNumber
	}
	return notNumber
}

func sign[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareValues orders two values of compatible types: numbers of any width,
// strings, booleans and time.Time. The second result is false when the pair
// has no natural order.
func compareValues(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	if isNil(a) || isNil(b) {
		return 0, false
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	na, nb := numberOf(ra), numberOf(rb)
	switch {
	case na == signedNumber && nb == signedNumber:
		return sign(ra.Int(), rb.Int()), true
	case na == unsignedNumber && nb == unsignedNumber:
		return sign(ra.Uint(), rb.Uint()), true
	case na != notNumber && nb != notNumber:
		return sign(toFloat(ra), toFloat(rb)), true
	}

	if ra.Kind() == reflect.String && rb.Kind() == reflect.String {
		return sign(ra.String(), rb.String()), true
	}
	if ra.Kind() == reflect.Bool && rb.Kind() == reflect.Bool {
		x, y := ra.Bool(), rb.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(rv reflect.Value) float64 {
	switch numberOf(rv) {
	case signedNumber:
		return float64(rv.Int())
	case unsignedNumber:
		return float64(rv.Uint())
	}
	return rv.Float()
}

// valuesEqual compares two values without panicking on uncomparable types.
func valuesEqual(a, b any) bool {
	if IsNothing(a) || IsNothing(b) {
		return IsNothing(a) && IsNothing(b)
	}
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// truthy mirrors the presence test used when two sort keys have no natural
// order: zero numbers, empty strings and collections, nil and Nothing are
// false, everything else is true.
func truthy(v any) bool {
	if IsNothing(v) || isNil(v) {
		return false
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Bool:
		return rv.Bool()
	case numberOf(rv) != notNumber:
		return !rv.IsZero()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	}
	return true
}

// compareSortKeys orders two resolved sort keys. Values without a natural
// order are grouped by presence first, then by type name and finally by
// their string form, so mixed-type columns never fail to sort.
func compareSortKeys(a, b any) int {
	if valuesEqual(a, b) {
		return 0
	}
	if c, ok := compareValues(a, b); ok {
		return c
	}
	if ta, tb := truthy(a), truthy(b); ta != tb {
		if !ta {
			return -1
		}
		return 1
	}
	if c := sign(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	return sign(fmt.Sprint(a), fmt.Sprint(b))
}
