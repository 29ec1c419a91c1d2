package tables

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Kind is the semantic type of a column. It controls how a non-empty value
// is rendered when no render function takes precedence.
type Kind interface {
	Render(cell Cell) any
}

// ValueKind is implemented by kinds whose export value differs from their
// rendered value.
type ValueKind interface {
	Value(cell Cell) any
}

// EmptyValuesKind is implemented by kinds that treat a different set of
// values as "no data" than the default nil and "".
type EmptyValuesKind interface {
	EmptyValues() []any
}

// valuelessKind is implemented by kinds able to render a cell whose accessor
// resolved to nothing.
type valuelessKind interface {
	rendersWithoutValue() bool
}

// TextKind renders the value unchanged.
type TextKind struct{}

func (TextKind) Render(cell Cell) any {
	return cell.Value
}

// BooleanKind renders the truthiness of a value as one of two texts.
//
// Fields:
//   - Yes: The text for true values; defaults to "✔".
//   - No: The text for false values; defaults to "✘".
type BooleanKind struct {
	Yes string
	No  string
}

func (k BooleanKind) Render(cell Cell) any {
	if truthy(cell.Value) {
		if k.Yes == "" {
			return "✔"
		}
		return k.Yes
	}
	if k.No == "" {
		return "✘"
	}
	return k.No
}

// Value exports the truthiness as "true" or "false".
func (BooleanKind) Value(cell Cell) any {
	return strconv.FormatBool(truthy(cell.Value))
}

// EmptyValues keeps false values from being replaced by the default; only a
// missing value is.
func (BooleanKind) EmptyValues() []any {
	return []any{nil}
}

// DateTimeKind formats time values with Layout, in Location when set.
// Values that are not times are rendered unchanged.
type DateTimeKind struct {
	Layout   string
	Location *time.Location
}

func (k DateTimeKind) Render(cell Cell) any {
	return formatTime(cell.Value, k.Layout, time.DateTime, k.Location)
}

// DateKind is DateTimeKind with a date-only default layout.
type DateKind struct {
	Layout   string
	Location *time.Location
}

func (k DateKind) Render(cell Cell) any {
	return formatTime(cell.Value, k.Layout, time.DateOnly, k.Location)
}

func formatTime(value any, layout, def string, loc *time.Location) any {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return value
		}
		t = *v
	default:
		return value
	}
	if layout == "" {
		layout = def
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}

// Link is the rendered form of the link kinds. Its String method produces
// an escaped anchor element.
type Link struct {
	Href  string
	Text  any
	Attrs Attrs
}

func (l Link) String() string {
	attrs := MergeAttrs(l.Attrs, Attrs{"href": l.Href})
	return fmt.Sprintf("<a %s>%s</a>", attrs, template.HTMLEscapeString(fmt.Sprint(l.Text)))
}

// AbsoluteURLer is implemented by records that know their own URL.
type AbsoluteURLer interface {
	AbsoluteURL() string
}

// LinkKind renders the value as a link.
//
// The target is URL when set, otherwise the AbsoluteURL of the record. The
// link text is Text when set (a static value or a func(Cell) any), otherwise
// the value itself. A LinkKind with a static Text renders a link even when
// its accessor resolves to nothing.
type LinkKind struct {
	URL   func(cell Cell) string
	Text  any
	Attrs Attrs
}

func (k LinkKind) Render(cell Cell) any {
	text := k.text(cell)
	href := k.href(cell)
	if href == "" {
		return text
	}
	return Link{Href: href, Text: text, Attrs: k.Attrs.Computed(cell)}
}

// Value exports the link text.
func (k LinkKind) Value(cell Cell) any {
	return k.text(cell)
}

func (k LinkKind) rendersWithoutValue() bool {
	_, static := k.Text.(string)
	return static
}

func (k LinkKind) text(cell Cell) any {
	switch t := k.Text.(type) {
	case nil:
		return cell.Value
	case func(Cell) any:
		return t(cell)
	}
	return k.Text
}

func (k LinkKind) href(cell Cell) string {
	if k.URL != nil {
		return k.URL(cell)
	}
	if r, ok := cell.Record.(AbsoluteURLer); ok {
		return r.AbsoluteURL()
	}
	return ""
}

// URLKind renders a value holding a URL as a link to itself.
type URLKind struct {
	Attrs Attrs
}

func (k URLKind) Render(cell Cell) any {
	href := fmt.Sprint(cell.Value)
	return Link{Href: href, Text: href, Attrs: k.Attrs.Computed(cell)}
}

func (URLKind) Value(cell Cell) any {
	return fmt.Sprint(cell.Value)
}

// EmailKind renders a value holding an email address as a mailto link.
type EmailKind struct {
	Attrs Attrs
}

func (k EmailKind) Render(cell Cell) any {
	email := fmt.Sprint(cell.Value)
	return Link{Href: "mailto:" + email, Text: email, Attrs: k.Attrs.Computed(cell)}
}

func (EmailKind) Value(cell Cell) any {
	return fmt.Sprint(cell.Value)
}

// FileRef is implemented by values referring to a stored file.
type FileRef interface {
	Name() string
	URL() string
}

// FileKind renders a file reference as a link showing its base name. Plain
// string values are treated as paths relative to BaseURL.
type FileKind struct {
	BaseURL string
	Attrs   Attrs
}

func (k FileKind) Render(cell Cell) any {
	name, href := k.file(cell.Value)
	if href == "" {
		return path.Base(name)
	}
	return Link{Href: href, Text: path.Base(name), Attrs: k.Attrs.Computed(cell)}
}

// Value exports the stored name of the file.
func (k FileKind) Value(cell Cell) any {
	name, _ := k.file(cell.Value)
	return name
}

func (k FileKind) file(value any) (name, href string) {
	if f, ok := value.(FileRef); ok {
		return f.Name(), f.URL()
	}
	name = fmt.Sprint(value)
	if k.BaseURL == "" {
		return name, ""
	}
	href, err := url.JoinPath(k.BaseURL, name)
	if err != nil {
		return name, ""
	}
	return name, href
}

// ManyToManyKind renders a collection of related records as a separated
// list.
//
// Fields:
//   - Separator: The text between items; defaults to ", ".
//   - Filter: Selects the items to show; all items when nil.
//   - Transform: Renders a single item; fmt.Sprint when nil.
type ManyToManyKind struct {
	Separator string
	Filter    func(item any) bool
	Transform func(item any) string
}

func (k ManyToManyKind) Render(cell Cell) any {
	return strings.Join(k.items(cell.Value), k.separator())
}

func (k ManyToManyKind) Value(cell Cell) any {
	return strings.Join(k.items(cell.Value), k.separator())
}

func (k ManyToManyKind) separator() string {
	if k.Separator == "" {
		return ", "
	}
	return k.Separator
}

func (k ManyToManyKind) items(value any) []string {
	records, ok := toRecords(value)
	if !ok {
		records = []any{value}
	}
	items := make([]string, 0, len(records))
	for _, r := range records {
		if k.Filter != nil && !k.Filter(r) {
			continue
		}
		if k.Transform != nil {
			items = append(items, k.Transform(r))
			continue
		}
		items = append(items, fmt.Sprint(r))
	}
	return items
}

// JSONKind renders the value as indented JSON. Strings holding JSON are
// decoded first so they are reformatted rather than quoted.
type JSONKind struct {
	Indent string
}

func (k JSONKind) Render(cell Cell) any {
	indent := k.Indent
	if indent == "" {
		indent = "  "
	}
	value := cell.Value
	switch v := value.(type) {
	case string:
		value = decodeJSON([]byte(v), v)
	case []byte:
		value = decodeJSON(v, string(v))
	case json.RawMessage:
		value = decodeJSON(v, string(v))
	}
	out, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return fmt.Sprint(cell.Value)
	}
	return string(out)
}

func decodeJSON(raw []byte, fallback any) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fallback
	}
	return decoded
}

// TemplateKind renders the cell through a text/template. The template is
// executed with the Cell as its data, so {{.Value}} and {{.Record}} are
// available.
type TemplateKind struct {
	Template *template.Template
}

func (k TemplateKind) Render(cell Cell) any {
	if k.Template == nil {
		return cell.Value
	}
	var b strings.Builder
	if err := k.Template.Execute(&b, cell); err != nil {
		if cell.Table != nil {
			cell.Table.logger.Warn().Err(err).Str("template", k.Template.Name()).Msg("template column failed to render")
		}
		return cell.Value
	}
	return b.String()
}

func (k TemplateKind) rendersWithoutValue() bool {
	return k.Template != nil
}
