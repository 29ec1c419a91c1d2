package tables

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ModelSchema describes the fields of a model. Tables use it to derive
// columns and to validate accessors against concrete fields; they never
// inspect the underlying schema system directly.
type ModelSchema interface {
	Name() string
	Fields() []SchemaField
}

// SourceProvider is implemented by model schemas that can supply a default
// query-capable source for tables constructed without explicit data.
type SourceProvider interface {
	DefaultSource() QuerySource
}

// SchemaField is a single field of a ModelSchema.
//
// Fields:
//   - Name: The accessor segment for the field.
//   - Type: The semantic type, e.g. "bool", "int", "string", "time", "json".
//   - VerboseName: The declared human readable name; empty when undeclared.
//   - Related: The target schema for relational fields, nil otherwise.
//   - Many: Whether a relational field holds more than one record.
type SchemaField struct {
	Name        string
	Type        string
	VerboseName string
	Related     ModelSchema
	Many        bool
}

func lookupSchemaField(model ModelSchema, name string) (SchemaField, bool) {
	for _, f := range model.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

// GormModel is a ModelSchema backed by a parsed gorm schema.
type GormModel struct {
	db     *gorm.DB
	schema *schema.Schema
}

// NewGormModel parses model with the naming strategy and cache of db.
func NewGormModel(db *gorm.DB, model any) (*GormModel, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, err
	}
	return &GormModel{db: db, schema: stmt.Schema}, nil
}

// Name returns the table name of the model.
func (m *GormModel) Name() string {
	return m.schema.Table
}

// Fields lists the model's columns followed by its relations, in struct
// declaration order. Column fields are named by their database column,
// relations by the snake_case form of their Go field name.
//
// The human readable name of a field is taken from its `verbose` struct tag.
func (m *GormModel) Fields() []SchemaField {
	fields := make([]SchemaField, 0, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		if f.DBName != "" {
			fields = append(fields, SchemaField{
				Name:        f.DBName,
				Type:        semanticType(f),
				VerboseName: f.Tag.Get("verbose"),
			})
			continue
		}

		rel, ok := m.schema.Relationships.Relations[f.Name]
		if !ok || rel.FieldSchema == nil {
			continue
		}
		fields = append(fields, SchemaField{
			Name:        namer.ColumnName("", f.Name),
			Type:        string(rel.Type),
			VerboseName: f.Tag.Get("verbose"),
			Related:     &GormModel{db: m.db, schema: rel.FieldSchema},
			Many:        rel.Type == schema.HasMany || rel.Type == schema.Many2Many,
		})
	}
	return fields
}

// DefaultSource returns a GormSource over the model's table, scanning into
// the model's own type.
func (m *GormModel) DefaultSource() QuerySource {
	model := reflect.New(m.schema.ModelType).Interface()
	return &GormSource{
		tx:      m.db.Model(model),
		newDest: sliceOf(m.schema.ModelType),
	}
}

func semanticType(f *schema.Field) string {
	if f.DataType != "" {
		return string(f.DataType)
	}
	return string(f.GORMDataType)
}

// columnForField derives a column for a schema field, choosing the kind from
// the field's semantic type. Headers are not copied: bound columns look the
// verbose name up through the table's model.
func columnForField(name string, field SchemaField) Column {
	col := NewColumn(name)

	switch {
	case field.Related != nil && field.Many:
		return col.WithKind(ManyToManyKind{})
	case field.Type == string(schema.Bool):
		return col.WithKind(BooleanKind{})
	case field.Type == string(schema.Time):
		return col.WithKind(DateTimeKind{})
	case field.Type == "json" || field.Type == "jsonb":
		return col.WithKind(JSONKind{})
	}
	return col
}
