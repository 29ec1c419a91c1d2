package tables

import (
	"reflect"
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuerySource is a data source that delegates ordering, counting and slicing
// to a backing store. Tables detect it by type assertion; anything else they
// are given is treated as an in-memory sequence of records.
type QuerySource interface {
	// OrderBy returns a copy of the source ordered by the given accessors,
	// each optionally prefixed with "-" for descending order. The ordering
	// replaces any previous one.
	OrderBy(fields ...string) QuerySource
	// Count returns the number of records in the source.
	Count() (int, error)
	// Slice returns at most limit records starting at offset. A negative
	// limit returns every record after offset.
	Slice(offset, limit int) ([]any, error)
}

// GormSource is a QuerySource backed by a gorm query.
//
// Fields:
//   - tx: The base query, usually scoped to a model or table.
//   - filters: Scopes applied to every count and fetch.
//   - relations: Associations preloaded when fetching records.
//   - orders: The ORDER BY columns derived from the last OrderBy call.
//   - newDest: Allocates the slice records are scanned into. When nil,
//     records are scanned into maps keyed by column name.
type GormSource struct {
	tx        *gorm.DB
	filters   []func(*gorm.DB) *gorm.DB
	relations []string
	orders    []clause.OrderByColumn
	newDest   func() any
}

// Query returns a GormSource scanning records of tx into map[string]any.
func Query(tx *gorm.DB) *GormSource {
	return &GormSource{tx: tx}
}

// QueryOf returns a GormSource scanning records of tx into *T. The query is
// scoped to the model T.
func QueryOf[T any](tx *gorm.DB) *GormSource {
	return &GormSource{
		tx:      tx.Model(new(T)),
		newDest: func() any { return &[]*T{} },
	}
}

// sliceOf returns an allocator of *[]*T for the struct type t.
func sliceOf(t reflect.Type) func() any {
	return func() any {
		return reflect.New(reflect.SliceOf(reflect.PointerTo(t))).Interface()
	}
}

func (s *GormSource) clone() *GormSource {
	c := *s
	c.filters = slices.Clone(s.filters)
	c.relations = slices.Clone(s.relations)
	c.orders = slices.Clone(s.orders)
	return &c
}

// Filters returns a copy of the source with the given scopes applied to
// every count and fetch.
func (s *GormSource) Filters(filters ...func(*gorm.DB) *gorm.DB) *GormSource {
	c := s.clone()
	c.filters = append(c.filters, filters...)
	return c
}

// With returns a copy of the source preloading the given associations.
// Preloading is skipped for queries that already join their relations.
func (s *GormSource) With(relations ...string) *GormSource {
	c := s.clone()
	c.relations = append(c.relations, relations...)
	return c
}

// OrderBy returns a copy of the source ordered by fields. A dotted field
// such as "country.name" orders by the column "name" of the table or join
// alias "country".
func (s *GormSource) OrderBy(fields ...string) QuerySource {
	c := s.clone()
	c.orders = c.orders[:0]
	for _, field := range fields {
		o := OrderBy(field)
		if o.Bare() == "" {
			continue
		}
		segments := o.Accessor().Segments()
		column := clause.Column{Name: segments[len(segments)-1]}
		if len(segments) > 1 {
			column.Table = strings.Join(segments[:len(segments)-1], accessorSeparator)
		}
		c.orders = append(c.orders, clause.OrderByColumn{Column: column, Desc: o.IsDescending()})
	}
	return c
}

// Ordering returns the fields the source is currently ordered by.
func (s *GormSource) Ordering() []string {
	fields := make([]string, len(s.orders))
	for i, o := range s.orders {
		name := o.Column.Name
		if o.Column.Table != "" {
			name = o.Column.Table + accessorSeparator + name
		}
		if o.Desc {
			name = orderDescPrefix + name
		}
		fields[i] = name
	}
	return fields
}

// hasJoinClause returns true if the base query joins other tables.
func (s *GormSource) hasJoinClause() bool {
	return len(s.tx.Statement.Joins) > 0
}

// hasGroupByClause returns true if the query has a GROUP BY clause.
func hasGroupByClause(db *gorm.DB) bool {
	_, exists := db.Statement.Clauses[queryGroupBy]
	return exists
}

// buildBaseQuery returns a new session of the base query with every filter
// applied.
func (s *GormSource) buildBaseQuery() *gorm.DB {
	query := s.tx.Session(&gorm.Session{})
	for _, filter := range s.filters {
		query = filter(query)
	}
	return query
}

// Count returns the number of records matched by the filtered query. Grouped
// queries are counted through a subquery so that each group counts once.
func (s *GormSource) Count() (int, error) {
	query := s.buildBaseQuery()

	var count int64
	if hasGroupByClause(query) {
		err := s.tx.Session(&gorm.Session{NewDB: true}).
			Table("(?) subquery", query).
			Select(queryCount).
			Scan(&count).Error
		return int(count), err
	}

	err := query.Count(&count).Error
	return int(count), err
}

// Slice executes the ordered query for a window of records. Relations are
// preloaded unless the query joins them already.
func (s *GormSource) Slice(offset, limit int) ([]any, error) {
	query := s.buildBaseQuery()
	if !s.hasJoinClause() {
		for _, relation := range s.relations {
			query = query.Preload(relation)
		}
	}
	for _, order := range s.orders {
		query = query.Order(order)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit >= 0 {
		query = query.Limit(limit)
	}
	return s.executeQuery(query)
}

// executeQuery runs query and returns every scanned record.
func (s *GormSource) executeQuery(query *gorm.DB) ([]any, error) {
	if s.newDest == nil {
		var rawData []map[string]any
		if err := query.Find(&rawData).Error; err != nil {
			return nil, err
		}
		records, _ := toRecords(rawData)
		return records, nil
	}

	dest := s.newDest()
	if err := query.Find(dest).Error; err != nil {
		return nil, err
	}
	records, _ := toRecords(dest)
	return records, nil
}
