package tables

import (
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type Profile struct {
	ID      int
	UserID  int
	Details string
}

type User struct {
	ID      int
	Name    string
	Profile []Profile `gorm:"foreignKey:UserID"`
}

func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { dbMock.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      dbMock,
		SkipInitializeWithVersion: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm DB: %v", err)
	}
	return db, mock
}

func TestGormSourceSlice(t *testing.T) {
	tests := []struct {
		name          string
		source        func(s *GormSource) QuerySource
		offset, limit int
		query         string
		args          []driver.Value
	}{
		{
			name:   "all_records",
			source: func(s *GormSource) QuerySource { return s },
			limit:  -1,
			query:  "SELECT * FROM `users`",
		},
		{
			name:   "limit",
			source: func(s *GormSource) QuerySource { return s },
			limit:  10,
			query:  "SELECT * FROM `users` LIMIT ?",
			args:   []driver.Value{10},
		},
		{
			name:   "limit_and_offset",
			source: func(s *GormSource) QuerySource { return s },
			offset: 10,
			limit:  10,
			query:  "SELECT * FROM `users` LIMIT ? OFFSET ?",
			args:   []driver.Value{10, 10},
		},
		{
			name:   "ordered",
			source: func(s *GormSource) QuerySource { return s.OrderBy("-age", "name") },
			limit:  -1,
			query:  "SELECT * FROM `users` ORDER BY `age` DESC,`name`",
		},
		{
			name:   "ordered_by_joined_column",
			source: func(s *GormSource) QuerySource { return s.OrderBy("profiles.details") },
			limit:  5,
			query:  "SELECT * FROM `users` ORDER BY `profiles`.`details` LIMIT ?",
			args:   []driver.Value{5},
		},
		{
			name: "filtered",
			source: func(s *GormSource) QuerySource {
				return s.Filters(func(query *gorm.DB) *gorm.DB {
					return query.Where("age > ?", 18)
				})
			},
			limit: -1,
			query: "SELECT * FROM `users` WHERE age > ?",
			args:  []driver.Value{18},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := openMockDB(t)
			mock.ExpectQuery(qm(tt.query)).WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
					AddRow(1, "John Doe", 25).
					AddRow(2, "Jane Smith", 30))

			source := tt.source(Query(db.Model(&User{})))
			records, err := source.Slice(tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("failed to execute query: %v", err)
			}
			if len(records) != 2 {
				t.Errorf("expected 2 records, got %d", len(records))
			}
			if _, ok := records[0].(map[string]any); !ok {
				t.Errorf("expected map records, got %T", records[0])
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestGormSourceOrderByReplacesOrdering(t *testing.T) {
	db, _ := openMockDB(t)
	base := Query(db.Model(&User{}))

	first := base.OrderBy("name", "-country.code").(*GormSource)
	second := first.OrderBy("-id").(*GormSource)

	if got := first.Ordering(); !reflect.DeepEqual(got, []string{"name", "-country.code"}) {
		t.Errorf("expected [name -country.code], got %v", got)
	}
	if got := second.Ordering(); !reflect.DeepEqual(got, []string{"-id"}) {
		t.Errorf("expected [-id], got %v", got)
	}
	if got := base.Ordering(); len(got) != 0 {
		t.Errorf("expected the base source to stay unordered, got %v", got)
	}
}

func TestGormSourceCount(t *testing.T) {
	tests := []struct {
		name          string
		filters       []func(*gorm.DB) *gorm.DB
		query         string
		args          []driver.Value
		expectedCount int
		expectedError error
	}{
		{
			name:          "plain",
			query:         "SELECT count(*) FROM `users`",
			expectedCount: 25,
		},
		{
			name: "filtered",
			filters: []func(*gorm.DB) *gorm.DB{
				func(query *gorm.DB) *gorm.DB { return query.Where("age > ?", 18) },
			},
			query:         "SELECT count(*) FROM `users` WHERE age > ?",
			args:          []driver.Value{18},
			expectedCount: 25,
		},
		{
			name: "grouped",
			filters: []func(*gorm.DB) *gorm.DB{
				func(query *gorm.DB) *gorm.DB { return query.Group("age") },
			},
			query:         "SELECT COUNT(*) AS count FROM (SELECT * FROM `users` GROUP BY `age`) subquery",
			expectedCount: 25,
		},
		{
			name:          "query_failure",
			query:         "SELECT count(*) FROM `users`",
			expectedError: gorm.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := openMockDB(t)
			if tt.expectedError != nil {
				mock.ExpectQuery(qm(tt.query)).WillReturnError(tt.expectedError)
			} else {
				mock.ExpectQuery(qm(tt.query)).WithArgs(tt.args...).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
			}

			count, err := Query(db.Model(&User{})).Filters(tt.filters...).Count()
			if err != tt.expectedError {
				t.Fatalf("expected error %v, got %v", tt.expectedError, err)
			}
			if count != tt.expectedCount {
				t.Errorf("expected count %d, got %d", tt.expectedCount, count)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestQueryOfPreloadsRelations(t *testing.T) {
	db, mock := openMockDB(t)
	mock.ExpectQuery(qm("SELECT * FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "ZihxS"))
	mock.ExpectQuery(qm("SELECT * FROM `profiles` WHERE `profiles`.`user_id` = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "details"}).AddRow(7, 1, "admin"))

	records, err := QueryOf[User](db).With("Profile").Slice(0, -1)
	if err != nil {
		t.Fatalf("failed to execute query: %v", err)
	}

	expected := []any{&User{ID: 1, Name: "ZihxS", Profile: []Profile{{ID: 7, UserID: 1, Details: "admin"}}}}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("expected %+v, got %+v", expected, records)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTableOverGormSource(t *testing.T) {
	db, mock := openMockDB(t)
	mock.ExpectQuery(qm("SELECT count(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `name` DESC,`id` LIMIT ? OFFSET ?")).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(3, "Zed").
			AddRow(4, "Amy"))

	table := newTestTable(t, Meta{
		Columns: []Column{
			NewColumn("id"),
			NewColumn("name").WithOrderBy("name", "-id"),
		},
	}, QueryOf[User](db), Options{OrderBy: "-name"})

	if err := table.Paginate(PageRequest{Page: "2", PerPage: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cellsOf(t, table.PaginatedRows(), "name"); !reflect.DeepEqual(got, []any{"Zed", "Amy"}) {
		t.Errorf("expected [Zed Amy], got %v", got)
	}
	if n, err := table.Rows().Len(); err != nil || n != 25 {
		t.Errorf("expected the cached count 25, got %d (%v)", n, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

type fakeSource struct {
	records    []any
	orderCalls [][]string
	countCalls int
}

func (s *fakeSource) OrderBy(fields ...string) QuerySource {
	s.orderCalls = append(s.orderCalls, fields)
	return s
}

func (s *fakeSource) Count() (int, error) {
	s.countCalls++
	return len(s.records), nil
}

func (s *fakeSource) Slice(offset, limit int) ([]any, error) {
	if offset > len(s.records) {
		offset = len(s.records)
	}
	end := len(s.records)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return s.records[offset:end], nil
}

func TestTableDelegatesOrderingToQuerySource(t *testing.T) {
	source := &fakeSource{records: []any{map[string]any{"age": 1}}}
	table := newTestTable(t, Meta{
		Columns: []Column{
			NewColumn("name").WithOrderBy("last_name", "first_name"),
			NewColumn("age"),
		},
	}, source, Options{OrderBy: "-name,age"})

	expected := [][]string{{"-last_name", "-first_name", "age"}}
	if !reflect.DeepEqual(source.orderCalls, expected) {
		t.Errorf("expected a single ordering call %v, got %v", expected, source.orderCalls)
	}

	table.SetOrderBy("")
	if len(source.orderCalls) != 1 {
		t.Errorf("did not expect an ordering call for an empty ordering, got %v", source.orderCalls)
	}

	for range 3 {
		if _, err := table.Rows().Len(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if source.countCalls != 1 {
		t.Errorf("expected the count to be cached, counted %d times", source.countCalls)
	}
}

func TestTableOrderHooks(t *testing.T) {
	hooked := &fakeSource{}

	tests := []struct {
		name          string
		handled       bool
		expectedCalls [][]string
		expectHooked  bool
	}{
		{name: "hook_orders_source", handled: true, expectHooked: true},
		{name: "hook_declines", handled: false, expectedCalls: [][]string{{"-age"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{}
			var descending bool
			table := newTestTable(t, Meta{
				Columns: []Column{NewColumn("age")},
				Order: map[string]OrderFunc{
					"age": func(src QuerySource, desc bool) (QuerySource, bool) {
						descending = desc
						return hooked, tt.handled
					},
				},
			}, source, Options{OrderBy: "-age"})

			if !descending {
				t.Error("expected the hook to receive the descending flag")
			}
			if !reflect.DeepEqual(source.orderCalls, tt.expectedCalls) {
				t.Errorf("expected ordering calls %v, got %v", tt.expectedCalls, source.orderCalls)
			}
			if got := table.Data().Source() == QuerySource(hooked); got != tt.expectHooked {
				t.Errorf("expected hooked source %v, got %v", tt.expectHooked, got)
			}
		})
	}
}
