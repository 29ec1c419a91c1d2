package tables

import (
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

type Team struct {
	ID   int
	Name string
}

type Tag struct {
	ID    int
	Label string
}

type Member struct {
	ID       int
	Name     string `verbose:"full name"`
	Active   bool
	JoinedAt time.Time
	Tags     []Tag `gorm:"many2many:member_tags"`
	TeamID   int
	Team     Team
}

func TestGormModelFields(t *testing.T) {
	db, _ := openMockDB(t)
	model, err := NewGormModel(db, &Member{})
	if err != nil {
		t.Fatalf("failed to parse model: %v", err)
	}

	if got := model.Name(); got != "members" {
		t.Errorf("expected table name %q, got %q", "members", got)
	}

	type field struct {
		Name, Type, VerboseName string
		Related, Many           bool
	}
	var got []field
	for _, f := range model.Fields() {
		got = append(got, field{f.Name, f.Type, f.VerboseName, f.Related != nil, f.Many})
	}
	expected := []field{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "string", VerboseName: "full name"},
		{Name: "active", Type: "bool"},
		{Name: "joined_at", Type: "time"},
		{Name: "tags", Type: "many_to_many", Related: true, Many: true},
		{Name: "team_id", Type: "int"},
		{Name: "team", Type: "belongs_to", Related: true},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected fields %+v, got %+v", expected, got)
	}
}

func TestGormModelDrivesTable(t *testing.T) {
	db, mock := openMockDB(t)
	model, err := NewGormModel(db, &Member{})
	if err != nil {
		t.Fatalf("failed to parse model: %v", err)
	}

	table := newTestTable(t, Meta{
		Model:   model,
		Exclude: []string{"id", "team_id"},
		Columns: []Column{NewColumn("team_name").WithAccessor("team.name")},
	}, nil, Options{})

	expected := []string{"team_name", "name", "active", "joined_at", "team"}
	if got := table.Columns().Names(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected columns %v, got %v", expected, got)
	}

	headers := map[string]string{}
	for _, col := range table.Columns().All() {
		headers[col.Name()] = col.Header()
	}
	if headers["name"] != "full name" || headers["joined_at"] != "Joined At" {
		t.Errorf("unexpected headers %v", headers)
	}

	if !table.Data().IsQuery() {
		t.Fatal("expected the model to supply a query source")
	}
	mock.ExpectQuery(qm("SELECT * FROM `members`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(1, "Ada", true))

	records, err := table.Data().Records()
	if err != nil {
		t.Fatalf("failed to fetch records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if member, ok := records[0].(*Member); !ok || member.Name != "Ada" || !member.Active {
		t.Errorf("expected a scanned *Member, got %#v", records[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
