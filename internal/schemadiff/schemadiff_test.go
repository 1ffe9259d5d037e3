package schemadiff_test

import (
	"reflect"
	"testing"

	"github.com/relaydata/corebridge/internal/schemadiff"
)

func TestScenario6CreateUsersTable(t *testing.T) {
	desired := []schemadiff.TableDescriptor{
		{
			Name: "users",
			Columns: []schemadiff.Column{
				{Name: "id", Type: schemadiff.ColumnType{Kind: schemadiff.Integer}, PrimaryKey: true},
				{Name: "email", Type: schemadiff.ColumnType{Kind: schemadiff.Text}, Unique: true},
			},
		},
	}

	diff, err := schemadiff.Diff(nil, desired)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	up, err := diff.UpSQL()
	if err != nil {
		t.Fatalf("UpSQL() error = %v", err)
	}
	wantUp := "CREATE TABLE \"users\" (\n    \"id\" INTEGER PRIMARY KEY,\n    \"email\" TEXT NOT NULL UNIQUE\n);"
	if len(up) != 1 || up[0] != wantUp {
		t.Fatalf("UpSQL() = %#v, want [%q]", up, wantUp)
	}

	down, err := diff.DownSQL()
	if err != nil {
		t.Fatalf("DownSQL() error = %v", err)
	}
	wantDown := `DROP TABLE IF EXISTS "users" CASCADE;`
	if len(down) != 1 || down[0] != wantDown {
		t.Fatalf("DownSQL() = %#v, want [%q]", down, wantDown)
	}
}

func TestDroppedTableOmittedFromCurrent(t *testing.T) {
	current := []schemadiff.TableDescriptor{{Name: "legacy"}}
	diff, err := schemadiff.Diff(current, nil)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	up, err := diff.UpSQL()
	if err != nil {
		t.Fatalf("UpSQL() error = %v", err)
	}
	want := `DROP TABLE IF EXISTS "legacy" CASCADE;`
	if len(up) != 1 || up[0] != want {
		t.Fatalf("UpSQL() = %#v, want [%q]", up, want)
	}

	down, err := diff.DownSQL()
	if err != nil {
		t.Fatalf("DownSQL() error = %v", err)
	}
	wantDown := `-- Cannot auto-generate: recreate table "legacy"`
	if len(down) != 1 || down[0] != wantDown {
		t.Fatalf("DownSQL() = %#v, want [%q]", down, wantDown)
	}
}

func TestColumnChangePriorityTypeOverNullability(t *testing.T) {
	current := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "c", Type: schemadiff.ColumnType{Kind: schemadiff.Integer}, Nullable: true},
		},
	}}
	desired := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "c", Type: schemadiff.ColumnType{Kind: schemadiff.BigInt}, Nullable: false},
		},
	}}

	diff, err := schemadiff.Diff(current, desired)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(diff.Changes) != 1 || diff.Changes[0].Kind != schemadiff.Altered {
		t.Fatalf("Changes = %#v, want one Altered", diff.Changes)
	}
	cc := diff.Changes[0].ColumnChanges
	if len(cc) != 1 || cc[0].Kind != schemadiff.TypeChanged {
		t.Fatalf("ColumnChanges = %#v, want one TypeChanged", cc)
	}
}

func TestColumnAddedAndRemovedOrdering(t *testing.T) {
	current := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "old_col", Type: schemadiff.ColumnType{Kind: schemadiff.Text}},
		},
	}}
	desired := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "new_col", Type: schemadiff.ColumnType{Kind: schemadiff.Text}},
		},
	}}

	diff, err := schemadiff.Diff(current, desired)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	cc := diff.Changes[0].ColumnChanges
	if len(cc) != 2 {
		t.Fatalf("ColumnChanges = %#v, want 2 entries", cc)
	}
	if cc[0].Kind != schemadiff.Removed || cc[0].Old.Name != "old_col" {
		t.Fatalf("ColumnChanges[0] = %#v, want Removed old_col first", cc[0])
	}
	if cc[1].Kind != schemadiff.Added || cc[1].New.Name != "new_col" {
		t.Fatalf("ColumnChanges[1] = %#v, want Added new_col second", cc[1])
	}
}

func TestUpDownRoundTripSymmetry(t *testing.T) {
	current := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "a", Type: schemadiff.ColumnType{Kind: schemadiff.Integer}},
		},
		Indexes: []schemadiff.Index{{Name: "t_a_idx", Columns: []string{"a"}}},
	}}
	desired := []schemadiff.TableDescriptor{{
		Name: "t",
		Columns: []schemadiff.Column{
			{Name: "a", Type: schemadiff.ColumnType{Kind: schemadiff.Integer}},
			{Name: "b", Type: schemadiff.ColumnType{Kind: schemadiff.Text}},
		},
	}}

	diff, err := schemadiff.Diff(current, desired)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	up, err := diff.UpSQL()
	if err != nil {
		t.Fatalf("UpSQL() error = %v", err)
	}
	down, err := diff.DownSQL()
	if err != nil {
		t.Fatalf("DownSQL() error = %v", err)
	}
	if len(up) != 2 || len(down) != 2 {
		t.Fatalf("up = %#v, down = %#v, want 2 statements each", up, down)
	}
	if up[0] != `ALTER TABLE "t" ADD COLUMN "b" TEXT NOT NULL;` {
		t.Fatalf("up[0] = %q", up[0])
	}
	if up[1] != `DROP INDEX IF EXISTS "t_a_idx";` {
		t.Fatalf("up[1] = %q", up[1])
	}
	if down[0] != `CREATE INDEX "t_a_idx" ON "t" ("a");` {
		t.Fatalf("down[0] = %q", down[0])
	}
	if down[1] != `ALTER TABLE "t" DROP COLUMN "b";` {
		t.Fatalf("down[1] = %q", down[1])
	}
}

func TestColumnTypeSQLRendering(t *testing.T) {
	cases := []struct {
		typ  schemadiff.ColumnType
		want string
	}{
		{schemadiff.ColumnType{Kind: schemadiff.VarChar, Length: 32}, "VARCHAR(32)"},
		{schemadiff.ColumnType{Kind: schemadiff.Numeric, Precision: 10, Scale: 2}, "NUMERIC(10,2)"},
		{schemadiff.ColumnType{Kind: schemadiff.ArrayOf, Elem: &schemadiff.ColumnType{Kind: schemadiff.Integer}}, "INTEGER[]"},
		{schemadiff.ColumnType{Kind: schemadiff.Custom, Raw: "CITEXT"}, "CITEXT"},
	}
	for _, c := range cases {
		if got := c.typ.SQL(); got != c.want {
			t.Errorf("SQL() = %q, want %q", got, c.want)
		}
	}
}

func TestColumnTypeEqual(t *testing.T) {
	a := schemadiff.ColumnType{Kind: schemadiff.ArrayOf, Elem: &schemadiff.ColumnType{Kind: schemadiff.Integer}}
	b := schemadiff.ColumnType{Kind: schemadiff.ArrayOf, Elem: &schemadiff.ColumnType{Kind: schemadiff.Integer}}
	c := schemadiff.ColumnType{Kind: schemadiff.ArrayOf, Elem: &schemadiff.ColumnType{Kind: schemadiff.BigInt}}
	if !a.Equal(b) {
		t.Fatal("Equal(b) = false, want true")
	}
	if a.Equal(c) {
		t.Fatal("Equal(c) = true, want false")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected deep-equal fixtures to stay deep-equal")
	}
}

func TestInvalidIdentifierFailsDiff(t *testing.T) {
	desired := []schemadiff.TableDescriptor{{Name: "select"}}
	if _, err := schemadiff.Diff(nil, desired); err == nil {
		t.Fatal("Diff() error = nil, want IdentifierError for reserved word table name")
	}
}
