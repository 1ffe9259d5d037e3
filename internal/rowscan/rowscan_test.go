package rowscan

import (
	"testing"

	"github.com/relaydata/corebridge/internal/sqlcompose"
	"github.com/relaydata/corebridge/internal/value"
)

func TestRenderPlanKnownColumnSubset(t *testing.T) {
	relations := []RelationSpec{
		{Name: "posts", ForeignTable: "posts", LocalColumn: "id", RemoteColumn: "user_id", Kind: sqlcompose.LeftJoin, Columns: []string{"id", "title"}},
	}
	sql, err := renderPlan("users", []string{"id", "name"}, relations)
	if err != nil {
		t.Fatalf("renderPlan() error = %v", err)
	}
	want := `SELECT "users"."id" AS "_main_id", "users"."name" AS "_main_name", "posts"."id" AS "posts__id", "posts"."title" AS "posts__title" FROM "users" LEFT JOIN "posts" AS "posts" ON "users"."id" = "posts"."user_id" WHERE "users"."id" = $1`
	if sql != want {
		t.Errorf("renderPlan() =\n%q, want\n%q", sql, want)
	}
}

func TestRenderPlanUnknownColumnSetUsesSentinelPair(t *testing.T) {
	relations := []RelationSpec{
		{Name: "profile", ForeignTable: "profiles", LocalColumn: "id", RemoteColumn: "user_id", Kind: sqlcompose.LeftJoin},
	}
	sql, err := renderPlan("users", []string{"id"}, relations)
	if err != nil {
		t.Fatalf("renderPlan() error = %v", err)
	}
	want := `SELECT "users"."id" AS "_main_id", "profile"."user_id" AS "profile__exists", row_to_json("profile") AS "profile__data" FROM "users" LEFT JOIN "profiles" AS "profile" ON "users"."id" = "profile"."user_id" WHERE "users"."id" = $1`
	if sql != want {
		t.Errorf("renderPlan() =\n%q, want\n%q", sql, want)
	}
}

func TestRenderPlanRejectsInvalidRelationIdentifier(t *testing.T) {
	relations := []RelationSpec{
		{Name: "posts", ForeignTable: "drop", LocalColumn: "id", RemoteColumn: "user_id", Kind: sqlcompose.LeftJoin},
	}
	if _, err := renderPlan("users", []string{"id"}, relations); err == nil {
		t.Fatal("renderPlan() error = nil, want IdentifierError for reserved word foreign table")
	}
}

func TestStripMainPrefix(t *testing.T) {
	row := map[string]value.Value{
		"_main_id":   value.NewInt32(1),
		"_main_name": value.NewString("a"),
		"posts__id":  value.NewInt32(7),
	}
	out := StripMainPrefix(row)
	if _, ok := out["id"]; !ok {
		t.Fatal(`StripMainPrefix() missing "id"`)
	}
	if _, ok := out["name"]; !ok {
		t.Fatal(`StripMainPrefix() missing "name"`)
	}
	if _, ok := out["posts__id"]; !ok {
		t.Fatal(`StripMainPrefix() should leave relation-prefixed columns untouched`)
	}
}

func TestCollapseRelationsNullExistsSentinel(t *testing.T) {
	row := map[string]value.Value{
		"id":            value.NewInt32(1),
		"profile__exists": value.Null(),
	}
	out := CollapseRelations(row, []string{"profile"})
	v, ok := out["profile"]
	if !ok {
		t.Fatal(`CollapseRelations() missing "profile"`)
	}
	if !v.IsNull() {
		t.Fatalf("profile = %#v, want Null (no matching row)", v)
	}
}

func TestCollapseRelationsWithDataFallback(t *testing.T) {
	row := map[string]value.Value{
		"id":              value.NewInt32(1),
		"profile__exists": value.NewInt32(5),
		"profile__data":   value.NewJSON([]byte(`{"bio":"hi"}`)),
	}
	out := CollapseRelations(row, []string{"profile"})
	v, ok := out["profile"]
	if !ok {
		t.Fatal(`CollapseRelations() missing "profile"`)
	}
	raw, ok := v.JSON()
	if !ok || len(raw) == 0 {
		t.Fatalf("profile = %#v, want JSON payload", v)
	}
}

func TestCollapseRelationsWithExplicitColumns(t *testing.T) {
	row := map[string]value.Value{
		"id":           value.NewInt32(1),
		"posts__id":    value.NewInt32(7),
		"posts__title": value.NewString("hello"),
	}
	out := CollapseRelations(row, []string{"posts"})
	v, ok := out["posts"]
	if !ok {
		t.Fatal(`CollapseRelations() missing "posts"`)
	}
	// Collapse order must be deterministic (alphabetical by key) across
	// repeated calls on the same input, since Document equality is
	// order-sensitive.
	for i := 0; i < 10; i++ {
		again := CollapseRelations(row, []string{"posts"})["posts"]
		if !again.Equal(v) {
			t.Fatalf("CollapseRelations() nondeterministic: %#v vs %#v", again, v)
		}
	}
	fields, ok := v.Document()
	if !ok || len(fields) != 2 {
		t.Fatalf("posts = %#v, want two-field document", v)
	}
}

func TestCollapseRelationsLeavesNonRelationKeysAlone(t *testing.T) {
	row := map[string]value.Value{"id": value.NewInt32(1)}
	out := CollapseRelations(row, []string{"posts"})
	if _, ok := out["id"]; !ok {
		t.Fatal(`CollapseRelations() dropped unrelated key "id"`)
	}
	if _, ok := out["posts"]; ok {
		t.Fatal(`CollapseRelations() should not synthesize a relation with no matching columns`)
	}
}
