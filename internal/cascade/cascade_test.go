package cascade

import (
	"context"
	"testing"

	"github.com/relaydata/corebridge/internal/value"
)

func TestValidateBackReferencesRejectsBadTable(t *testing.T) {
	refs := []BackReference{{SourceTable: "select", SourceColumn: "user_id", OnDelete: Cascade}}
	if err := validateBackReferences(refs); err == nil {
		t.Fatal("validateBackReferences() error = nil, want IdentifierError for reserved word table")
	}
}

func TestValidateBackReferencesRejectsBadColumn(t *testing.T) {
	refs := []BackReference{{SourceTable: "orders", SourceColumn: "drop", OnDelete: Restrict}}
	if err := validateBackReferences(refs); err == nil {
		t.Fatal("validateBackReferences() error = nil, want IdentifierError for reserved word column")
	}
}

func TestValidateBackReferencesAcceptsWellFormed(t *testing.T) {
	refs := []BackReference{
		{SourceTable: "orders", SourceColumn: "user_id", OnDelete: Cascade},
		{SourceTable: "profiles", SourceColumn: "user_id", OnDelete: SetNull},
	}
	if err := validateBackReferences(refs); err != nil {
		t.Fatalf("validateBackReferences() error = %v, want nil", err)
	}
}

func TestRuleSQLRendering(t *testing.T) {
	if got, want := restrictProbeSQL(`"orders"`, `"user_id"`), `SELECT EXISTS(SELECT 1 FROM "orders" WHERE "user_id" = $1)`; got != want {
		t.Errorf("restrictProbeSQL() = %q, want %q", got, want)
	}
	if got, want := cascadeDeleteSQL(`"orders"`, `"user_id"`), `DELETE FROM "orders" WHERE "user_id" = $1`; got != want {
		t.Errorf("cascadeDeleteSQL() = %q, want %q", got, want)
	}
	if got, want := setNullSQL(`"orders"`, `"user_id"`), `UPDATE "orders" SET "user_id" = NULL WHERE "user_id" = $1`; got != want {
		t.Errorf("setNullSQL() = %q, want %q", got, want)
	}
	if got, want := setDefaultSQL(`"orders"`, `"user_id"`), `UPDATE "orders" SET "user_id" = DEFAULT WHERE "user_id" = $1`; got != want {
		t.Errorf("setDefaultSQL() = %q, want %q", got, want)
	}
}

func TestDeleteWithCascadeRejectsInvalidTableBeforeTouchingPool(t *testing.T) {
	_, err := DeleteWithCascade(context.Background(), nil, "drop", value.NewInt32(1), "id")
	if err == nil {
		t.Fatal("DeleteWithCascade() error = nil, want IdentifierError for reserved word table")
	}
}

func TestDeleteWithCascadeRejectsInvalidIDColumnBeforeTouchingPool(t *testing.T) {
	_, err := DeleteWithCascade(context.Background(), nil, "users", value.NewInt32(1), "select")
	if err == nil {
		t.Fatal("DeleteWithCascade() error = nil, want IdentifierError for reserved word id column")
	}
}
