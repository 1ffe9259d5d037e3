package identifier_test

import (
	"errors"
	"testing"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/identifier"
)

func TestValidateAccepts(t *testing.T) {
	for _, name := range []string{"users", "_private", "users.id", "a1", "CamelCase"} {
		if err := identifier.Validate(name); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		kind bridgeerr.IdentifierErrorKind
	}{
		{"", bridgeerr.EmptyIdentifier},
		{"1abc", bridgeerr.InvalidFirstChar},
		{"abc-def", bridgeerr.InvalidChar},
		{"select", bridgeerr.ReservedWord},
		{"SELECT", bridgeerr.ReservedWord},
		{"pg_catalog", bridgeerr.SystemNamespace},
		{"information_schema", bridgeerr.SystemNamespace},
		{"a.b.c", bridgeerr.TooManyParts},
		{"a.", bridgeerr.EmptyIdentifier},
	}
	for _, tc := range cases {
		err := identifier.Validate(tc.name)
		if err == nil {
			t.Errorf("Validate(%q) = nil, want error kind %v", tc.name, tc.kind)
			continue
		}
		var idErr *bridgeerr.IdentifierError
		if !errors.As(err, &idErr) {
			t.Errorf("Validate(%q) error = %v, not an *IdentifierError", tc.name, err)
			continue
		}
		if idErr.Kind != tc.kind {
			t.Errorf("Validate(%q) kind = %v, want %v", tc.name, idErr.Kind, tc.kind)
		}
	}
}

func TestValidateRejectsTooLong(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	err := identifier.Validate(string(long))
	var idErr *bridgeerr.IdentifierError
	if !errors.As(err, &idErr) || idErr.Kind != bridgeerr.TooLong {
		t.Fatalf("Validate(64-byte name) = %v, want TooLong", err)
	}
}

func TestValidateNFKCNormalizesBeforeValidation(t *testing.T) {
	// U+FB01 LATIN SMALL LIGATURE FI normalizes (NFKC) to "fi".
	if err := identifier.Validate("ﬁeld"); err != nil {
		t.Fatalf("Validate(ligature) = %v, want nil after NFKC normalization", err)
	}
}

func TestQuoteSimple(t *testing.T) {
	if got := identifier.Quote("users"); got != `"users"` {
		t.Fatalf("Quote(users) = %q", got)
	}
}

func TestQuoteQualified(t *testing.T) {
	if got := identifier.Quote("public.users"); got != `"public"."users"` {
		t.Fatalf("Quote(public.users) = %q", got)
	}
}
