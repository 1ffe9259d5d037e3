package paramrenum_test

import (
	"testing"

	"github.com/relaydata/corebridge/internal/paramrenum"
)

func TestRenumberBasic(t *testing.T) {
	got := paramrenum.Renumber(`SELECT * FROM t WHERE a = $1 AND b = $2`, 3)
	want := `SELECT * FROM t WHERE a = $4 AND b = $5`
	if got != want {
		t.Fatalf("Renumber() = %q, want %q", got, want)
	}
}

func TestRenumberZeroOffsetNoOp(t *testing.T) {
	sql := `SELECT * FROM t WHERE a = $1`
	if got := paramrenum.Renumber(sql, 0); got != sql {
		t.Fatalf("Renumber(offset=0) = %q, want unchanged %q", got, sql)
	}
}

func TestRenumberPassesThroughBareDollar(t *testing.T) {
	sql := `SELECT '$' || name FROM t WHERE a = $1`
	got := paramrenum.Renumber(sql, 2)
	want := `SELECT '$' || name FROM t WHERE a = $3`
	if got != want {
		t.Fatalf("Renumber() = %q, want %q", got, want)
	}
}

func TestRenumberDoubleDigitIndices(t *testing.T) {
	got := paramrenum.Renumber(`$9 $10 $11`, 1)
	want := `$10 $11 $12`
	if got != want {
		t.Fatalf("Renumber() = %q, want %q", got, want)
	}
}

func TestRenumberLargeOffset(t *testing.T) {
	got := paramrenum.Renumber(`$1`, 100)
	if got != `$101` {
		t.Fatalf("Renumber() = %q, want $101", got)
	}
}
