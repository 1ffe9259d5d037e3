package docstore

import (
	"context"
	"testing"

	"github.com/relaydata/corebridge/internal/value"
)

func TestValidateCollectionNameRejectsEmpty(t *testing.T) {
	if err := validateCollectionName(""); err == nil {
		t.Fatal("validateCollectionName(\"\") error = nil, want error")
	}
}

func TestValidateCollectionNameRejectsDollarPrefix(t *testing.T) {
	if err := validateCollectionName("$cmd"); err == nil {
		t.Fatal("validateCollectionName(\"$cmd\") error = nil, want error")
	}
}

func TestValidateCollectionNameRejectsNUL(t *testing.T) {
	if err := validateCollectionName("a\x00b"); err == nil {
		t.Fatal("validateCollectionName with NUL byte error = nil, want error")
	}
}

func TestValidateCollectionNameRejectsTooLong(t *testing.T) {
	name := make([]byte, maxCollectionNameBytes+1)
	for i := range name {
		name[i] = 'a'
	}
	if err := validateCollectionName(string(name)); err == nil {
		t.Fatal("validateCollectionName(long name) error = nil, want error")
	}
}

func TestValidateCollectionNameRejectsSystemPrefix(t *testing.T) {
	if err := validateCollectionName("system.users"); err == nil {
		t.Fatal("validateCollectionName(\"system.users\") error = nil, want error")
	}
}

func TestValidateCollectionNameAcceptsOrdinary(t *testing.T) {
	if err := validateCollectionName("orders"); err != nil {
		t.Fatalf("validateCollectionName(\"orders\") error = %v, want nil", err)
	}
}

func TestScanForDeniedOperatorsTopLevel(t *testing.T) {
	filter := map[string]any{"$where": "this.a == this.b"}
	if err := validateQueryDocument(filter); err == nil {
		t.Fatal("validateQueryDocument() error = nil, want QueryValidationError for $where")
	}
}

func TestScanForDeniedOperatorsNestedInArray(t *testing.T) {
	filter := map[string]any{
		"$and": []any{
			map[string]any{"status": "active"},
			map[string]any{"$where": "sleep(1000)"},
		},
	}
	if err := validateQueryDocument(filter); err == nil {
		t.Fatal("validateQueryDocument() error = nil, want QueryValidationError for nested $where inside $and")
	}
}

func TestScanForDeniedOperatorsAllowsOrdinaryFilter(t *testing.T) {
	filter := map[string]any{"status": "active", "age": map[string]any{"$gte": 18}}
	if err := validateQueryDocument(filter); err != nil {
		t.Fatalf("validateQueryDocument() error = %v, want nil", err)
	}
}

func TestExtractAnyScalars(t *testing.T) {
	cases := []struct {
		in   any
		want value.Kind
	}{
		{nil, value.KindNull},
		{true, value.KindBool},
		{int32(1), value.KindInt32},
		{int64(1), value.KindInt64},
		{3.14, value.KindFloat64},
		{"hello", value.KindString},
		{[]byte("abc"), value.KindBytes},
	}
	for _, c := range cases {
		v, err := extractAny(c.in)
		if err != nil {
			t.Fatalf("extractAny(%#v) error = %v", c.in, err)
		}
		if v.Kind() != c.want {
			t.Errorf("extractAny(%#v).Kind() = %v, want %v", c.in, v.Kind(), c.want)
		}
	}
}

func TestExtractAnyNestedDocument(t *testing.T) {
	v, err := extractAny(map[string]any{"a": int32(1)})
	if err != nil {
		t.Fatalf("extractAny() error = %v", err)
	}
	fields, ok := v.Document()
	if !ok || len(fields) != 1 || fields[0].Key != "a" {
		t.Fatalf("extractAny() = %#v, want one-field document", v)
	}
}

func TestExtractAnyArray(t *testing.T) {
	v, err := extractAny([]any{int32(1), "two"})
	if err != nil {
		t.Fatalf("extractAny() error = %v", err)
	}
	elems, ok := v.Array()
	if !ok || len(elems) != 2 {
		t.Fatalf("extractAny() = %#v, want two-element array", v)
	}
}

func TestExtractAnyRejectsUnsupportedType(t *testing.T) {
	if _, err := extractAny(struct{}{}); err == nil {
		t.Fatal("extractAny(struct{}{}) error = nil, want WireError")
	}
}

func TestToBSONBatchBelowThreshold(t *testing.T) {
	vals := []value.Value{value.NewInt32(1), value.NewInt32(2)}
	out, err := toBSONBatch(context.Background(), vals)
	if err != nil {
		t.Fatalf("toBSONBatch() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestToBSONBatchAtOrAboveThreshold(t *testing.T) {
	vals := make([]value.Value, parallelThreshold)
	for i := range vals {
		vals[i] = value.NewInt32(int32(i))
	}
	out, err := toBSONBatch(context.Background(), vals)
	if err != nil {
		t.Fatalf("toBSONBatch() error = %v", err)
	}
	if len(out) != parallelThreshold {
		t.Fatalf("len(out) = %d, want %d", len(out), parallelThreshold)
	}
	for i, v := range out {
		n, ok := v.(int32)
		if !ok || n != int32(i) {
			t.Fatalf("out[%d] = %#v, want int32(%d)", i, v, i)
		}
	}
}

func TestStoreMethodsFailBeforeInit(t *testing.T) {
	s := New(nil)
	if _, err := s.Find(context.Background(), "db", "coll", map[string]any{}, FindOptions{}); err == nil {
		t.Fatal("Find() on uninitialized store error = nil, want LifecycleError")
	}
}

func TestCloseBeforeInitFails(t *testing.T) {
	s := New(nil)
	if err := s.Close(context.Background()); err == nil {
		t.Fatal("Close() on uninitialized store error = nil, want LifecycleError")
	}
}
