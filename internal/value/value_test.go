package value_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/relaydata/corebridge/internal/value"
)

func TestAccessorsRoundTrip(t *testing.T) {
	v := value.NewInt32(42)
	if got, ok := v.Int32(); !ok || got != 42 {
		t.Fatalf("Int32() = %v, %v; want 42, true", got, ok)
	}
	if _, ok := v.Str(); ok {
		t.Fatal("Str() ok on an Int32 Value")
	}
	if v.Kind() != value.KindInt32 {
		t.Fatalf("Kind() = %v, want KindInt32", v.Kind())
	}
}

func TestNullIsNull(t *testing.T) {
	if !value.Null().IsNull() {
		t.Fatal("Null().IsNull() = false")
	}
	if value.NewInt64(0).IsNull() {
		t.Fatal("NewInt64(0).IsNull() = true")
	}
}

func TestFloat32NaNExportsNull(t *testing.T) {
	v := value.NewFloat32(float32(math.NaN()))
	arg, err := v.PgxArg()
	if err != nil {
		t.Fatalf("PgxArg() error = %v", err)
	}
	if arg != nil {
		t.Fatalf("PgxArg() = %v, want nil for NaN", arg)
	}
}

func TestFloat64NaNExportsNull(t *testing.T) {
	v := value.NewFloat64(math.NaN())
	arg, err := v.PgxArg()
	if err != nil {
		t.Fatalf("PgxArg() error = %v", err)
	}
	if arg != nil {
		t.Fatalf("PgxArg() = %v, want nil for NaN", arg)
	}
}

func TestBindArrayHomogeneousInt32(t *testing.T) {
	elems := []value.Value{value.NewInt32(1), value.NewInt32(2), value.NewInt32(3)}
	got, err := value.BindArray(elems)
	if err != nil {
		t.Fatalf("BindArray() error = %v", err)
	}
	want := []int32{1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BindArray() mismatch (-want +got):\n%s", diff)
	}
}

func TestBindArrayHomogeneousWithNull(t *testing.T) {
	elems := []value.Value{value.NewInt32(1), value.Null(), value.NewInt32(3)}
	got, err := value.BindArray(elems)
	if err != nil {
		t.Fatalf("BindArray() error = %v", err)
	}
	arr, ok := got.([]*int32)
	if !ok {
		t.Fatalf("BindArray() = %T, want []*int32", got)
	}
	if len(arr) != 3 || arr[1] != nil || *arr[0] != 1 || *arr[2] != 3 {
		t.Fatalf("BindArray() = %v, want [1 nil 3]", arr)
	}
}

func TestBindArrayMixedTagsFallsBackToJSON(t *testing.T) {
	elems := []value.Value{value.NewInt32(1), value.NewString("x")}
	got, err := value.BindArray(elems)
	if err != nil {
		t.Fatalf("BindArray() error = %v", err)
	}
	if _, ok := got.([]byte); !ok {
		t.Fatalf("BindArray() = %T, want []byte JSON fallback", got)
	}
}

func TestBindArrayOfDecimalsFallsBackToJSON(t *testing.T) {
	elems := []value.Value{
		value.NewDecimal(decimal.RequireFromString("1.50")),
		value.NewDecimal(decimal.RequireFromString("2.25")),
	}
	got, err := value.BindArray(elems)
	if err != nil {
		t.Fatalf("BindArray() error = %v", err)
	}
	if _, ok := got.([]byte); !ok {
		t.Fatalf("BindArray() = %T, want []byte JSON fallback for decimals", got)
	}
}

func TestBindArrayEmpty(t *testing.T) {
	got, err := value.BindArray(nil)
	if err != nil {
		t.Fatalf("BindArray(nil) error = %v", err)
	}
	arr, ok := got.([]string)
	if !ok || arr != nil {
		t.Fatalf("BindArray(nil) = %#v, want typed nil []string", got)
	}
}

func TestToBSONObjectIDHex(t *testing.T) {
	v := value.NewObjectIDHex("507f1f77bcf86cd799439011")
	got, err := v.ToBSON()
	if err != nil {
		t.Fatalf("ToBSON() error = %v", err)
	}
	if _, ok := got.(interface{ Hex() string }); !ok {
		t.Fatalf("ToBSON() = %T, want a value with Hex()", got)
	}
}

func TestToBSONStrictModeNeverAutoConverts(t *testing.T) {
	prev := value.GetObjectIDMode()
	value.SetObjectIDMode(value.ObjectIDStrict)
	defer value.SetObjectIDMode(prev)

	v := value.NewString("507f1f77bcf86cd799439011")
	got, err := v.ToBSON()
	if err != nil {
		t.Fatalf("ToBSON() error = %v", err)
	}
	if s, ok := got.(string); !ok || s != "507f1f77bcf86cd799439011" {
		t.Fatalf("ToBSON() = %v (%T), want plain string in Strict mode", got, got)
	}
}

func TestToBSONTypeHintedModeNeverAutoConvertsPlainString(t *testing.T) {
	prev := value.GetObjectIDMode()
	value.SetObjectIDMode(value.ObjectIDTypeHinted)
	defer value.SetObjectIDMode(prev)

	v := value.NewString("507f1f77bcf86cd799439011")
	got, err := v.ToBSON()
	if err != nil {
		t.Fatalf("ToBSON() error = %v", err)
	}
	if s, ok := got.(string); !ok || s != "507f1f77bcf86cd799439011" {
		t.Fatalf("ToBSON() = %v (%T), want plain string in TypeHinted mode", got, got)
	}
}

func TestFromBSONRoundTripsScalars(t *testing.T) {
	v, ok := value.FromBSON(int32(7))
	if !ok {
		t.Fatal("FromBSON(int32) ok = false")
	}
	got, _ := v.Int32()
	if got != 7 {
		t.Fatalf("FromBSON(int32) = %v, want 7", got)
	}
}
