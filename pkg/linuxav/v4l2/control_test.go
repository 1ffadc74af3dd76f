//go:build linux

package v4l2

import "testing"

func TestClass(t *testing.T) {
	tests := []struct {
		id   uint32
		want uint32
	}{
		{CIDBrightness, CtrlClassUser},
		{CIDContrast, CtrlClassUser},
		{CIDExposureAuto, CtrlClassCamera},
		{CIDZoomAbsolute, CtrlClassCamera},
	}
	for _, tt := range tests {
		if got := Class(tt.id); got != tt.want {
			t.Errorf("Class(%#x) = %#x, want %#x", tt.id, got, tt.want)
		}
	}
}

func TestValueKinds(t *testing.T) {
	var zero Value
	if zero.Kind() != KindNone {
		t.Errorf("zero Value kind = %v, want KindNone", zero.Kind())
	}

	if v := IntegerValue(-42); v.Kind() != KindInteger || v.Integer() != -42 {
		t.Errorf("IntegerValue(-42) = %v", v)
	}
	if v := BooleanValue(true); !v.Boolean() || v.Integer() != 1 {
		t.Errorf("BooleanValue(true) = %v", v)
	}
	if v := BooleanValue(false); v.Boolean() || v.Integer() != 0 {
		t.Errorf("BooleanValue(false) = %v", v)
	}
	if v := StringValue("day"); v.Str() != "day" {
		t.Errorf("StringValue = %q", v.Str())
	}

	// Integer 1 is not boolean true; the variants do not cross over.
	if IntegerValue(1).Boolean() {
		t.Error("IntegerValue(1).Boolean() = true, want false")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Value{}, "none"},
		{IntegerValue(7), "7"},
		{BooleanValue(true), "true"},
		{StringValue("auto"), "auto"},
		{CompoundU8Value([]uint8{1, 2}), "u8[2]"},
		{CompoundU32Value([]uint32{9}), "u32[1]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCtrlTypeString(t *testing.T) {
	tests := []struct {
		typ  CtrlType
		want string
	}{
		{CtrlTypeInteger, "int"},
		{CtrlTypeBoolean, "bool"},
		{CtrlTypeMenu, "menu"},
		{CtrlTypeIntegerMenu, "intmenu"},
		{CtrlTypeU8, "u8"},
		{CtrlType(0xdead), "unknown(57005)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
