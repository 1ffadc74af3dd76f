//go:build linux

package v4l2

import "fmt"

// CtrlType identifies a control's value type as reported by the driver.
// Values match V4L2_CTRL_TYPE_* from <linux/videodev2.h>.
type CtrlType uint32

// Control types.
const (
	CtrlTypeInteger     CtrlType = 1
	CtrlTypeBoolean     CtrlType = 2
	CtrlTypeMenu        CtrlType = 3
	CtrlTypeButton      CtrlType = 4
	CtrlTypeInteger64   CtrlType = 5
	CtrlTypeCtrlClass   CtrlType = 6
	CtrlTypeString      CtrlType = 7
	CtrlTypeBitmask     CtrlType = 8
	CtrlTypeIntegerMenu CtrlType = 9

	// Compound types.
	CtrlTypeU8   CtrlType = 0x0100
	CtrlTypeU16  CtrlType = 0x0101
	CtrlTypeU32  CtrlType = 0x0102
	CtrlTypeArea CtrlType = 0x0106
)

// String returns the conventional v4l2-ctl spelling of the type.
func (t CtrlType) String() string {
	switch t {
	case CtrlTypeInteger:
		return "int"
	case CtrlTypeBoolean:
		return "bool"
	case CtrlTypeMenu:
		return "menu"
	case CtrlTypeButton:
		return "button"
	case CtrlTypeInteger64:
		return "int64"
	case CtrlTypeCtrlClass:
		return "class"
	case CtrlTypeString:
		return "string"
	case CtrlTypeBitmask:
		return "bitmask"
	case CtrlTypeIntegerMenu:
		return "intmenu"
	case CtrlTypeU8:
		return "u8"
	case CtrlTypeU16:
		return "u16"
	case CtrlTypeU32:
		return "u32"
	case CtrlTypeArea:
		return "area"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Control classes (upper 16 bits of a control id).
const (
	CtrlClassUser   = 0x00980000
	CtrlClassCodec  = 0x00990000
	CtrlClassCamera = 0x009A0000
	CtrlClassJPEG   = 0x009D0000
)

// Well-known control ids.
const (
	CIDBrightness         = 0x00980900
	CIDContrast           = 0x00980901
	CIDSaturation         = 0x00980902
	CIDHue                = 0x00980903
	CIDAutoWhiteBalance   = 0x0098090C
	CIDGamma              = 0x00980910
	CIDGain               = 0x00980913
	CIDPowerLineFrequency = 0x00980918
	CIDSharpness          = 0x0098091B
	CIDExposureAuto       = 0x009A0901
	CIDExposureAbsolute   = 0x009A0902
	CIDFocusAbsolute      = 0x009A090A
	CIDFocusAuto          = 0x009A090C
	CIDZoomAbsolute       = 0x009A090D
)

// Class returns the control class encoded in the upper 16 bits of an id.
func Class(id uint32) uint32 {
	return id & classMask
}

// ValueKind discriminates the variants of a Value.
type ValueKind int

// Value kinds.
const (
	KindNone ValueKind = iota
	KindInteger
	KindBoolean
	KindString
	KindCompoundU8
	KindCompoundU16
	KindCompoundU32
	KindCompoundPtr
)

// Value is a tagged union holding one control value. The zero Value has
// kind KindNone and marshals to an empty payload, which is what button
// controls expect.
type Value struct {
	kind ValueKind
	num  int64
	str  string
	u8   []uint8
	u16  []uint16
	u32  []uint32
	raw  []byte
}

// IntegerValue returns a Value for Integer and Integer64 controls.
func IntegerValue(v int64) Value { return Value{kind: KindInteger, num: v} }

// BooleanValue returns a Value for Boolean controls.
func BooleanValue(v bool) Value {
	var n int64
	if v {
		n = 1
	}
	return Value{kind: KindBoolean, num: n}
}

// StringValue returns a Value for String controls.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// CompoundU8Value returns a Value backed by the given byte elements.
// The slice must stay untouched until the submitting call returns.
func CompoundU8Value(v []uint8) Value { return Value{kind: KindCompoundU8, u8: v} }

// CompoundU16Value returns a Value backed by the given 16-bit elements.
// The slice must stay untouched until the submitting call returns.
func CompoundU16Value(v []uint16) Value { return Value{kind: KindCompoundU16, u16: v} }

// CompoundU32Value returns a Value backed by the given 32-bit elements.
// The slice must stay untouched until the submitting call returns.
func CompoundU32Value(v []uint32) Value { return Value{kind: KindCompoundU32, u32: v} }

// CompoundPtrValue returns a Value backed by an opaque byte buffer, for
// compound control payloads with driver-defined layout. The slice must
// stay untouched until the submitting call returns.
func CompoundPtrValue(v []byte) Value { return Value{kind: KindCompoundPtr, raw: v} }

// Kind returns the variant held by the value.
func (v Value) Kind() ValueKind { return v.kind }

// Integer returns the numeric payload. Valid for KindInteger and
// KindBoolean (0 or 1).
func (v Value) Integer() int64 { return v.num }

// Boolean reports whether the value is boolean true.
func (v Value) Boolean() bool { return v.kind == KindBoolean && v.num == 1 }

// Str returns the string payload of a KindString value.
func (v Value) Str() string { return v.str }

// String renders the value for logs and CLI output.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindInteger:
		return fmt.Sprintf("%d", v.num)
	case KindBoolean:
		return fmt.Sprintf("%t", v.num == 1)
	case KindString:
		return v.str
	case KindCompoundU8:
		return fmt.Sprintf("u8[%d]", len(v.u8))
	case KindCompoundU16:
		return fmt.Sprintf("u16[%d]", len(v.u16))
	case KindCompoundU32:
		return fmt.Sprintf("u32[%d]", len(v.u32))
	default:
		return fmt.Sprintf("ptr[%d]", len(v.raw))
	}
}

// Control pairs a control id with a target or current value. Which value
// kinds a driver accepts for an id is dictated by the queried
// Description type.
type Control struct {
	ID    uint32
	Value Value
}

// MenuItem is one entry of a Menu or IntegerMenu control. Index is the
// driver-side index; Name is set for Menu controls, Value for
// IntegerMenu controls.
type MenuItem struct {
	Index uint32
	Name  string
	Value int64
}

// Description holds the driver-reported metadata of one control.
// Items is non-nil if and only if Type is Menu or IntegerMenu; it stays
// an empty non-nil slice when every advertised index turned out to be
// unsupported.
type Description struct {
	ID      uint32
	Name    string
	Type    CtrlType
	Minimum int64
	Maximum int64
	Step    int64
	Default int64
	Flags   uint32
	Items   []MenuItem
}

func descriptionFromQueryctrl(q *v4l2Queryctrl) Description {
	return Description{
		ID:      q.id,
		Name:    cstr(q.name[:]),
		Type:    CtrlType(q.typ),
		Minimum: int64(q.minimum),
		Maximum: int64(q.maximum),
		Step:    int64(q.step),
		Default: int64(q.defaultValue),
		Flags:   q.flags,
	}
}

func menuItemFromQuerymenu(typ CtrlType, m *v4l2Querymenu) MenuItem {
	item := MenuItem{Index: m.index}
	if typ == CtrlTypeIntegerMenu {
		item.Value = int64(nativeEndian.Uint64(m.union[:8]))
	} else {
		item.Name = cstr(m.union[:])
	}
	return item
}
