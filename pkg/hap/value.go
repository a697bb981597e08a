package hap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Value errors.
var (
	ErrKindMismatch = errors.New("value kind mismatch")
	ErrInvalidValue = errors.New("invalid value")
)

// FloatScale is the fixed-point scale of float values on the engine boundary.
const FloatScale = 100

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// DefaultFormat returns the HAP format used for a kind when the
// characteristic type does not define one.
func (k Kind) DefaultFormat() Format {
	switch k {
	case KindBool:
		return FormatBool
	case KindInt:
		return FormatInt
	case KindFloat:
		return FormatFloat
	case KindString:
		return FormatString
	default:
		return ""
	}
}

// Value is a characteristic value as seen by the engine: one slot whose
// interpretation depends on Kind. The zero Value is invalid.
type Value struct {
	kind Kind
	slot int64
	str  string
}

// EncodeFloat converts a float to its fixed-point slot: round(f * 100).
// The product is computed in float32 and rounded half away from zero.
func EncodeFloat(f float32) int32 {
	return int32(math.Round(float64(f * FloatScale)))
}

// DecodeFloat converts a fixed-point slot back to a float: slot / 100.
func DecodeFloat(slot int32) float32 {
	return float32(slot) / FloatScale
}

// BoolValue returns a bool value (slot 1 or 0).
func BoolValue(b bool) Value {
	if b {
		return Value{kind: KindBool, slot: 1}
	}
	return Value{kind: KindBool}
}

// IntValue returns an int value stored directly in the slot.
func IntValue(n int) Value {
	return Value{kind: KindInt, slot: int64(n)}
}

// FloatValue returns a float value stored as its fixed-point slot.
func FloatValue(f float32) Value {
	return Value{kind: KindFloat, slot: int64(EncodeFloat(f))}
}

// FloatSlotValue returns a float value from an already encoded slot, as
// received from an engine.
func FloatSlotValue(slot int32) Value {
	return Value{kind: KindFloat, slot: int64(slot)}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// StringFromBuffer builds a string value from a NUL-terminated buffer.
// Bytes after the first NUL are ignored; a buffer without NUL is used whole.
func StringFromBuffer(buf []byte) Value {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return StringValue(string(buf))
}

// Kind returns the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether the value holds any kind.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// Slot returns the pointer-sized representation for bool, int and float
// values. String values have no slot and return 0.
func (v Value) Slot() int64 {
	return v.slot
}

// Bool returns the bool member.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("%w: have %s, want bool", ErrKindMismatch, v.kind)
	}
	return v.slot != 0, nil
}

// Int returns the int member.
func (v Value) Int() (int, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("%w: have %s, want int", ErrKindMismatch, v.kind)
	}
	return int(v.slot), nil
}

// Float returns the decoded float member.
func (v Value) Float() (float32, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("%w: have %s, want float", ErrKindMismatch, v.kind)
	}
	return DecodeFloat(int32(v.slot)), nil
}

// Text returns the string member.
func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("%w: have %s, want string", ErrKindMismatch, v.kind)
	}
	return v.str, nil
}

// Native returns the decoded Go value: bool, int, float32 or string.
// Invalid values return nil.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.slot != 0
	case KindInt:
		return int(v.slot)
	case KindFloat:
		return DecodeFloat(int32(v.slot))
	case KindString:
		return v.str
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.slot == o.slot && v.str == o.str
}

// String formats the decoded value for display.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.slot != 0)
	case KindInt:
		return strconv.FormatInt(v.slot, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(DecodeFloat(int32(v.slot))), 'f', -1, 32)
	case KindString:
		return strconv.Quote(v.str)
	default:
		return "<invalid>"
	}
}

// FromNative converts a decoded Go value into a Value of the given kind.
// It accepts the types produced by encoding/json (bool, float64, string,
// json.Number) as well as int, int64 and float32. Floats are encoded with
// the fixed-point rule; non-integral numbers are rejected for int kinds.
func FromNative(kind Kind, x any) (Value, error) {
	switch kind {
	case KindBool:
		switch b := x.(type) {
		case bool:
			return BoolValue(b), nil
		default:
			// HAP controllers send 0/1 for bool characteristics.
			n, err := toFloat64(x)
			if err != nil {
				return Value{}, err
			}
			return BoolValue(n != 0), nil
		}
	case KindInt:
		n, err := toFloat64(x)
		if err != nil {
			return Value{}, err
		}
		if n != math.Trunc(n) {
			return Value{}, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, x)
		}
		return IntValue(int(n)), nil
	case KindFloat:
		n, err := toFloat64(x)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(float32(n)), nil
	case KindString:
		s, ok := x.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T is not a string", ErrInvalidValue, x)
		}
		return StringValue(s), nil
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrInvalidValue, kind)
	}
}

// ParseValue parses a textual value of the given kind ("true", "42", "21.5",
// or any text for strings).
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindBool:
		switch text {
		case "1", "on", "yes":
			return BoolValue(true), nil
		case "0", "off", "no":
			return BoolValue(false), nil
		}
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool", ErrInvalidValue, text)
		}
		return BoolValue(b), nil
	case KindInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, text)
		}
		return IntValue(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float", ErrInvalidValue, text)
		}
		return FloatValue(float32(f)), nil
	case KindString:
		return StringValue(text), nil
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrInvalidValue, kind)
	}
}

// MarshalJSON encodes the decoded value as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(v.Native())
}

func toFloat64(x any) (float64, error) {
	switch n := x.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, x)
	}
}
