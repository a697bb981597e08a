package accessory

import (
	"fmt"

	"github.com/hap-go/hap-go/pkg/hap"
)

// Scalar is the set of Go types a characteristic can carry.
type Scalar interface {
	bool | int | float32 | string
}

// codec converts between a Go scalar and its engine value.
type codec[T Scalar] struct {
	kind   hap.Kind
	encode func(T) hap.Value
	decode func(hap.Value) (T, error)
}

func codecFor[T Scalar]() codec[T] {
	var c any
	var zero T
	switch any(zero).(type) {
	case bool:
		c = codec[bool]{hap.KindBool, hap.BoolValue, hap.Value.Bool}
	case int:
		c = codec[int]{hap.KindInt, hap.IntValue, hap.Value.Int}
	case float32:
		c = codec[float32]{hap.KindFloat, hap.FloatValue, hap.Value.Float}
	case string:
		c = codec[string]{hap.KindString, hap.StringValue, hap.Value.Text}
	}
	return c.(codec[T])
}

// encodeBound converts a bound given as any scalar into the kind of the
// characteristic. A bound of the wrong numeric type is converted, so
// WithMin(0) works for float characteristics.
func encodeBound(kind hap.Kind, v any) (hap.Value, error) {
	switch kind {
	case hap.KindInt, hap.KindFloat:
	default:
		return hap.Value{}, fmt.Errorf("%w: %s characteristics have no bounds", hap.ErrInvalidValue, kind)
	}
	return hap.FromNative(kind, v)
}
