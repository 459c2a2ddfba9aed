package column

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// NumberPolicy selects how JSON numbers map onto Int and Float.
type NumberPolicy int

const (
	// NumbersAsFloat turns every number representable as a float64 into a
	// Float, so a plain integer literal such as 5 becomes Float(5). Only
	// numbers outside float64 range fall back to Int.
	NumbersAsFloat NumberPolicy = iota
	// IntegralAsInt turns integer literals that fit an int64 into Int and
	// everything else into Float.
	IntegralAsInt
)

func (p NumberPolicy) String() string {
	if p == IntegralAsInt {
		return "integral-as-int"
	}
	return "numbers-as-float"
}

// ConversionError is returned for untyped values that are not scalars.
type ConversionError struct {
	Kind string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to a column value", e.Kind)
}

// FromUntyped converts a decoded JSON value with the NumbersAsFloat policy.
// Null yields an invalid NullValue; arrays and objects are rejected.
func FromUntyped(raw any) (NullValue, error) {
	return NumbersAsFloat.FromUntyped(raw)
}

// FromUntyped converts a decoded JSON value using the policy for numbers.
func (p NumberPolicy) FromUntyped(raw any) (NullValue, error) {
	switch x := raw.(type) {
	case nil:
		return NullValue{}, nil
	case bool:
		return Some(Bool(x)), nil
	case string:
		return Some(String(x)), nil
	case json.Number:
		v, err := p.fromNumber(x)
		if err != nil {
			return NullValue{}, err
		}
		return Some(v), nil
	case float64:
		if p == IntegralAsInt && isIntegral(x) {
			return Some(Int(int64(x))), nil
		}
		return Some(Float(x)), nil
	case float32:
		return p.FromUntyped(float64(x))
	case int:
		return p.fromInt(int64(x)), nil
	case int64:
		return p.fromInt(x), nil
	case int32:
		return p.fromInt(int64(x)), nil
	case uint64:
		if p == IntegralAsInt && x <= math.MaxInt64 {
			return Some(Int(int64(x))), nil
		}
		return Some(Float(float64(x))), nil
	case []any:
		return NullValue{}, &ConversionError{Kind: "array"}
	case map[string]any:
		return NullValue{}, &ConversionError{Kind: "object"}
	}
	return NullValue{}, &ConversionError{Kind: fmt.Sprintf("%T", raw)}
}

func (p NumberPolicy) fromInt(i int64) NullValue {
	if p == IntegralAsInt {
		return Some(Int(i))
	}
	return Some(Float(float64(i)))
}

func (p NumberPolicy) fromNumber(n json.Number) (Value, error) {
	if p == IntegralAsInt {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return Int(i), nil
		}
	}
	if f, err := n.Float64(); err == nil {
		return Float(f), nil
	}
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("number %s out of range: %w", n, err)
	}
	return Int(int64(u)), nil
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// ErrTrailingData is returned when a body holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// decodeUntyped decodes exactly one JSON value keeping numbers as json.Number.
func decodeUntyped(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return raw, nil
}
