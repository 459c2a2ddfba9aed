// Package column holds the typed values stored in table columns and the
// conversions from untyped JSON values and from user-entered text.
package column

import (
	"encoding/json"
	"strconv"

	"schemaview/internal/table"
)

// Value is a bool, int, float or string column value. The zero Value has no
// type and is only used as a placeholder.
type Value struct {
	kind table.ColumnType
	b    bool
	i    int64
	f    float64
	s    string
}

func Bool(b bool) Value { return Value{kind: table.Bool, b: b} }
func Int(i int64) Value { return Value{kind: table.Int, i: i} }
func Float(f float64) Value { return Value{kind: table.Float, f: f} }
func String(s string) Value { return Value{kind: table.String, s: s} }

// Type returns the column type matching the variant.
func (v Value) Type() table.ColumnType { return v.kind }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == table.Bool }
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == table.Int }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == table.Float }
func (v Value) AsString() (string, bool) { return v.s, v.kind == table.String }

// Equal compares two values of the same variant. Values of different
// variants are never equal, even Int(1) and Float(1).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case table.Bool:
		return v.b == o.b
	case table.Int:
		return v.i == o.i
	case table.Float:
		return v.f == o.f
	case table.String:
		return v.s == o.s
	}
	return true
}

// Any returns the underlying Go value: bool, int64, float64 or string.
func (v Value) Any() any {
	switch v.kind {
	case table.Bool:
		return v.b
	case table.Int:
		return v.i
	case table.Float:
		return v.f
	case table.String:
		return v.s
	}
	return nil
}

// String renders the value in its natural textual form.
func (v Value) String() string {
	switch v.kind {
	case table.Bool:
		return strconv.FormatBool(v.b)
	case table.Int:
		return strconv.FormatInt(v.i, 10)
	case table.Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case table.String:
		return v.s
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON accepts any JSON scalar except null, using NumbersAsFloat.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := decodeUntyped(data)
	if err != nil {
		return err
	}
	nv, err := FromUntyped(raw)
	if err != nil {
		return err
	}
	if !nv.Valid {
		return &ConversionError{Kind: "null"}
	}
	*v = nv.Value
	return nil
}

// NullValue is a Value that may be absent.
type NullValue struct {
	Value Value
	Valid bool
}

// Some wraps a present value.
func Some(v Value) NullValue { return NullValue{Value: v, Valid: true} }

// Equal reports whether both are absent or both hold equal values.
func (n NullValue) Equal(o NullValue) bool {
	if n.Valid != o.Valid {
		return false
	}
	return !n.Valid || n.Value.Equal(o.Value)
}

func (n NullValue) String() string {
	if !n.Valid {
		return ""
	}
	return n.Value.String()
}

func (n NullValue) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Value.MarshalJSON()
}

func (n *NullValue) UnmarshalJSON(data []byte) error {
	raw, err := decodeUntyped(data)
	if err != nil {
		return err
	}
	nv, err := FromUntyped(raw)
	if err != nil {
		return err
	}
	*n = nv
	return nil
}
