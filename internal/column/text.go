package column

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"schemaview/internal/table"
)

var (
	// ErrEmpty is returned for empty text in a required non-string column.
	ErrEmpty = errors.New("value is required")
	// ErrParse is returned for text that does not parse as the column type.
	ErrParse = errors.New("invalid value")
	// ErrNonFinite is returned for NaN and infinite floats, which JSON cannot carry.
	ErrNonFinite = errors.New("not a finite number")
)

// ParseError describes why user text could not become a column value.
type ParseError struct {
	Column string
	Type   table.ColumnType
	Text   string
	Err    error // ErrEmpty or ErrParse
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Err == ErrEmpty {
		return fmt.Sprintf("column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("column %s: %v %q for type %s", e.Column, e.Err, e.Text, e.Type)
}

func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// FromText parses user-entered text against the column's declared type.
//
// Empty text is absent for optional columns and the empty string for
// required string columns; any other required column rejects it with ErrEmpty.
func FromText(col table.Column, text string) (NullValue, error) {
	if text == "" {
		switch {
		case col.Optional:
			return NullValue{}, nil
		case col.Type == table.String:
			return Some(String("")), nil
		default:
			return NullValue{}, &ParseError{Column: col.Name, Type: col.Type, Err: ErrEmpty}
		}
	}
	v, err := ParseText(col.Type, text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Column = col.Name
		}
		return NullValue{}, err
	}
	return Some(v), nil
}

// ParseText parses non-empty text as a value of type t.
func ParseText(t table.ColumnType, text string) (Value, error) {
	var (
		v   Value
		err error
	)
	switch t {
	case table.Bool:
		var b bool
		b, err = strconv.ParseBool(text)
		v = Bool(b)
	case table.Int:
		var i int64
		i, err = strconv.ParseInt(text, 10, 64)
		v = Int(i)
	case table.Float:
		var f float64
		f, err = strconv.ParseFloat(text, 64)
		if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
			err = ErrNonFinite
		}
		v = Float(f)
	case table.String:
		v = String(text)
	default:
		err = fmt.Errorf("%w: %v", table.ErrUnknownColumnType, t)
	}
	if err != nil {
		return Value{}, &ParseError{Type: t, Text: text, Err: ErrParse, Cause: err}
	}
	return v, nil
}
