// Package query holds the comparisons, filters and selections used to
// request rows from the service.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"schemaview/internal/column"
)

// Operator is the wire token of a comparison.
type Operator string

const (
	Less         Operator = "<"
	Greater      Operator = ">"
	LessEqual    Operator = "<="
	GreaterEqual Operator = ">="
	Equal        Operator = "=="
	NotEqual     Operator = "!="
	In           Operator = "in"
	NotIn        Operator = "not_in"
	Range        Operator = "range"
)

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrOperand         = errors.New("invalid operand")
)

func (op Operator) valid() bool {
	switch op {
	case Less, Greater, LessEqual, GreaterEqual, Equal, NotEqual, In, NotIn, Range:
		return true
	}
	return false
}

// IsList reports whether the operator takes a list of values.
func (op Operator) IsList() bool {
	return op == In || op == NotIn
}

// Comparison constrains a column with an operator and its operands.
// Unary operators use Values[0], In/NotIn use all Values and Range uses
// Values[0] and Values[1] as inclusive bounds.
type Comparison struct {
	Op     Operator
	Values []column.Value
}

func Le(v column.Value) Comparison  { return Comparison{Op: Less, Values: []column.Value{v}} }
func Ge(v column.Value) Comparison  { return Comparison{Op: Greater, Values: []column.Value{v}} }
func Leq(v column.Value) Comparison { return Comparison{Op: LessEqual, Values: []column.Value{v}} }
func Geq(v column.Value) Comparison { return Comparison{Op: GreaterEqual, Values: []column.Value{v}} }
func Eq(v column.Value) Comparison  { return Comparison{Op: Equal, Values: []column.Value{v}} }
func Neq(v column.Value) Comparison { return Comparison{Op: NotEqual, Values: []column.Value{v}} }

// AnyOf matches values contained in vs.
func AnyOf(vs ...column.Value) Comparison { return Comparison{Op: In, Values: vs} }

// NoneOf matches values not contained in vs.
func NoneOf(vs ...column.Value) Comparison { return Comparison{Op: NotIn, Values: vs} }

// Between matches values in [min, max]. The bounds are not reordered.
func Between(min, max column.Value) Comparison {
	return Comparison{Op: Range, Values: []column.Value{min, max}}
}

func (c Comparison) String() string {
	switch {
	case c.Op.IsList():
		return fmt.Sprintf("%s %v", c.Op, c.Values)
	case c.Op == Range && len(c.Values) == 2:
		return fmt.Sprintf("%s [%v, %v]", c.Op, c.Values[0], c.Values[1])
	case len(c.Values) > 0:
		return fmt.Sprintf("%s %v", c.Op, c.Values[0])
	}
	return string(c.Op)
}

func (c Comparison) validate() error {
	if !c.Op.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, c.Op)
	}
	switch {
	case c.Op.IsList():
		return nil
	case c.Op == Range:
		if len(c.Values) != 2 {
			return fmt.Errorf("%w: %s needs 2 bounds, got %d", ErrOperand, c.Op, len(c.Values))
		}
	default:
		if len(c.Values) != 1 {
			return fmt.Errorf("%w: %s needs 1 value, got %d", ErrOperand, c.Op, len(c.Values))
		}
	}
	return nil
}

// MarshalJSON encodes the comparison as [operator, operand].
func (c Comparison) MarshalJSON() ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	var operand any
	if c.Op.IsList() || c.Op == Range {
		values := c.Values
		if values == nil {
			values = []column.Value{}
		}
		operand = values
	} else {
		operand = c.Values[0]
	}
	return json.Marshal([]any{c.Op, operand})
}

// UnmarshalJSON decodes [operator, operand]. Operands must be scalars;
// null operands are rejected.
func (c *Comparison) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: comparison must be [operator, operand]", ErrOperand)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: comparison must have 2 elements, got %d", ErrOperand, len(pair))
	}

	var op Operator
	if err := json.Unmarshal(pair[0], &op); err != nil {
		return fmt.Errorf("%w: operator must be a string", ErrUnknownOperator)
	}
	if !op.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}

	var values []column.Value
	if op.IsList() || op == Range {
		trimmed := bytes.TrimSpace(pair[1])
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return fmt.Errorf("%w: %s expects a list", ErrOperand, op)
		}
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("%w: %v", ErrOperand, err)
		}
	} else {
		var v column.Value
		if err := json.Unmarshal(pair[1], &v); err != nil {
			return fmt.Errorf("%w: %v", ErrOperand, err)
		}
		values = []column.Value{v}
	}

	parsed := Comparison{Op: op, Values: values}
	if err := parsed.validate(); err != nil {
		return err
	}
	*c = parsed
	return nil
}
