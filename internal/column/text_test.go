package column

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaview/internal/table"
)

func col(t table.ColumnType, optional bool) table.Column {
	return table.Column{Name: "c", Type: t, Optional: optional}
}

func TestFromText(t *testing.T) {
	var tests = []struct {
		name   string
		column table.Column
		text   string
		want   NullValue
		err    error
	}{
		{"optional string empty", col(table.String, true), "", NullValue{}, nil},
		{"required string empty", col(table.String, false), "", Some(String("")), nil},
		{"optional int empty", col(table.Int, true), "", NullValue{}, nil},
		{"required int empty", col(table.Int, false), "", NullValue{}, ErrEmpty},
		{"required bool empty", col(table.Bool, false), "", NullValue{}, ErrEmpty},
		{"required float empty", col(table.Float, false), "", NullValue{}, ErrEmpty},
		{"int garbage", col(table.Int, false), "abc", NullValue{}, ErrParse},
		{"int", col(table.Int, false), "42", Some(Int(42)), nil},
		{"int with sign", col(table.Int, true), "+42", Some(Int(42)), nil},
		{"int with decimal point", col(table.Int, false), "4.2", NullValue{}, ErrParse},
		{"int overflow", col(table.Int, false), "9223372036854775808", NullValue{}, ErrParse},
		{"float", col(table.Float, false), "39.99", Some(Float(39.99)), nil},
		{"float from integer text", col(table.Float, false), "40", Some(Float(40)), nil},
		{"float garbage", col(table.Float, false), "forty", NullValue{}, ErrParse},
		{"float NaN", col(table.Float, false), "NaN", NullValue{}, ErrParse},
		{"float infinity", col(table.Float, false), "Inf", NullValue{}, ErrNonFinite},
		{"float negative infinity", col(table.Float, true), "-Inf", NullValue{}, ErrParse},
		{"float overflow", col(table.Float, false), "1e400", NullValue{}, ErrParse},
		{"bool true", col(table.Bool, false), "true", Some(Bool(true)), nil},
		{"bool false", col(table.Bool, false), "false", Some(Bool(false)), nil},
		{"bool garbage", col(table.Bool, false), "yes", NullValue{}, ErrParse},
		{"string passthrough", col(table.String, false), " padded ", Some(String(" padded ")), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromText(tt.column, tt.text)
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err), "got %v, wanted %v", err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %#v, wanted %#v", got, tt.want)
		})
	}
}

func TestParseErrorDetails(t *testing.T) {
	_, err := FromText(table.Column{Name: "price", Type: table.Float}, "cheap")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "price", pe.Column)
	assert.Equal(t, "cheap", pe.Text)
	assert.NotNil(t, pe.Cause)
	assert.Contains(t, err.Error(), "price")
	assert.Contains(t, err.Error(), "float")

	_, err = FromText(table.Column{Name: "id", Type: table.Int}, "")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "column id: value is required", err.Error())
}

func TestParseTextUnknownType(t *testing.T) {
	_, err := ParseText(table.ColumnType(0), "x")
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, table.ErrUnknownColumnType)
}
