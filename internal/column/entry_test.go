package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntries(t *testing.T) {
	body := `[
	  {"id": 1, "name": "Settlers of Catan", "price": 39.5, "used": false, "note": null},
	  {"id": 2, "name": "Ticket to ride", "price": 45, "used": true, "note": "boxed"}
	]`

	entries, err := NumbersAsFloat.DecodeEntries([]byte(body), false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, []string{"id", "name", "note", "price", "used"}, first.Columns())
	assert.True(t, first["id"].Equal(Some(Float(1))))
	assert.True(t, first["name"].Equal(Some(String("Settlers of Catan"))))
	assert.True(t, first["used"].Equal(Some(Bool(false))))
	assert.False(t, first["note"].Valid)

	assert.True(t, entries[1]["price"].Equal(Some(Float(45))))
}

func TestDecodeEntriesSingle(t *testing.T) {
	entries, err := IntegralAsInt.DecodeEntries([]byte(`{"id": 3, "name": "Go"}`), true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0]["id"].Equal(Some(Int(3))))
}

func TestDecodeEntriesErrors(t *testing.T) {
	var tests = []struct {
		name   string
		body   string
		single bool
		index  int
		column string
	}{
		{"array expected", `{"id": 1}`, false, 0, ""},
		{"row is not an object", `[{"id": 1}, 5]`, false, 1, ""},
		{"single is not an object", `[{"id": 1}]`, true, 0, ""},
		{"nested array field", `[{"id": 1}, {"id": 2}, {"tags": ["a"]}]`, false, 2, "tags"},
		{"nested object field", `{"meta": {"a": 1}}`, true, 0, "meta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NumbersAsFloat.DecodeEntries([]byte(tt.body), tt.single)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.index, de.Index)
			assert.Equal(t, tt.column, de.Column)
		})
	}
}

func TestDecodeEntriesInvalidJSON(t *testing.T) {
	_, err := NumbersAsFloat.DecodeEntries([]byte(`[{`), false)
	require.Error(t, err)
	var de *DecodeError
	assert.NotErrorAs(t, err, &de)
}

func TestDecodeEntriesTrailingData(t *testing.T) {
	var tests = []struct {
		name   string
		body   string
		single bool
	}{
		{"second value", `[{"id": 1}] {"garbage":`, false},
		{"second array", `[{"id": 1}][]`, false},
		{"stray bracket", `{"id": 1}]`, true},
		{"trailing word", `{"id": 1} x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NumbersAsFloat.DecodeEntries([]byte(tt.body), tt.single)
			assert.ErrorIs(t, err, ErrTrailingData)
			assert.Nil(t, entries)
		})
	}

	entries, err := NumbersAsFloat.DecodeEntries([]byte("[{\"id\": 1}]\n  "), false)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
