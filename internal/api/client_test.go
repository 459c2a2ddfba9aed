package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaview/internal/column"
	"schemaview/internal/query"
	"schemaview/internal/table"
)

const tablesBody = `[
  {"name": "Item", "table": "item", "polymorphic": "kind", "columns": [
    {"name": "id", "type": "int", "optional": false, "primary_key": true, "foreign_keys": [], "mapper": null},
    {"name": "price", "type": "float", "optional": false, "primary_key": false, "foreign_keys": [], "mapper": null}
  ]},
  {"name": "Game", "table": "game", "polymorphic": null, "columns": [
    {"name": "id", "type": "int", "optional": false, "primary_key": true, "foreign_keys": [{"table": "item", "column": "id"}], "mapper": null}
  ]},
  {"name": "Board game", "table": "board_game", "polymorphic": null, "columns": [
    {"name": "id", "type": "int", "optional": false, "primary_key": true, "foreign_keys": [{"table": "game", "column": "id"}], "mapper": null}
  ]},
  {"name": "Lost", "table": "lost", "polymorphic": null, "columns": [
    {"name": "id", "type": "int", "optional": false, "primary_key": true, "foreign_keys": [{"table": "nowhere", "column": "id"}], "mapper": null}
  ]}
]`

type recorded struct {
	method      string
	path        string
	contentType string
	body        string
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*rec = recorded{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestTables(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, tablesBody)
	c := New(srv.URL + "/")

	defs, err := c.Tables(context.Background())

	var schemaErr *table.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Orphans, 1)
	assert.Equal(t, "lost", schemaErr.Orphans[0].Table)

	require.Len(t, defs, 1)
	assert.Equal(t, "item", defs[0].Base.Table)
	require.Len(t, defs[0].Leaves, 1)
	assert.Equal(t, "board_game", defs[0].Leaves[0].Table)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/tables", rec.path)
	assert.Equal(t, "application/json", rec.contentType)
}

func TestTablesBadJSON(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"not": "a list"}`)
	_, err := New(srv.URL).Tables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode tables")
}

func TestGet(t *testing.T) {
	f := query.NewFilter()
	f.Insert("price", query.Ge(column.Float(40)))

	var tests = []struct {
		name     string
		sel      query.Selection
		response string
		path     string
		body     string
		rows     int
	}{
		{"all", query.All(), `[{"id": 1}, {"id": 2}]`, "/api/items/item", "{}", 2},
		{"by id", query.ByID(2), `{"id": 2, "price": 45.5}`, "/api/item/item/2", "", 1},
		{"filter", query.Where(f), `[{"id": 2, "price": 45.5}]`, "/api/items/item", `{"price": [">", 40]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, tt.response)

			rows, err := New(srv.URL).Get(context.Background(), "item", tt.sel)
			require.NoError(t, err)
			assert.Len(t, rows, tt.rows)
			assert.Equal(t, tt.path, rec.path)
			if tt.body == "" {
				assert.Empty(t, rec.body)
			} else {
				assert.JSONEq(t, tt.body, rec.body)
			}
		})
	}
}

func TestGetNumberPolicy(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"id": 2}`)

	rows, err := New(srv.URL).Get(context.Background(), "item", query.ByID(2))
	require.NoError(t, err)
	assert.True(t, rows[0]["id"].Equal(column.Some(column.Float(2))))

	rows, err = New(srv.URL, WithNumberPolicy(column.IntegralAsInt)).Get(context.Background(), "item", query.ByID(2))
	require.NoError(t, err)
	assert.True(t, rows[0]["id"].Equal(column.Some(column.Int(2))))
}

func TestGetMalformedRows(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[1, 2]`)

	_, err := New(srv.URL).Get(context.Background(), "item", query.All())
	var de *column.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestResponseError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, "unknown column: colour\n")

	_, err := New(srv.URL).Get(context.Background(), "item", query.All())

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "service returned 400: unknown column: colour", err.Error())
}

func TestRequestError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "[]")
	srv.Close()

	_, err := New(srv.URL).Schemas(context.Background())
	require.Error(t, err)
	var re *ResponseError
	assert.False(t, errors.As(err, &re))
}
