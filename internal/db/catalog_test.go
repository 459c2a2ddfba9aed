package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaview/internal/table"
)

func TestColumnTypeOf(t *testing.T) {
	var tests = []struct {
		sqlType string
		want    table.ColumnType
	}{
		{"INTEGER", table.Int},
		{"bigint", table.Int},
		{"int(11) unsigned", table.Int},
		{"int(10) unsigned zerofill", table.Int},
		{"tinyint(1)", table.Bool},
		{"tinyint(4)", table.Int},
		{"boolean", table.Bool},
		{"bit", table.Bool},
		{"REAL", table.Float},
		{"numeric(10,2)", table.Float},
		{"double precision", table.Float},
		{"NUMBER", table.Float},
		{"TEXT", table.String},
		{"character varying", table.String},
		{"VARCHAR(20)", table.String},
		{"interval", table.String},
		{"point", table.String},
		{"timestamp with time zone", table.String},
		{"", table.String},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			if got := ColumnTypeOf(tt.sqlType); got != tt.want {
				t.Errorf("\ngot %v, wanted %v", got, tt.want)
			}
		})
	}
}

func TestCatalogSchemas(t *testing.T) {
	cat := NewCatalog("public")
	item := Location{Schema: "public", Name: "item"}
	game := Location{Schema: "public", Name: "board_game"}
	audit := Location{Schema: "audit", Name: "log"}

	cat.AddTable(item)
	cat.AddTable(game)
	cat.AddTable(audit)
	cat.AddTable(item)

	cat.AddColumn(item, "id", "integer", false)
	cat.AddColumn(item, "kind", "text", false)
	cat.AddColumn(item, "price", "numeric", true)
	cat.AddColumn(game, "id", "integer", true)
	cat.AddColumn(game, "players", "smallint", true)
	cat.AddColumn(audit, "msg", "text", true)
	cat.AddColumn(Location{Name: "ghost"}, "id", "integer", false)

	cat.SetPrimaryKey(item, "id")
	cat.SetPrimaryKey(game, "id")
	cat.SetPrimaryKey(game, "missing")
	cat.AddForeignKey(game, "id", item, "")
	cat.AddForeignKey(audit, "msg", item, "kind")

	schemas := cat.Schemas(map[string]string{"item": "kind", "board_game": "nope"})
	require.Len(t, schemas, 3)

	assert.Equal(t, "item", schemas[0].Table)
	assert.Equal(t, "Item", schemas[0].Name)
	require.NotNil(t, schemas[0].Polymorphic)
	assert.Equal(t, "kind", *schemas[0].Polymorphic)
	price, _ := schemas[0].Column("price")
	assert.Equal(t, table.Float, price.Type)
	assert.True(t, price.Optional)

	bg := schemas[1]
	assert.Equal(t, "Board game", bg.Name)
	assert.Nil(t, bg.Polymorphic, "marker column must exist")
	pk, ok := bg.PrimaryKey()
	require.True(t, ok)
	assert.False(t, pk.Optional, "primary keys are never optional")
	assert.Equal(t, []table.ForeignKey{{Table: "item", Column: "id"}}, pk.ForeignKeys)
	assert.False(t, bg.IsRoot())

	assert.Equal(t, "audit.log", schemas[2].Table)

	loc, ok := cat.Locate("audit.log")
	require.True(t, ok)
	assert.Equal(t, audit, loc)
	_, ok = cat.Locate("log")
	assert.False(t, ok)

	defs, err := table.Definitions(schemas)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "item", defs[0].Base.Table)
	assert.Equal(t, "board_game", defs[0].Leaves[0].Table)
}
