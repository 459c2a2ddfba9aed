package table

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tbl builds a table whose primary key "id" references the given parents.
func tbl(id string, parents ...string) Schema {
	pk := Column{Name: "id", Type: Int, PrimaryKey: true}
	for _, p := range parents {
		pk.ForeignKeys = append(pk.ForeignKeys, ForeignKey{Table: p, Column: "id"})
	}
	return Schema{Name: id, Table: id, Columns: []Column{pk, {Name: "name", Type: String}}}
}

func ids(tables []Schema) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Table
	}
	return out
}

func TestIsRoot(t *testing.T) {
	noPK := Schema{Table: "log", Columns: []Column{{Name: "msg", Type: String}}}
	fkNotPK := Schema{Table: "order", Columns: []Column{
		{Name: "id", Type: Int, PrimaryKey: true},
		{Name: "customer", Type: Int, ForeignKeys: []ForeignKey{{Table: "customer", Column: "id"}}},
	}}

	var tests = []struct {
		name   string
		schema Schema
		root   bool
	}{
		{"plain primary key", tbl("item"), true},
		{"no primary key", noPK, true},
		{"foreign key outside primary key", fkNotPK, true},
		{"primary key is foreign key", tbl("game", "item"), false},
		{"primary key references itself", tbl("loop", "loop"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schema.IsRoot(); got != tt.root {
				t.Errorf("\ngot root %v, wanted %v", got, tt.root)
			}
		})
	}
}

func TestPrimaryKeyUsesFirstFlaggedColumn(t *testing.T) {
	s := Schema{Table: "pair", Columns: []Column{
		{Name: "a", PrimaryKey: true},
		{Name: "b", PrimaryKey: true, ForeignKeys: []ForeignKey{{Table: "x", Column: "id"}}},
	}}
	pk, ok := s.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "a", pk.Name)
	assert.True(t, s.IsRoot())
}

func TestBuildForestChain(t *testing.T) {
	forest, orphans := BuildForest([]Schema{tbl("c", "b"), tbl("a"), tbl("b", "a")})

	require.Empty(t, orphans)
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "a", root.Schema.Table)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "b", root.Children[0].Schema.Table)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "c", root.Children[0].Children[0].Schema.Table)
	assert.Empty(t, root.Children[0].Children[0].Children)
}

func TestBuildForestOrphans(t *testing.T) {
	tables := []Schema{
		tbl("item"),
		tbl("game", "item"),
		tbl("ghost", "missing"),
		tbl("x", "y"),
		tbl("y", "x"),
		tbl("self", "self"),
	}

	forest, orphans := BuildForest(tables)

	require.Len(t, forest, 1)
	assert.Equal(t, []string{"ghost", "x", "y", "self"}, ids(orphans))
}

func TestBuildForestClaimsOnce(t *testing.T) {
	// "both" extends two roots; the first root to be expanded keeps it
	tables := []Schema{tbl("a"), tbl("b"), tbl("both", "a", "b")}

	forest, orphans := BuildForest(tables)

	require.Empty(t, orphans)
	require.Len(t, forest, 2)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "both", forest[0].Children[0].Schema.Table)
	assert.Empty(t, forest[1].Children)
}

func TestBuildForestSelfReferenceBelowRoot(t *testing.T) {
	forest, orphans := BuildForest([]Schema{tbl("a"), tbl("b", "a", "b")})

	require.Empty(t, orphans)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Empty(t, forest[0].Children[0].Children)
}

func TestFlatten(t *testing.T) {
	var tests = []struct {
		name   string
		tables []Schema
		base   string
		leaves []string
	}{
		{"single", []Schema{tbl("item")}, "item", nil},
		{"chain drops intermediate", []Schema{tbl("a"), tbl("b", "a"), tbl("c", "b")}, "a", []string{"c"}},
		{"two siblings", []Schema{tbl("a"), tbl("b", "a"), tbl("d", "a")}, "a", []string{"b", "d"}},
		{"mixed depth", []Schema{tbl("a"), tbl("b", "a"), tbl("c", "b"), tbl("d", "a"), tbl("e", "b")}, "a", []string{"c", "d", "e"}},
		{"long chain", []Schema{tbl("a"), tbl("b", "a"), tbl("c", "b"), tbl("d", "c")}, "a", []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, orphans := BuildForest(tt.tables)
			require.Empty(t, orphans)
			require.Len(t, forest, 1)

			def := forest[0].Flatten()
			assert.Equal(t, tt.base, def.Base.Table)

			got := ids(def.Leaves)
			sort.Strings(got)
			if tt.leaves == nil {
				assert.False(t, def.IsFamily())
				assert.Empty(t, got)
				return
			}
			assert.True(t, def.IsFamily())
			if diff := cmp.Diff(tt.leaves, got); diff != "" {
				t.Errorf("leaves mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOuterLeavesOrder(t *testing.T) {
	// leaves collected from deeper branches come before direct terminal children
	forest, _ := BuildForest([]Schema{tbl("a"), tbl("d", "a"), tbl("b", "a"), tbl("c", "b")})
	require.Len(t, forest, 1)

	leaves, ok := forest[0].OuterLeaves()
	require.True(t, ok)
	assert.Equal(t, []string{"c", "d"}, ids(leaves))
}
