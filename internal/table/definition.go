package table

import (
	"fmt"
	"strings"
)

// Definition is either a single table or a family made of a base table and
// the leaf tables extending it.
type Definition struct {
	Base   Schema   `json:"base"`
	Leaves []Schema `json:"leaves,omitempty"`
}

// Single wraps a table without descendants.
func Single(s Schema) Definition {
	return Definition{Base: s}
}

// Family groups a base table with its leaves.
func Family(base Schema, leaves []Schema) Definition {
	return Definition{Base: base, Leaves: leaves}
}

// IsFamily reports whether the definition has leaves.
func (d Definition) IsFamily() bool {
	return len(d.Leaves) > 0
}

// Get resolves a table identifier to the base or one of the leaves.
func (d Definition) Get(tableID string) (Schema, bool) {
	if d.Base.Table == tableID {
		return d.Base, true
	}
	for _, leaf := range d.Leaves {
		if leaf.Table == tableID {
			return leaf, true
		}
	}
	return Schema{}, false
}

// Schemas returns the base followed by the leaves.
func (d Definition) Schemas() []Schema {
	return append([]Schema{d.Base}, d.Leaves...)
}

// SchemaError lists tables that could not be attached to any root table.
type SchemaError struct {
	Orphans []Schema
}

func (e *SchemaError) Error() string {
	ids := make([]string, len(e.Orphans))
	for i, o := range e.Orphans {
		ids[i] = o.Table
	}
	return fmt.Sprintf("tables without a resolvable root: %s", strings.Join(ids, ", "))
}

// Definitions resolves a flat schema list into one Definition per root table,
// in input order of the roots. When some tables are orphaned the definitions
// are still returned together with a *SchemaError.
func Definitions(tables []Schema) ([]Definition, error) {
	forest, orphans := BuildForest(tables)
	defs := make([]Definition, 0, len(forest))
	for _, tree := range forest {
		defs = append(defs, tree.Flatten())
	}
	if len(orphans) > 0 {
		return defs, &SchemaError{Orphans: orphans}
	}
	return defs, nil
}

// Lookup finds the definition governing tableID.
func Lookup(defs []Definition, tableID string) (Definition, Schema, bool) {
	for _, d := range defs {
		if s, ok := d.Get(tableID); ok {
			return d, s, true
		}
	}
	return Definition{}, Schema{}, false
}
