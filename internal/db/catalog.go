package db

import (
	"regexp"
	"strings"

	"schemaview/internal/logger"
	"schemaview/internal/table"
)

// Location is where a table lives in the database.
type Location struct {
	Schema string
	Name   string
}

type catalogColumn struct {
	name     string
	sqlType  string
	nullable bool
	pk       bool
	fks      []columnRef
}

// columnRef is a referenced column; column may be empty when the database
// only records the referenced table (SQLite implicit primary key references).
type columnRef struct {
	loc    Location
	column string
}

type catalogTable struct {
	loc     Location
	columns []*catalogColumn
}

func (t *catalogTable) column(name string) *catalogColumn {
	for _, c := range t.columns {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Catalog accumulates what an Extractor reads from the database and turns it
// into table schemas. Tables in the default schema are identified by their
// bare name, others by "schema.name".
type Catalog struct {
	defaultSchema string
	order         []Location
	tables        map[Location]*catalogTable
}

// NewCatalog returns an empty catalog. Tables in defaultSchema get unqualified
// identifiers.
func NewCatalog(defaultSchema string) *Catalog {
	return &Catalog{defaultSchema: defaultSchema, tables: make(map[Location]*catalogTable)}
}

// ID returns the table identifier for a location.
func (c *Catalog) ID(loc Location) string {
	if loc.Schema == "" || strings.EqualFold(loc.Schema, c.defaultSchema) {
		return loc.Name
	}
	return loc.Schema + "." + loc.Name
}

// AddTable registers a table. Adding the same table twice is a no-op.
func (c *Catalog) AddTable(loc Location) {
	if _, ok := c.tables[loc]; ok {
		return
	}
	c.tables[loc] = &catalogTable{loc: loc}
	c.order = append(c.order, loc)
}

// AddColumn appends a column to a registered table.
func (c *Catalog) AddColumn(loc Location, name, sqlType string, nullable bool) {
	t, ok := c.tables[loc]
	if !ok {
		logger.Debug("column %s for unknown table %s.%s", name, loc.Schema, loc.Name)
		return
	}
	t.columns = append(t.columns, &catalogColumn{name: name, sqlType: sqlType, nullable: nullable})
}

// SetPrimaryKey flags a column as (part of) the primary key.
func (c *Catalog) SetPrimaryKey(loc Location, columnName string) {
	if col := c.lookupColumn(loc, columnName); col != nil {
		col.pk = true
	}
}

// AddForeignKey records that from.column references to.toColumn. toColumn may
// be empty to mean the referenced table's primary key.
func (c *Catalog) AddForeignKey(from Location, fromColumn string, to Location, toColumn string) {
	col := c.lookupColumn(from, fromColumn)
	if col == nil {
		return
	}
	col.fks = append(col.fks, columnRef{loc: to, column: toColumn})
}

func (c *Catalog) lookupColumn(loc Location, name string) *catalogColumn {
	t, ok := c.tables[loc]
	if !ok {
		logger.Debug("key on unknown table %s.%s", loc.Schema, loc.Name)
		return nil
	}
	col := t.column(name)
	if col == nil {
		logger.Debug("key on unknown column %s of %s.%s", name, loc.Schema, loc.Name)
	}
	return col
}

// Locate finds the database location of a table identifier.
func (c *Catalog) Locate(id string) (Location, bool) {
	for _, loc := range c.order {
		if c.ID(loc) == id {
			return loc, true
		}
	}
	return Location{}, false
}

// Schemas renders every table as a table.Schema, in registration order.
// polymorphic maps table identifiers to their discriminator column.
func (c *Catalog) Schemas(polymorphic map[string]string) []table.Schema {
	out := make([]table.Schema, 0, len(c.order))
	for _, loc := range c.order {
		t := c.tables[loc]
		id := c.ID(loc)
		s := table.Schema{Table: id, Columns: make([]table.Column, 0, len(t.columns))}
		s.Name = s.PrettyName()
		if marker, ok := polymorphic[id]; ok && t.column(marker) != nil {
			s.Polymorphic = &marker
		}
		for _, col := range t.columns {
			s.Columns = append(s.Columns, table.Column{
				Name:        col.name,
				Type:        ColumnTypeOf(col.sqlType),
				Optional:    col.nullable && !col.pk,
				PrimaryKey:  col.pk,
				ForeignKeys: c.foreignKeys(col),
			})
		}
		out = append(out, s)
	}
	return out
}

func (c *Catalog) foreignKeys(col *catalogColumn) []table.ForeignKey {
	fks := make([]table.ForeignKey, 0, len(col.fks))
	for _, ref := range col.fks {
		name := ref.column
		if name == "" {
			if target, ok := c.tables[ref.loc]; ok {
				for _, tc := range target.columns {
					if tc.pk {
						name = tc.name
						break
					}
				}
			}
		}
		fks = append(fks, table.ForeignKey{Table: c.ID(ref.loc), Column: name})
	}
	return fks
}

var typeArgs = regexp.MustCompile(`\(.*?\)`)

// ColumnTypeOf maps a database type name onto a column type. Unknown types
// are treated as strings.
func ColumnTypeOf(sqlType string) table.ColumnType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if t == "tinyint(1)" {
		return table.Bool
	}
	t = typeArgs.ReplaceAllString(t, "")
	t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(t, " zerofill"), " unsigned"))

	switch t {
	case "bool", "boolean", "bit":
		return table.Bool
	case "int", "integer", "int2", "int4", "int8", "smallint", "bigint", "tinyint", "mediumint",
		"serial", "smallserial", "bigserial":
		return table.Int
	case "float", "float4", "float8", "real", "double", "double precision", "numeric", "decimal", "dec",
		"number", "money", "smallmoney", "binary_float", "binary_double":
		return table.Float
	}
	return table.String
}
