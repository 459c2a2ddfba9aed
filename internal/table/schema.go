package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ColumnType is the declared value type of a column.
type ColumnType int

const (
	Bool ColumnType = iota + 1
	Int
	Float
	String
)

// ErrUnknownColumnType is returned when a schema declares a type outside bool/int/float/str.
var ErrUnknownColumnType = errors.New("unknown column type")

var columnTypeNames = map[ColumnType]string{
	Bool:   "bool",
	Int:    "int",
	Float:  "float",
	String: "str",
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType maps a wire type name onto a ColumnType.
func ParseColumnType(name string) (ColumnType, error) {
	for t, n := range columnTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumnType, name)
}

func (t ColumnType) MarshalJSON() ([]byte, error) {
	name, ok := columnTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColumnType, int(t))
	}
	return json.Marshal(name)
}

func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseColumnType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ForeignKey references a column of another table.
type ForeignKey struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Column describes one column of a table.
type Column struct {
	Name        string       `json:"name"`
	Type        ColumnType   `json:"type"`
	Optional    bool         `json:"optional"`
	PrimaryKey  bool         `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Mapper      *string      `json:"mapper"` // display hint, passed through untouched
}

// References reports whether any foreign key of the column points at tableID.
func (c Column) References(tableID string) bool {
	for _, fk := range c.ForeignKeys {
		if fk.Table == tableID {
			return true
		}
	}
	return false
}

// Schema describes a table as served by the schema endpoint.
type Schema struct {
	Name        string   `json:"name"`
	Table       string   `json:"table"`
	Polymorphic *string  `json:"polymorphic"`
	Columns     []Column `json:"columns"`
}

// PrimaryKey returns the first column flagged as primary key.
// Only the first one is considered even if the input marks several.
func (s Schema) PrimaryKey() (Column, bool) {
	for _, c := range s.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Column looks up a column by name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IsRoot reports whether the table anchors a hierarchy: it either has no
// primary key or its primary key is not a foreign key.
func (s Schema) IsRoot() bool {
	pk, ok := s.PrimaryKey()
	return !ok || len(pk.ForeignKeys) == 0
}

// extends reports whether the primary key of s references parentID.
func (s Schema) extends(parentID string) bool {
	pk, ok := s.PrimaryKey()
	return ok && pk.References(parentID)
}

// PrettyName renders the table identifier for display: underscores become
// spaces and the first letter is upper-cased.
func (s Schema) PrettyName() string {
	name := strings.ReplaceAll(s.Table, "_", " ")
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
