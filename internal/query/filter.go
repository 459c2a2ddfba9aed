package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Filter maps column names to the comparison constraining them. All
// comparisons must hold for a row to match. The zero Filter matches all rows.
type Filter struct {
	m map[string]Comparison
}

// NewFilter returns an empty filter.
func NewFilter() Filter {
	return Filter{m: make(map[string]Comparison)}
}

// Insert sets or replaces the comparison for name. Column names are not
// checked against any schema here.
func (f *Filter) Insert(name string, c Comparison) {
	if f.m == nil {
		f.m = make(map[string]Comparison)
	}
	f.m[name] = c
}

// Get returns the comparison for name.
func (f Filter) Get(name string) (Comparison, bool) {
	c, ok := f.m[name]
	return c, ok
}

// Len returns the number of constrained columns.
func (f Filter) Len() int { return len(f.m) }

// Columns returns the constrained column names in sorted order.
func (f Filter) Columns() []string {
	names := make([]string, 0, len(f.m))
	for name := range f.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f.m))
	for _, name := range f.Columns() {
		parts = append(parts, fmt.Sprintf("%s %v", name, f.m[name]))
	}
	return strings.Join(parts, " and ")
}

// MarshalJSON encodes the filter as {"column": [operator, operand], ...}.
// An empty filter encodes as {}.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.m)
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var m map[string]Comparison
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]Comparison)
	}
	f.m = m
	return nil
}
