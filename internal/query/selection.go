package query

import (
	"encoding/json"
	"fmt"
	"net/url"
)

type selectionKind int

const (
	selectAll selectionKind = iota
	selectByID
	selectWhere
)

// Selection describes which rows of a table to request: all of them, one
// by identifier, or those matching a filter. The zero Selection is All.
type Selection struct {
	kind   selectionKind
	id     int64
	filter Filter
}

// All selects every row.
func All() Selection { return Selection{kind: selectAll} }

// ByID selects the row with the given identifier.
func ByID(id int64) Selection { return Selection{kind: selectByID, id: id} }

// Where selects rows matching f.
func Where(f Filter) Selection { return Selection{kind: selectWhere, filter: f} }

// ID returns the identifier of a ByID selection.
func (s Selection) ID() (int64, bool) { return s.id, s.kind == selectByID }

// Filter returns the filter of a Where selection.
func (s Selection) Filter() (Filter, bool) { return s.filter, s.kind == selectWhere }

// Single reports whether the response holds one row instead of a list.
func (s Selection) Single() bool { return s.kind == selectByID }

// Path returns the request path for tableID.
func (s Selection) Path(tableID string) string {
	if s.kind == selectByID {
		return fmt.Sprintf("/api/item/%s/%d", url.PathEscape(tableID), s.id)
	}
	return "/api/items/" + url.PathEscape(tableID)
}

// Body returns the JSON request body, or nil when the request has none.
// All sends an empty filter.
func (s Selection) Body() ([]byte, error) {
	switch s.kind {
	case selectByID:
		return nil, nil
	case selectWhere:
		return json.Marshal(s.filter)
	}
	return []byte("{}"), nil
}

func (s Selection) String() string {
	switch s.kind {
	case selectByID:
		return fmt.Sprintf("id %d", s.id)
	case selectWhere:
		return "where " + s.filter.String()
	}
	return "all"
}
