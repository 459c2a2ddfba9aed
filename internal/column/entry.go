package column

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one row: column name to optional value.
type Entry map[string]NullValue

// Columns returns the column names of the row in sorted order.
func (e Entry) Columns() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeError is returned when a row is not a JSON object or one of its
// fields is not a scalar.
type DecodeError struct {
	Index  int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %s: %v", e.Index, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeEntry converts one decoded JSON value into an Entry.
func (p NumberPolicy) DecodeEntry(raw any) (Entry, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &DecodeError{Err: fmt.Errorf("expected an object, got %s", kindOf(raw))}
	}
	entry := make(Entry, len(obj))
	for name, field := range obj {
		v, err := p.FromUntyped(field)
		if err != nil {
			return nil, &DecodeError{Column: name, Err: err}
		}
		entry[name] = v
	}
	return entry, nil
}

// DecodeEntries decodes a row fetch response. When single is set the body is
// one object, otherwise an array of objects.
func (p NumberPolicy) DecodeEntries(body []byte, single bool) ([]Entry, error) {
	raw, err := decodeUntyped(body)
	if err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	items := []any{raw}
	if !single {
		arr, ok := raw.([]any)
		if !ok {
			return nil, &DecodeError{Err: fmt.Errorf("expected an array of rows, got %s", kindOf(raw))}
		}
		items = arr
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry, err := p.DecodeEntry(item)
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Index = i
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func kindOf(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", raw)
}
