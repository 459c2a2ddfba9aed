package main

import (
	"errors"
	"fmt"
	"strings"

	"schemaview/internal/column"
	"schemaview/internal/query"
	"schemaview/internal/table"
)

var errWhere = errors.New("invalid condition")

// whereOps are tried longest first at the earliest operator position.
var whereOps = []struct {
	token string
	op    query.Operator
}{
	{"!~", query.NotIn},
	{"<=", query.LessEqual},
	{">=", query.GreaterEqual},
	{"==", query.Equal},
	{"!=", query.NotEqual},
	{"~", query.In},
	{"@", query.Range},
	{"<", query.Less},
	{">", query.Greater},
}

// parseWhere turns conditions like "price>40", "id@1..3" or "name~a|b" into a
// filter, typing every operand with the column it applies to.
func parseWhere(conds []string, schema table.Schema) (query.Filter, error) {
	f := query.NewFilter()
	for _, cond := range conds {
		name, c, err := parseCondition(cond, schema)
		if err != nil {
			return f, err
		}
		f.Insert(name, c)
	}
	return f, nil
}

func parseCondition(cond string, schema table.Schema) (string, query.Comparison, error) {
	pos, token, op := -1, "", query.Operator("")
	for _, o := range whereOps {
		i := strings.Index(cond, o.token)
		if i < 0 {
			continue
		}
		if pos < 0 || i < pos || (i == pos && len(o.token) > len(token)) {
			pos, token, op = i, o.token, o.op
		}
	}
	if pos <= 0 {
		return "", query.Comparison{}, fmt.Errorf("%w: %q", errWhere, cond)
	}

	name := strings.TrimSpace(cond[:pos])
	col, ok := schema.Column(name)
	if !ok {
		return "", query.Comparison{}, fmt.Errorf("%w: %q has no column %q", errWhere, schema.Table, name)
	}
	rest := strings.TrimSpace(cond[pos+len(token):])

	var parts []string
	switch op {
	case query.In, query.NotIn:
		if rest != "" {
			parts = strings.Split(rest, "|")
		}
	case query.Range:
		lo, hi, found := strings.Cut(rest, "..")
		if !found {
			return "", query.Comparison{}, fmt.Errorf("%w: range %q needs min..max", errWhere, rest)
		}
		parts = []string{lo, hi}
	default:
		parts = []string{rest}
	}

	values := make([]column.Value, 0, len(parts))
	for _, p := range parts {
		v, err := column.FromText(col, strings.TrimSpace(p))
		if err != nil {
			return "", query.Comparison{}, err
		}
		if !v.Valid {
			return "", query.Comparison{}, fmt.Errorf("%w: empty operand for %s", errWhere, name)
		}
		values = append(values, v.Value)
	}
	return name, query.Comparison{Op: op, Values: values}, nil
}
