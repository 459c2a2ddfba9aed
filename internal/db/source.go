package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"schemaview/internal/column"
	"schemaview/internal/logger"
	"schemaview/internal/query"
	"schemaview/internal/table"
	"schemaview/pkg/config"
)

var (
	ErrNotFound      = errors.New("row not found")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoPrimaryKey  = errors.New("table has no primary key")
)

// Source serves table schemas and rows from a live database.
type Source struct {
	db          *sql.DB
	dialect     Dialect
	timeout     time.Duration
	polymorphic map[string]string
	log         *zap.SugaredLogger

	mu      sync.RWMutex
	catalog *Catalog
}

// Open connects to the database and reads its catalog once.
func Open(driver, dsn string, timeoutSec int, polymorphic map[string]string) (*Source, error) {
	driver = config.NormalizeDriver(driver)
	d, err := lookup(driver)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(timeoutSec) * time.Second
	dbConn, err := connect(driver, dsn, timeout)
	if err != nil {
		return nil, err
	}
	s := &Source{
		db:          dbConn,
		dialect:     d,
		timeout:     timeout,
		polymorphic: polymorphic,
		log:         logger.With("component", "db", "driver", driver),
	}
	if _, err := s.refresh(context.Background()); err != nil {
		dbConn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

func (s *Source) refresh(ctx context.Context) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cat, err := s.dialect.Extract(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("extract schema: %w", err)
	}
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return cat, nil
}

// Tables re-reads the catalog and returns every table schema.
func (s *Source) Tables(ctx context.Context) ([]table.Schema, error) {
	cat, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Schemas(s.polymorphic), nil
}

// resolve finds the location and schema of a table identifier in the last
// catalog read.
func (s *Source) resolve(tableID string) (Location, table.Schema, error) {
	s.mu.RLock()
	cat := s.catalog
	s.mu.RUnlock()

	loc, ok := cat.Locate(tableID)
	if !ok {
		return Location{}, table.Schema{}, fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
	}
	for _, schema := range cat.Schemas(s.polymorphic) {
		if schema.Table == tableID {
			return loc, schema, nil
		}
	}
	return Location{}, table.Schema{}, fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
}

// Items returns the rows of tableID matching f. An empty filter returns all rows.
func (s *Source) Items(ctx context.Context, tableID string, f query.Filter) ([]column.Entry, error) {
	loc, schema, err := s.resolve(tableID)
	if err != nil {
		return nil, err
	}
	stmt, args, err := buildSelect(s.dialect, loc, schema, f)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("query rows", "table", tableID, "sql", stmt, "args", len(args))
	return s.query(ctx, schema, stmt, args)
}

// Item returns the row of tableID whose primary key equals id.
func (s *Source) Item(ctx context.Context, tableID string, id int64) (column.Entry, error) {
	loc, schema, err := s.resolve(tableID)
	if err != nil {
		return nil, err
	}
	pk, ok := schema.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, tableID)
	}
	f := query.NewFilter()
	f.Insert(pk.Name, query.Eq(column.Int(id)))
	stmt, args, err := buildSelect(s.dialect, loc, schema, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, schema, stmt, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, tableID, id)
	}
	return rows[0], nil
}

func (s *Source) query(ctx context.Context, schema table.Schema, stmt string, args []any) ([]column.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", schema.Table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", schema.Table, err)
	}
	types := make([]table.ColumnType, len(names))
	for i, name := range names {
		types[i] = table.String
		if col, ok := schema.Column(name); ok {
			types[i] = col.Type
		}
	}

	entries := []column.Entry{}
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", schema.Table, err)
		}
		entry := make(column.Entry, len(names))
		for i, name := range names {
			v, err := typedValue(raw[i], types[i])
			if err != nil {
				return nil, fmt.Errorf("column %s of %s: %w", name, schema.Table, err)
			}
			entry[name] = v
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", schema.Table, err)
	}
	return entries, nil
}

// buildSelect writes a parameterised SELECT for the filter. Column names are
// checked against the schema and every identifier is quoted.
func buildSelect(d Dialect, loc Location, schema table.Schema, f query.Filter) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, col := range schema.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(col.Name))
	}
	if len(schema.Columns) == 0 {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	if loc.Schema != "" {
		b.WriteString(d.Quote(loc.Schema))
		b.WriteString(".")
	}
	b.WriteString(d.Quote(loc.Name))

	var (
		args  []any
		conds []string
	)
	bind := func(v column.Value, t table.ColumnType) string {
		args = append(args, coerce(v, t).Any())
		return d.Placeholder(len(args))
	}

	for _, name := range f.Columns() {
		col, ok := schema.Column(name)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		c, _ := f.Get(name)
		ident := d.Quote(col.Name)

		switch c.Op {
		case query.Less, query.Greater, query.LessEqual, query.GreaterEqual, query.Equal, query.NotEqual:
			if len(c.Values) != 1 {
				return "", nil, fmt.Errorf("%w: %s on %s", query.ErrOperand, c.Op, name)
			}
			conds = append(conds, fmt.Sprintf("%s %s %s", ident, sqlOperator(c.Op), bind(c.Values[0], col.Type)))
		case query.In, query.NotIn:
			if len(c.Values) == 0 {
				// nothing is in an empty list
				if c.Op == query.In {
					conds = append(conds, "1 = 0")
				}
				continue
			}
			marks := make([]string, len(c.Values))
			for i, v := range c.Values {
				marks[i] = bind(v, col.Type)
			}
			op := "IN"
			if c.Op == query.NotIn {
				op = "NOT IN"
			}
			conds = append(conds, fmt.Sprintf("%s %s (%s)", ident, op, strings.Join(marks, ", ")))
		case query.Range:
			if len(c.Values) != 2 {
				return "", nil, fmt.Errorf("%w: range on %s", query.ErrOperand, name)
			}
			lo := bind(c.Values[0], col.Type)
			hi := bind(c.Values[1], col.Type)
			conds = append(conds, fmt.Sprintf("%s BETWEEN %s AND %s", ident, lo, hi))
		default:
			return "", nil, fmt.Errorf("%w: %q", query.ErrUnknownOperator, c.Op)
		}
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	if pk, ok := schema.PrimaryKey(); ok {
		b.WriteString(" ORDER BY ")
		b.WriteString(d.Quote(pk.Name))
	}
	return b.String(), args, nil
}

func sqlOperator(op query.Operator) string {
	switch op {
	case query.Equal:
		return "="
	case query.NotEqual:
		return "<>"
	}
	return string(op)
}

// coerce converts a filter operand to the column type when no precision is
// lost, so that Float(3) compares against integer columns as 3.
func coerce(v column.Value, t table.ColumnType) column.Value {
	switch t {
	case table.Int:
		if f, ok := v.AsFloat(); ok && f == float64(int64(f)) {
			return column.Int(int64(f))
		}
	case table.Float:
		if i, ok := v.AsInt(); ok {
			return column.Float(float64(i))
		}
	}
	return v
}

// typedValue converts a scanned driver value to the declared column type.
func typedValue(raw any, t table.ColumnType) (column.NullValue, error) {
	switch x := raw.(type) {
	case nil:
		return column.NullValue{}, nil
	case []byte:
		return typedText(string(x), t)
	case string:
		return typedText(x, t)
	case time.Time:
		return column.Some(column.String(x.Format(time.RFC3339Nano))), nil
	case bool:
		if t == table.String {
			return column.Some(column.String(fmt.Sprint(x))), nil
		}
		return column.Some(column.Bool(x)), nil
	case int64:
		switch t {
		case table.Bool:
			return column.Some(column.Bool(x != 0)), nil
		case table.Float:
			return column.Some(column.Float(float64(x))), nil
		case table.String:
			return column.Some(column.String(fmt.Sprint(x))), nil
		}
		return column.Some(column.Int(x)), nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return column.NullValue{}, fmt.Errorf("%w: %v", column.ErrNonFinite, x)
		}
		switch t {
		case table.Int:
			if x == float64(int64(x)) {
				return column.Some(column.Int(int64(x))), nil
			}
		case table.String:
			return column.Some(column.String(fmt.Sprint(x))), nil
		}
		return column.Some(column.Float(x)), nil
	}
	return column.Some(column.String(fmt.Sprint(raw))), nil
}

func typedText(s string, t table.ColumnType) (column.NullValue, error) {
	if t == table.String {
		return column.Some(column.String(s)), nil
	}
	v, err := column.ParseText(t, strings.TrimSpace(s))
	if err != nil {
		return column.NullValue{}, err
	}
	return column.Some(v), nil
}
