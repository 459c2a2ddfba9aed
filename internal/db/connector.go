package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"schemaview/internal/table"
	"schemaview/pkg/config"
)

type Extractor interface {

	// Extract reads tables, columns, primary keys and foreign keys into a Catalog
	Extract(ctx context.Context, db *sql.DB) (*Catalog, error)
}

// Dialect is an Extractor that also knows how to write queries for its database.
type Dialect interface {
	Extractor

	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string

	// Quote quotes an identifier.
	Quote(ident string) string
}

var dialects = map[string]Dialect{}

// Register makes a Dialect available under name.
func Register(name string, d Dialect) {
	dialects[strings.ToLower(name)] = d
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}

func lookup(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	return d, nil
}

// connect opens and pings the database.
func connect(driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

// ConnectAndExtract connects to the database and returns its table schemas
func ConnectAndExtract(driver, dsn string, timeoutSec int, polymorphic map[string]string) ([]table.Schema, error) {
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
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cat, err := d.Extract(ctx, dbConn)
	if err != nil {
		return nil, err
	}
	return cat.Schemas(polymorphic), nil
}
