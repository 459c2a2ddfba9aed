package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemaview/internal/db"
	"schemaview/internal/logger"
)

// myExtractor implements Dialect for MySQL (information_schema).
type myExtractor struct{ backtickQuoted }

// This is the extractor for MySQL
func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*db.Catalog, error) {
	var current string
	if err := dbConn.QueryRowContext(ctx, `SELECT COALESCE(DATABASE(), '')`).Scan(&current); err != nil {
		logger.Warn("current database: %v", err)
	}
	cat := db.NewCatalog(current)

	cr, err := dbConn.QueryContext(ctx, `
        SELECT c.table_schema, c.table_name, c.column_name, c.column_type,
               c.is_nullable = 'YES', c.column_key = 'PRI'
        FROM information_schema.columns c
        JOIN information_schema.tables t
          ON t.table_schema = c.table_schema
         AND t.table_name = c.table_name
        WHERE t.table_type = 'BASE TABLE'
          AND c.table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY c.table_schema, c.table_name, c.ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	for cr.Next() {
		var loc db.Location
		var name, columnType string
		var nullable, pk bool
		if err := cr.Scan(&loc.Schema, &loc.Name, &name, &columnType, &nullable, &pk); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cat.AddTable(loc)
		cat.AddColumn(loc, name, columnType, nullable)
		if pk {
			cat.SetPrimaryKey(loc, name)
		}
	}
	if err := cr.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	fkr, err := dbConn.QueryContext(ctx, `
        SELECT table_schema, table_name, column_name,
               referenced_table_schema, referenced_table_name, referenced_column_name
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY table_schema, table_name, constraint_name, ordinal_position`)
	if err == nil {
		defer fkr.Close()
		for fkr.Next() {
			var from, to db.Location
			var fromCol, toCol string
			if err := fkr.Scan(&from.Schema, &from.Name, &fromCol, &to.Schema, &to.Name, &toCol); err == nil {
				cat.AddForeignKey(from, fromCol, to, toCol)
			} else {
				logger.Error("scan foreign key: %v", err)
			}
		}
	} else {
		logger.Error("query foreign key: %v", err)
	}

	return cat, nil
}

func (myExtractor) Placeholder(int) string { return "?" }

func init() {
	db.Register("mysql", myExtractor{})
	db.Register("mariadb", myExtractor{})
}
