package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemaview/internal/db"
	"schemaview/internal/logger"
)

// pgExtractor implements Dialect using information_schema queries.
type pgExtractor struct{ doubleQuoted }

// This is the extractor for PostgreSQL
func (pgExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*db.Catalog, error) {
	cat := db.NewCatalog("public")

	cr, err := dbConn.QueryContext(ctx, `
        SELECT c.table_schema, c.table_name, c.column_name, c.data_type, c.is_nullable = 'YES'
        FROM information_schema.columns c
        JOIN information_schema.tables t
          ON t.table_schema = c.table_schema
         AND t.table_name = c.table_name
        WHERE t.table_type = 'BASE TABLE'
          AND c.table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
        ORDER BY c.table_schema, c.table_name, c.ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	for cr.Next() {
		var loc db.Location
		var name, dataType string
		var nullable bool
		if err := cr.Scan(&loc.Schema, &loc.Name, &name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cat.AddTable(loc)
		cat.AddColumn(loc, name, dataType, nullable)
	}
	if err := cr.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	pkr, err := dbConn.QueryContext(ctx, `
        SELECT kcu.table_schema, kcu.table_name, kcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        WHERE tc.constraint_type = 'PRIMARY KEY'
          AND tc.table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
        ORDER BY kcu.table_schema, kcu.table_name, kcu.ordinal_position`)
	if err == nil {
		defer pkr.Close()
		for pkr.Next() {
			var loc db.Location
			var pkcol string
			if err := pkr.Scan(&loc.Schema, &loc.Name, &pkcol); err == nil {
				cat.SetPrimaryKey(loc, pkcol)
			} else {
				logger.Error("scan primary key: %v", err)
			}
		}
	} else {
		logger.Error("query primary key: %v", err)
	}

	fkr, err := dbConn.QueryContext(ctx, `
        SELECT kcu.table_schema, kcu.table_name, kcu.column_name,
               rkcu.table_schema, rkcu.table_name, rkcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.position_in_unique_constraint = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
        ORDER BY kcu.table_schema, kcu.table_name, tc.constraint_name, kcu.ordinal_position`)
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

func (pgExtractor) Placeholder(n int) string { return numbered("$", n) }

func init() {
	db.Register("postgres", pgExtractor{})
	db.Register("postgresql", pgExtractor{})
}
