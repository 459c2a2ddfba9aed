package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemaview/internal/db"
	"schemaview/internal/logger"
)

// msExtractor implements Dialect for Microsoft SQL Server.
type msExtractor struct{ bracketQuoted }

// This is the extractor for SQL Server
func (msExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*db.Catalog, error) {
	cat := db.NewCatalog("dbo")

	cr, err := dbConn.QueryContext(ctx, `
        SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE,
               CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
        FROM INFORMATION_SCHEMA.COLUMNS c
        JOIN INFORMATION_SCHEMA.TABLES t
          ON t.TABLE_SCHEMA = c.TABLE_SCHEMA
         AND t.TABLE_NAME = c.TABLE_NAME
        WHERE t.TABLE_TYPE = 'BASE TABLE'
        ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`)
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
        SELECT k.TABLE_SCHEMA, k.TABLE_NAME, k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
          ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME
         AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY'
        ORDER BY k.TABLE_SCHEMA, k.TABLE_NAME, k.ORDINAL_POSITION`)
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
        SELECT
          OBJECT_SCHEMA_NAME(fkc.parent_object_id), OBJECT_NAME(fkc.parent_object_id), c.name,
          OBJECT_SCHEMA_NAME(fkc.referenced_object_id), OBJECT_NAME(fkc.referenced_object_id), rc.name
        FROM sys.foreign_key_columns fkc
        JOIN sys.columns c
          ON fkc.parent_object_id = c.object_id
         AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc
          ON fkc.referenced_object_id = rc.object_id
         AND fkc.referenced_column_id = rc.column_id
        ORDER BY fkc.constraint_object_id, fkc.constraint_column_id`)
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

func (msExtractor) Placeholder(n int) string { return numbered("@p", n) }

func init() {
	db.Register("sqlserver", msExtractor{})
	db.Register("mssql", msExtractor{})
}
