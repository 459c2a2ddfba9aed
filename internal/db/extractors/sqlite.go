package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemaview/internal/db"
	"schemaview/internal/logger"
)

// sqliteExtractor implements Dialect for SQLite.
type sqliteExtractor struct{ doubleQuoted }

// This is the extractor for SQLite
func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*db.Catalog, error) {
	cat := db.NewCatalog("main")

	tr, err := dbConn.QueryContext(ctx, `
	    SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	var locs []db.Location
	for tr.Next() {
		var loc db.Location
		if err := tr.Scan(&loc.Name); err != nil {
			tr.Close()
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		cat.AddTable(loc)
		locs = append(locs, loc)
	}
	tr.Close()

	for _, loc := range locs {
		cr, err := dbConn.QueryContext(ctx, `
		    SELECT name, type, "notnull", pk
			FROM pragma_table_info(?)
			ORDER BY cid`, loc.Name)
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", loc.Name, err)
		}
		var pks []string
		for cr.Next() {
			var name, ctype string
			var notnull, pk int
			if err := cr.Scan(&name, &ctype, &notnull, &pk); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", loc.Name, err)
			}
			cat.AddColumn(loc, name, ctype, notnull == 0)
			if pk != 0 {
				pks = append(pks, name)
			}
		}
		cr.Close()
		for _, name := range pks {
			cat.SetPrimaryKey(loc, name)
		}
	}

	// foreign keys need every referenced table registered first
	for _, loc := range locs {
		fkRows, err := dbConn.QueryContext(ctx, `
		    SELECT "table", "from", "to"
			FROM pragma_foreign_key_list(?)
			ORDER BY id, seq`, loc.Name)
		if err != nil {
			logger.Error("query foreign key: %v", err)
			continue
		}
		for fkRows.Next() {
			var target, from, to sql.NullString
			if err := fkRows.Scan(&target, &from, &to); err != nil {
				logger.Error("scan foreign key: %v", err)
				continue
			}
			if target.Valid && from.Valid {
				cat.AddForeignKey(loc, from.String, db.Location{Name: target.String}, to.String)
			}
		}
		fkRows.Close()
	}

	return cat, nil
}

func (sqliteExtractor) Placeholder(int) string { return "?" }

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}
