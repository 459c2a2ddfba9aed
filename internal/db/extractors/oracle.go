//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/godror/godror"

	"schemaview/internal/db"
	"schemaview/internal/logger"
)

// oracleExtractor implements Dialect for Oracle.
type oracleExtractor struct{ doubleQuoted }

// This is the extractor for Oracle
func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*db.Catalog, error) {
	var current string
	if err := dbConn.QueryRowContext(ctx, `SELECT user FROM dual`).Scan(&current); err != nil {
		logger.Warn("current user: %v", err)
	}
	cat := db.NewCatalog(current)

	cr, err := dbConn.QueryContext(ctx, `
	    SELECT atc.owner, atc.table_name, atc.column_name, atc.data_type,
	           CASE WHEN atc.nullable = 'Y' THEN 1 ELSE 0 END
	    FROM all_users ausr
	    JOIN all_tables atab
	      ON ausr.username = atab.owner
	    JOIN all_tab_columns atc
	      ON atc.owner = atab.owner
	     AND atc.table_name = atab.table_name
	    WHERE ausr.oracle_maintained = 'N'
	    ORDER BY atc.owner, atc.table_name, atc.column_id`)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	for cr.Next() {
		var loc db.Location
		var name, dataType string
		var nullable int
		if err := cr.Scan(&loc.Schema, &loc.Name, &name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cat.AddTable(loc)
		cat.AddColumn(loc, name, dataType, nullable != 0)
	}
	if err := cr.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	pkr, err := dbConn.QueryContext(ctx, `
	    SELECT acc.owner, acc.table_name, acc.column_name
	    FROM all_users ausr
	    JOIN all_constraints ac
	      ON ausr.username = ac.owner
	    JOIN all_cons_columns acc
	      ON acc.owner = ac.owner
	     AND acc.constraint_name = ac.constraint_name
	    WHERE ac.constraint_type = 'P'
	      AND ausr.oracle_maintained = 'N'
	    ORDER BY acc.owner, acc.table_name, acc.position`)
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
	    SELECT a.owner, a.table_name, acc.column_name,
	           rcc.owner, rcc.table_name, rcc.column_name
	    FROM all_users ausr
	    JOIN all_constraints a
	      ON ausr.username = a.owner
	    JOIN all_cons_columns acc
	      ON a.owner = acc.owner
	     AND a.constraint_name = acc.constraint_name
	    JOIN all_cons_columns rcc
	      ON a.r_owner = rcc.owner
	     AND a.r_constraint_name = rcc.constraint_name
	     AND nvl(acc.position, 0) = nvl(rcc.position, 0)
	    WHERE a.constraint_type = 'R'
	      AND ausr.oracle_maintained = 'N'
	    ORDER BY a.owner, a.table_name, a.constraint_name, acc.position`)
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

func (oracleExtractor) Placeholder(n int) string { return numbered(":", n) }

func init() {
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}
