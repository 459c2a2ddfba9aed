package extractors

import (
	"testing"

	"schemaview/internal/db"
)

func TestDialects(t *testing.T) {
	var tests = []struct {
		name        string
		dialect     db.Dialect
		ident       string
		quoted      string
		placeholder string
	}{
		{"sqlite", sqliteExtractor{}, `board"game`, `"board""game"`, "?"},
		{"postgres", pgExtractor{}, "item", `"item"`, "$3"},
		{"mysql", myExtractor{}, "it`em", "`it``em`", "?"},
		{"sqlserver", msExtractor{}, "it]em", "[it]]em]", "@p3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Quote(tt.ident); got != tt.quoted {
				t.Errorf("\ngot %v, wanted %v", got, tt.quoted)
			}
			if got := tt.dialect.Placeholder(3); got != tt.placeholder {
				t.Errorf("\ngot %v, wanted %v", got, tt.placeholder)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	registered := map[string]bool{}
	for _, name := range db.RegisteredDialects() {
		registered[name] = true
	}
	for _, name := range []string{"sqlite", "sqlite3", "postgres", "postgresql", "mysql", "mariadb", "sqlserver", "mssql"} {
		if !registered[name] {
			t.Errorf("\ndialect %v not registered in %v", name, db.RegisteredDialects())
		}
	}
}
