package db

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strconv"
	"testing"
)

var testdialect string = "testdialect"

type testExtractor struct{}

func (testExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*Catalog, error) {
	return nil, errors.New("not implemented")
}

func (testExtractor) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (testExtractor) Quote(ident string) string { return `"` + ident + `"` }

func TestRegister(t *testing.T) {
	// tests both Register and RegisteredDialects because they take the same setup

	Register(testdialect, testExtractor{})

	if _, ok := dialects[testdialect]; !ok {
		t.Errorf("\ndialect %v not registered correctly in %v", testdialect, dialects)
	}

	rd := RegisteredDialects()

	if !slices.Contains(rd, testdialect) {
		t.Errorf("\nRegisteredDialects returned unexpected result %v", rd)
	}
	if !slices.IsSorted(rd) {
		t.Errorf("\nRegisteredDialects is not sorted: %v", rd)
	}
}

func TestConnectAndExtract(t *testing.T) {

	var tests = []struct {
		name          string
		dialect       string
		dsn           string
		timeout       int
		registerFirst bool
		errIsNil      bool
	}{
		{"unregistered dialect", "nosuchdialect", "", 10, false, false},
		{"sqlite with testExtractor", "sqlite", ":memory:", 10, true, false},
	}

	for _, tt := range tests {
		// Use t.Run to run each case as a subtest with a descriptive name
		t.Run(tt.name, func(t *testing.T) {
			if tt.registerFirst {
				prev, had := dialects[tt.dialect]
				Register(tt.dialect, testExtractor{})
				t.Cleanup(func() {
					if had {
						dialects[tt.dialect] = prev
					} else {
						delete(dialects, tt.dialect)
					}
				})
			}

			_, err := ConnectAndExtract(tt.dialect, tt.dsn, tt.timeout, nil)

			if (err == nil) != tt.errIsNil {
				if tt.errIsNil {
					t.Errorf("\ngot unexpected error: \"%v\"", err)
				} else {
					t.Errorf("\nexpected an error, did not receive one")
				}
			}
		})
	}
}
