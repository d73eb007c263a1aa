package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenMemoryDB opens a fresh in-memory sqlite database with `schema` applied,
// it is closed when the test finishes.
func OpenMemoryDB(t testing.TB, schema string) *sql.DB {
	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is its own database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlite.Close() })

	if schema != "" {
		_, err = sqlite.Exec(schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return sqlite
}

// Float returns a pointer to v, for building nullable metrics in tests.
func Float(v float64) *float64 {
	return &v
}
