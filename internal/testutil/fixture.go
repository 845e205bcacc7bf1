// Package testutil builds SQLite databases shaped like the demo's target
// schema.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// HelloWorld is the literal both demo queries filter on.
const HelloWorld = "Hello World"

// Fixture describes the contents of a demo database.
type Fixture struct {
	// BadTypeColumn and GoodTypeColumn are the declared SomeVarchar types.
	// Both default to VARCHAR(100).
	BadTypeColumn  string
	GoodTypeColumn string

	// BadTypeRows and GoodTypeRows are the SomeVarchar values to insert.
	BadTypeRows  []string
	GoodTypeRows []string
}

// DemoFixture returns a fixture with the same rows in both tables,
// exactly one of them matching HelloWorld.
func DemoFixture() Fixture {
	rows := []string{"Goodbye World", HelloWorld, "hello world", "Hello World!"}
	return Fixture{
		BadTypeRows:  rows,
		GoodTypeRows: rows,
	}
}

// NewSQLiteDatabase creates the fixture in a file under t.TempDir and
// returns its path.
func NewSQLiteDatabase(t testing.TB, f Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer db.Close()

	tables := []struct {
		name   string
		column string
		rows   []string
	}{
		{"BadType", f.BadTypeColumn, f.BadTypeRows},
		{"GoodType", f.GoodTypeColumn, f.GoodTypeRows},
	}

	for _, tbl := range tables {
		column := tbl.column
		if column == "" {
			column = "VARCHAR(100)"
		}

		stmts := []string{
			fmt.Sprintf(`CREATE TABLE %q (Id INTEGER PRIMARY KEY AUTOINCREMENT, SomeVarchar %s NOT NULL)`, tbl.name, column),
			fmt.Sprintf(`CREATE INDEX %q ON %q (SomeVarchar)`, "IX_"+tbl.name+"_SomeVarchar", tbl.name),
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				t.Fatalf("create fixture table %s: %v", tbl.name, err)
			}
		}

		insert := fmt.Sprintf(`INSERT INTO %q (SomeVarchar) VALUES (?)`, tbl.name)
		for _, v := range tbl.rows {
			if _, err := db.Exec(insert, v); err != nil {
				t.Fatalf("seed fixture table %s: %v", tbl.name, err)
			}
		}
	}

	return path
}

// MissingDatabasePath returns a path whose parent directory does not exist,
// so opening it fails.
func MissingDatabasePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing", "demo.db")
}

// MissingDatabaseFile returns a path in an existing directory where no
// database file exists.
func MissingDatabaseFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "typo.db")
}
