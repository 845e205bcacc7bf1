package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Driver names accepted by Open.
const (
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite3"
)

// ErrUnavailable wraps every failure to reach the database in Open.
var ErrUnavailable = errors.New("failed to connect to database")

// Store wraps the database handle for one run.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by dsn and verifies the connection.
// The returned Store must be closed by the caller.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLServer && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	if driver == DriverSQLite {
		ro, err := readOnlyDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		dsn = ro
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return &Store{db: db, driver: driver}, nil
}

// readOnlyDSN rewrites a SQLite path or file: URI to open in mode=ro, so
// a missing file fails the ping instead of being created empty. In-memory
// databases are left alone.
func readOnlyDSN(dsn string) (string, error) {
	if dsn == ":memory:" {
		return dsn, nil
	}
	if !strings.HasPrefix(dsn, "file:") {
		return "file:" + (&url.URL{Path: dsn}).EscapedPath() + "?mode=ro", nil
	}

	path, rawQuery, _ := strings.Cut(dsn, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid sqlite uri %q: %w", dsn, err)
	}
	if q.Get("mode") == "memory" {
		return dsn, nil
	}
	q.Set("mode", "ro")
	return path + "?" + q.Encode(), nil
}

// Close closes the database connection. Safe to call more than once.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store is closed")
	}
	return s.db.QueryContext(ctx, query, args...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
