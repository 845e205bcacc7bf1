// Package store owns the database/sql handle for one demo run.
//
// Open connects with the named driver and fails if the database cannot be
// reached. Two drivers are registered:
//   - sqlserver (github.com/microsoft/go-mssqldb), the real target
//   - sqlite3 (github.com/mattn/go-sqlite3), for local runs and tests
//
// # SQLite Configuration
//
//   - query_only=ON: the demo never writes
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - one open connection
//
// ColumnTypes reads declared column types from the live schema. It feeds
// the drift report only; queries are always typed from the mapping.
package store
