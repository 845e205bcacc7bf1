package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/seekdemo/internal/mapping"
)

// ErrTableNotFound is returned by ColumnTypes for a table with no columns.
var ErrTableNotFound = errors.New("table not found")

// ColumnTypes returns the declared type of every column of table, keyed by
// column name. Types the mapping layer does not model (dates, blobs, ...)
// are returned as mapping.Unmodelled.
func (s *Store) ColumnTypes(ctx context.Context, table string) (map[string]mapping.StoreType, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch s.driver {
	case DriverSQLite:
		rows, err = s.Query(ctx, `SELECT name, type, NULL FROM pragma_table_info(?)`, table)
	case DriverSQLServer:
		rows, err = s.Query(ctx, `
			SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_NAME = @p1
			ORDER BY ORDINAL_POSITION
		`, table)
	default:
		return nil, fmt.Errorf("introspection not supported for driver %q", s.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	types := make(map[string]mapping.StoreType)
	found := 0
	for rows.Next() {
		var (
			name, dataType string
			length         sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &length); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		found++

		if length.Valid {
			if length.Int64 < 0 {
				dataType += "(max)"
			} else {
				dataType += "(" + strconv.FormatInt(length.Int64, 10) + ")"
			}
		}
		st, err := mapping.ParseStoreType(dataType)
		if err != nil {
			st = mapping.Unmodelled(dataType)
		}
		types[name] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return types, nil
}
