package querysql

import (
	"fmt"
	"strings"
	"unicode/utf16"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/roach88/seekdemo/internal/mapping"
)

// Dialect spells SQL for one database engine.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string

	// Quote quotes an identifier.
	Quote(ident string) string

	// Placeholder returns the marker for the n-th parameter (1-based).
	Placeholder(n int) string

	// TextLiteral renders s as a literal typed for the given encoding.
	TextLiteral(s string, enc mapping.Encoding) string

	// BindText returns the driver argument for a text value compared with
	// prop, and the parameter type the database will see.
	BindText(s string, prop mapping.Property) (arg any, dbType string)
}

// SQLServer is the Microsoft SQL Server dialect (go-mssqldb).
//
// Wide literals carry the N prefix. Parameters follow the declared
// encoding: narrow properties are sent as mssql.VarChar, everything else as
// a plain Go string, which the driver types as nvarchar.
type SQLServer struct{}

func (SQLServer) Name() string { return "sqlserver" }

func (SQLServer) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (SQLServer) Placeholder(n int) string {
	return fmt.Sprintf("@p%d", n)
}

func (SQLServer) TextLiteral(s string, enc mapping.Encoding) string {
	lit := quoteString(s)
	if enc == mapping.EncodingNarrow {
		return lit
	}
	return "N" + lit
}

func (SQLServer) BindText(s string, prop mapping.Property) (any, string) {
	if prop.Type.Kind == mapping.KindText && prop.Type.Encoding == mapping.EncodingNarrow {
		return mssql.VarChar(s), declaredType("varchar", len(s), len(s))
	}
	units := len(utf16.Encode([]rune(s)))
	return s, declaredType("nvarchar", units*2, units)
}

// declaredType spells a text parameter the way go-mssqldb declares it to
// the server: sized to the value, max when empty or over 8000 bytes.
func declaredType(name string, size, length int) string {
	if size == 0 || size > 8000 {
		return name + "(max)"
	}
	return fmt.Sprintf("%s(%d)", name, length)
}

// SQLite is the SQLite dialect (go-sqlite3). SQLite stores all text the
// same way, so encodings do not change literals or parameters.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) TextLiteral(s string, _ mapping.Encoding) string {
	return quoteString(s)
}

func (SQLite) BindText(s string, _ mapping.Property) (any, string) {
	return s, "TEXT"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// DialectFor returns the dialect registered under a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlserver", "mssql":
		return SQLServer{}, nil
	case "sqlite3", "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (want sqlserver or sqlite3)", driver)
	}
}
