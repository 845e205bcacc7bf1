package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDatabase_SeedsBothTables(t *testing.T) {
	path := NewSQLiteDatabase(t, DemoFixture())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"BadType", "GoodType"} {
		var total, matching int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&total))
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+table+`" WHERE SomeVarchar = ?`, HelloWorld).Scan(&matching))
		assert.Equal(t, 4, total, table)
		assert.Equal(t, 1, matching, table)
	}
}
