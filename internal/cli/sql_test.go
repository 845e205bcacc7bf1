package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQL_SQLServer(t *testing.T) {
	stdout, _, err := execute(t, "sql")
	require.NoError(t, err)

	assert.Contains(t, stdout, "-- GetBadType (sqlserver)")
	assert.Contains(t, stdout, "WHERE [b].[SomeVarchar] = N'Hello World'")
	assert.Contains(t, stdout, "-- GetGoodType (sqlserver)")
	assert.Contains(t, stdout, "WHERE [g].[SomeVarchar] = 'Hello World'")
	assert.Contains(t, stdout, "@p1='Hello World' (nvarchar(11))")
	assert.Contains(t, stdout, "@p1='Hello World' (varchar(11))")
}

func TestSQL_SQLiteJSON(t *testing.T) {
	stdout, _, err := execute(t, "sql", "--dialect", "sqlite3", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   []StatementOutput
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 2)

	assert.Equal(t, "GetBadType", resp.Data[0].Operation)
	assert.Equal(t, "sqlite3", resp.Data[0].Dialect)
	assert.Contains(t, resp.Data[0].SQL, "= ?")
	assert.NotContains(t, resp.Data[0].Text, "N'")
	assert.Equal(t, "GetGoodType", resp.Data[1].Operation)
}

func TestSQL_DoesNotNeedConnection(t *testing.T) {
	_, _, err := execute(t, "sql", "--connection", "sqlserver://unreachable.invalid")
	assert.NoError(t, err)
}

func TestSQL_UnknownDialect(t *testing.T) {
	_, _, err := execute(t, "sql", "--dialect", "oracle")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
