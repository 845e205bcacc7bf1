package demo

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seekdemo/internal/dbcontext"
	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/store"
	"github.com/roach88/seekdemo/internal/testutil"
)

func newContext(t *testing.T, path string) *dbcontext.Context {
	t.Helper()
	cfg, err := mapping.Default()
	require.NoError(t, err)

	db, err := dbcontext.New(cfg, dbcontext.Options{
		Driver:           store.DriverSQLite,
		ConnectionString: path,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSearchTextMatchesFixture(t *testing.T) {
	assert.Equal(t, testutil.HelloWorld, SearchText)
}

func TestRun_PrintsProgressInOrder(t *testing.T) {
	path := testutil.NewSQLiteDatabase(t, testutil.DemoFixture())
	var out bytes.Buffer

	res, err := NewRunner(newContext(t, path), &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Executing GetBadType\nExecuting GetGoodType\n", out.String())
	assert.Equal(t, Result{BadTypeRows: 1, GoodTypeRows: 1}, res)
}

func TestGetOperations_ReturnSameRows(t *testing.T) {
	path := testutil.NewSQLiteDatabase(t, testutil.DemoFixture())
	r := NewRunner(newContext(t, path), io.Discard)
	ctx := context.Background()

	bad, err := r.GetBadType(ctx)
	require.NoError(t, err)
	good, err := r.GetGoodType(ctx)
	require.NoError(t, err)

	require.Len(t, bad, 1)
	require.Len(t, good, 1)
	assert.Equal(t, bad[0].Id, good[0].Id)
	assert.Equal(t, bad[0].SomeVarchar, good[0].SomeVarchar)
}

func TestGetOperations_EmptyTables(t *testing.T) {
	path := testutil.NewSQLiteDatabase(t, testutil.Fixture{})
	r := NewRunner(newContext(t, path), io.Discard)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestRun_UnreachableStore(t *testing.T) {
	db := newContext(t, testutil.MissingDatabasePath(t))
	var out bytes.Buffer
	r := NewRunner(db, &out)
	ctx := context.Background()

	_, err := r.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GetBadType")
	assert.Equal(t, "Executing GetBadType\n", out.String())

	bad, err := r.GetBadType(ctx)
	assert.Error(t, err)
	assert.Empty(t, bad)

	good, err := r.GetGoodType(ctx)
	assert.Error(t, err)
	assert.Empty(t, good)
}

func TestRun_StopsAfterClose(t *testing.T) {
	path := testutil.NewSQLiteDatabase(t, testutil.DemoFixture())
	db := newContext(t, path)
	require.NoError(t, db.Close())

	_, err := NewRunner(db, io.Discard).Run(context.Background())
	assert.ErrorIs(t, err, dbcontext.ErrClosed)
}

func TestPlan_SQLServerLiteralMarkers(t *testing.T) {
	cfg, err := mapping.Default()
	require.NoError(t, err)
	db, err := dbcontext.New(cfg, dbcontext.Options{
		Driver:           store.DriverSQLServer,
		ConnectionString: "sqlserver://unreachable.invalid",
	})
	require.NoError(t, err)
	defer db.Close()

	steps, err := NewRunner(db, io.Discard).Plan()
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "GetBadType", steps[0].Name)
	assert.Contains(t, steps[0].Statement.Text, "= N'Hello World'")
	assert.Equal(t, "GetGoodType", steps[1].Name)
	assert.Contains(t, steps[1].Statement.Text, "= 'Hello World'")
	assert.NotContains(t, steps[1].Statement.Text, "N'")
	assert.False(t, db.Connected())
}
