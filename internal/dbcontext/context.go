// Package dbcontext is the data context of the demo: it owns the mapping
// configuration, exposes one queryable set per entity and holds the
// database connection for the duration of a run.
//
// The connection is opened on the first query, not by New, and released by
// Close. Callers defer Close right after New so the connection is released
// on every exit path.
package dbcontext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/seekdemo/internal/entity"
	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/metrics"
	"github.com/roach88/seekdemo/internal/querysql"
	"github.com/roach88/seekdemo/internal/store"
)

// ErrClosed is returned by queries issued after Close.
var ErrClosed = errors.New("data context is closed")

// Options configure a Context.
type Options struct {
	Driver           string // store.DriverSQLServer or store.DriverSQLite
	ConnectionString string

	// Logger receives executed statements. Defaults to slog.Default().
	Logger *slog.Logger

	// LogSQL logs executed statements at info level instead of debug.
	LogSQL bool

	// Metrics, if set, records query timings.
	Metrics *metrics.Recorder
}

// Context is the data context for one run. It is not safe for concurrent
// use; the demo has exactly one caller.
type Context struct {
	cfg      *mapping.Config
	opts     Options
	logger   *slog.Logger
	compiler *querysql.SQLCompiler

	store  *store.Store
	closed bool

	badTypes  *Set[entity.BadType]
	goodTypes *Set[entity.GoodType]
}

// New resolves the mappings of both entities and returns a Context. It does
// not connect. New fails if cfg is nil or if either entity is unmapped or
// ambiguously mapped.
func New(cfg *mapping.Config, opts Options) (*Context, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", mapping.ErrNoMapping)
	}

	dialect, err := querysql.DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Context{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		compiler: querysql.NewSQLCompiler(dialect, cfg),
	}

	if c.badTypes, err = newSet[entity.BadType](c); err != nil {
		return nil, err
	}
	if c.goodTypes, err = newSet[entity.GoodType](c); err != nil {
		return nil, err
	}
	return c, nil
}

// BadTypes returns the BadType set.
func (c *Context) BadTypes() *Set[entity.BadType] {
	return c.badTypes
}

// GoodTypes returns the GoodType set.
func (c *Context) GoodTypes() *Set[entity.GoodType] {
	return c.goodTypes
}

// Dialect returns the SQL dialect queries are compiled for.
func (c *Context) Dialect() querysql.Dialect {
	return c.compiler.Dialect
}

// acquire returns the open store, connecting on first use.
func (c *Context) acquire(ctx context.Context) (*store.Store, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.store != nil {
		return c.store, nil
	}

	c.logger.Debug("opening connection", "driver", c.opts.Driver)
	st, err := store.Open(ctx, c.opts.Driver, c.opts.ConnectionString)
	if err != nil {
		return nil, err
	}
	c.store = st
	return st, nil
}

// Connected reports whether the connection has been opened.
func (c *Context) Connected() bool {
	return c.store != nil
}

// Close releases the connection if one was opened. Safe to call more
// than once; later queries fail with ErrClosed.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.logger.Debug("connection closed")
	return err
}

// Inspect compares the declared mapping of both entities with the live
// schema. It connects if needed.
func (c *Context) Inspect(ctx context.Context) ([]mapping.Drift, error) {
	st, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []mapping.Drift
	for _, e := range []*mapping.Entity{c.badTypes.entity, c.goodTypes.entity} {
		actual, err := st.ColumnTypes(ctx, e.Table)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", e.Name, err)
		}
		drifts = append(drifts, mapping.CompareColumns(e, actual)...)
	}
	return drifts, nil
}
