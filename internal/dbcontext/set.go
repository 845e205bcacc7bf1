package dbcontext

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/queryir"
	"github.com/roach88/seekdemo/internal/querysql"
	"github.com/roach88/seekdemo/internal/store"
)

// Set is the queryable collection of one entity type.
type Set[T any] struct {
	ctx    *Context
	entity *mapping.Entity
}

func newSet[T any](c *Context) (*Set[T], error) {
	var zero T
	e, err := c.cfg.Entity(zero)
	if err != nil {
		return nil, err
	}
	// Queries name entities; the name must resolve back to this type.
	byName, err := c.cfg.Lookup(e.Name)
	if err != nil {
		return nil, err
	}
	if byName != e {
		return nil, fmt.Errorf("%w: entity name %q resolves to another type", mapping.ErrAmbiguousMapping, e.Name)
	}
	return &Set[T]{ctx: c, entity: e}, nil
}

// Entity returns the resolved mapping of T.
func (s *Set[T]) Entity() *mapping.Entity {
	return s.entity
}

// All selects every row.
func (s *Set[T]) All() *Query[T] {
	return &Query[T]{set: s, ir: queryir.Select{Entity: s.entity.Name}}
}

// Where selects rows whose property equals value.
func (s *Set[T]) Where(field string, value queryir.Value) *Query[T] {
	return &Query[T]{set: s, ir: queryir.Where(s.entity.Name, field, value)}
}

// Query is a pending query over a Set.
type Query[T any] struct {
	set *Set[T]
	ir  queryir.Select
}

// Statement compiles the query without executing it.
func (q *Query[T]) Statement() (querysql.Statement, error) {
	return q.set.ctx.compiler.Compile(q.ir)
}

// ToList executes the query and materializes the rows in key order.
// It returns an empty, non-nil slice when nothing matches.
func (q *Query[T]) ToList(ctx context.Context) ([]T, error) {
	c := q.set.ctx
	table := q.set.entity.Table

	stmt, err := q.Statement()
	if err != nil {
		return nil, err
	}
	for _, w := range stmt.Warnings {
		c.logger.Warn("implicit conversion", "table", table, "warning", w)
	}

	st, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := materialize[T](ctx, st, stmt)
	elapsed := time.Since(start)

	c.opts.Metrics.ObserveQuery(table, elapsed, len(out), err)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	level := debugOrInfo(c.opts.LogSQL)
	c.logger.Log(ctx, level, "executed query",
		"elapsed", elapsed,
		"rows", len(out),
		"params", formatParams(stmt.Params),
		"sql", stmt.Text,
	)
	return out, nil
}

func materialize[T any](ctx context.Context, st *store.Store, stmt querysql.Statement) ([]T, error) {
	rows, err := st.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	dest := make([]any, len(stmt.Columns))
	for rows.Next() {
		var item T
		v := reflect.ValueOf(&item).Elem()
		for i, col := range stmt.Columns {
			dest[i] = v.FieldByIndex(col.FieldIndex()).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func debugOrInfo(info bool) slog.Level {
	if info {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func formatParams(params []querysql.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
