// Package demo runs the two demonstration queries.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/seekdemo/internal/dbcontext"
	"github.com/roach88/seekdemo/internal/entity"
	"github.com/roach88/seekdemo/internal/queryir"
	"github.com/roach88/seekdemo/internal/querysql"
)

// SearchText is the literal both operations filter on.
const SearchText = "Hello World"

// FilterProperty is the property both operations filter on.
const FilterProperty = "SomeVarchar"

// Runner issues the demo queries against a data context and reports
// progress to Out.
type Runner struct {
	DB  *dbcontext.Context
	Out io.Writer
}

// NewRunner returns a Runner writing progress lines to out.
func NewRunner(db *dbcontext.Context, out io.Writer) *Runner {
	return &Runner{DB: db, Out: out}
}

// GetBadType returns the BadType rows whose SomeVarchar equals SearchText.
// The mapping leaves the property at its default wide inference.
func (r *Runner) GetBadType(ctx context.Context) ([]entity.BadType, error) {
	rows, err := r.badTypeQuery().ToList(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetBadType: %w", err)
	}
	return rows, nil
}

// GetGoodType returns the GoodType rows whose SomeVarchar equals SearchText.
// The mapping declares the property narrow.
func (r *Runner) GetGoodType(ctx context.Context) ([]entity.GoodType, error) {
	rows, err := r.goodTypeQuery().ToList(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetGoodType: %w", err)
	}
	return rows, nil
}

func (r *Runner) badTypeQuery() *dbcontext.Query[entity.BadType] {
	return r.DB.BadTypes().Where(FilterProperty, queryir.Text(SearchText))
}

func (r *Runner) goodTypeQuery() *dbcontext.Query[entity.GoodType] {
	return r.DB.GoodTypes().Where(FilterProperty, queryir.Text(SearchText))
}

// Step is one demo operation with the statement it would execute.
type Step struct {
	Name      string
	Statement querysql.Statement
}

// Plan compiles both operations without connecting.
func (r *Runner) Plan() ([]Step, error) {
	bad, err := r.badTypeQuery().Statement()
	if err != nil {
		return nil, fmt.Errorf("GetBadType: %w", err)
	}
	good, err := r.goodTypeQuery().Statement()
	if err != nil {
		return nil, fmt.Errorf("GetGoodType: %w", err)
	}
	return []Step{
		{Name: "GetBadType", Statement: bad},
		{Name: "GetGoodType", Statement: good},
	}, nil
}

// Result holds the row counts of a completed run.
type Result struct {
	BadTypeRows  int
	GoodTypeRows int
}

// Run executes GetBadType then GetGoodType, announcing each one before it
// starts. The first failure stops the run.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result

	fmt.Fprintln(r.Out, "Executing GetBadType")
	bad, err := r.GetBadType(ctx)
	if err != nil {
		return res, err
	}
	res.BadTypeRows = len(bad)

	fmt.Fprintln(r.Out, "Executing GetGoodType")
	good, err := r.GetGoodType(ctx)
	if err != nil {
		return res, err
	}
	res.GoodTypeRows = len(good)

	return res, nil
}
