package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/seekdemo/internal/dbcontext"
	"github.com/roach88/seekdemo/internal/demo"
	"github.com/roach88/seekdemo/internal/store"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Dialect string
}

// StatementOutput is the JSON form of one compiled demo statement.
type StatementOutput struct {
	Operation string   `json:"operation"`
	Dialect   string   `json:"dialect"`
	SQL       string   `json:"sql"`
	Text      string   `json:"text"`
	Params    []string `json:"params"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the statements the demo would execute",
		Long: `Compile both demo queries for a dialect and print them without
connecting to a database.

The text form inlines parameters as literals. On SQL Server the BadType
literal carries the N prefix and the GoodType literal does not.

Example:
  seekdemo sql
  seekdemo sql --dialect sqlite3 --format json
  seekdemo sql --mappings ./mappings.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", store.DriverSQLServer, "SQL dialect (sqlserver|sqlite3)")

	return cmd
}

func runSQL(opts *SQLOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	mappings, err := loadMappings(opts.Config.MappingsPath)
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "failed to load mappings", err))
	}

	db, err := dbcontext.New(mappings, dbcontext.Options{Driver: opts.Dialect})
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "invalid mappings or dialect", err))
	}
	defer db.Close()

	steps, err := demo.NewRunner(db, cmd.OutOrStdout()).Plan()
	if err != nil {
		return formatter.Fail(CodeQuery, WrapExitError(ExitFailure, "failed to compile statements", err))
	}

	out := make([]StatementOutput, len(steps))
	for i, s := range steps {
		params := make([]string, len(s.Statement.Params))
		for j, p := range s.Statement.Params {
			params[j] = p.String()
		}
		out[i] = StatementOutput{
			Operation: s.Name,
			Dialect:   db.Dialect().Name(),
			SQL:       s.Statement.SQL,
			Text:      s.Statement.Text,
			Params:    params,
			Warnings:  s.Statement.Warnings,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	for i, s := range out {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s (%s)\n", s.Operation, s.Dialect)
		fmt.Fprintln(w, s.Text)
		if len(s.Params) > 0 {
			fmt.Fprintf(w, "-- params: %s\n", strings.Join(s.Params, ", "))
		}
		for _, warning := range s.Warnings {
			fmt.Fprintf(w, "-- warning: %s\n", warning)
		}
		formatter.VerboseLog("%s: %s", s.Operation, s.SQL)
	}
	return nil
}
