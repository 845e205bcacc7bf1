package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/seekdemo/internal/dbcontext"
	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/store"
)

var (
	driftColor = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
	boldColor  = color.New(color.Bold)
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Strict bool
}

// DriftOutput is the JSON form of one drift finding.
type DriftOutput struct {
	Entity   string `json:"entity"`
	Property string `json:"property"`
	Column   string `json:"column"`
	Declared string `json:"declared"`
	Actual   string `json:"actual,omitempty"`
	Hazard   string `json:"hazard"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Compare mapped column types with the database schema",
		Long: `Connect to the database and compare the declared type of every mapped
property with the actual column type.

A wide declaration over a narrow column is reported: filters on that
property convert the column and cannot seek its index. Queries always use
the declared types; inspect only reports.

Example:
  seekdemo inspect --connection ./demo.db
  seekdemo inspect --strict --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with failure when drift is found")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg := opts.Config
	if err := cfg.Resolve(); err != nil {
		return formatter.Fail(CodeConfig, WrapExitError(ExitCommandError, "failed to resolve connection", err))
	}

	mappings, err := loadMappings(cfg.MappingsPath)
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "failed to load mappings", err))
	}

	db, err := dbcontext.New(mappings, dbcontext.Options{
		Driver:           cfg.Driver,
		ConnectionString: cfg.ConnectionString,
		Logger:           logger,
	})
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "invalid mappings", err))
	}
	defer db.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	drifts, err := db.Inspect(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return formatter.Fail(CodeUnavailable, WrapExitError(ExitCommandError, "database unavailable", err))
		}
		return formatter.Fail(CodeInspect, WrapExitError(ExitCommandError, "failed to inspect schema", err))
	}

	if opts.Format == "json" {
		if err := formatter.Success(driftOutputs(drifts)); err != nil {
			return err
		}
	} else {
		printDrifts(cmd, drifts)
	}

	if opts.Strict && len(drifts) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d mapping drift(s) found", len(drifts)))
	}
	return nil
}

func driftOutputs(drifts []mapping.Drift) []DriftOutput {
	out := make([]DriftOutput, len(drifts))
	for i, d := range drifts {
		out[i] = DriftOutput{
			Entity:   d.Entity,
			Property: d.Property,
			Column:   d.Column,
			Declared: d.Declared.String(),
			Hazard:   d.Hazard,
		}
		if d.Actual != nil {
			out[i].Actual = d.Actual.String()
		}
	}
	return out
}

func printDrifts(cmd *cobra.Command, drifts []mapping.Drift) {
	w := cmd.OutOrStdout()
	if len(drifts) == 0 {
		okColor.Fprintln(w, "No mapping drift found.")
		return
	}

	boldColor.Fprintf(w, "Mapping drift (%d):\n", len(drifts))
	for _, d := range drifts {
		actual := "missing"
		if d.Actual != nil {
			actual = d.Actual.String()
		}
		fmt.Fprintf(w, "  %s.%s ", d.Entity, d.Property)
		driftColor.Fprintf(w, "declared %s, column is %s", d.Declared, actual)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    %s\n", d.Hazard)
	}
}
