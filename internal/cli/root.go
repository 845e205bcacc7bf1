package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seekdemo/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Run without a subcommand it
// executes the demo queries.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.New()}

	cmd := &cobra.Command{
		Use:   "seekdemo",
		Short: "Compare wide and narrow text mappings over varchar columns",
		Long: `seekdemo runs the same equality filter against two identical tables.

BadType keeps the default string mapping, so its filter value is sent as a
wide (nvarchar) literal. GoodType declares its column varchar, so the value
is sent narrow and the column's index can be used for a seek.

Example:
  seekdemo --connection "sqlserver://sa:pw@localhost?database=Demo"
  SEEKDEMO_CONNECTION=./demo.db seekdemo --verbose
  seekdemo sql --dialect sqlserver`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	opts.Config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
