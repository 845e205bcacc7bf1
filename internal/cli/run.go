package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/seekdemo/internal/config"
	"github.com/roach88/seekdemo/internal/dbcontext"
	"github.com/roach88/seekdemo/internal/demo"
	"github.com/roach88/seekdemo/internal/entity"
	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/metrics"
	"github.com/roach88/seekdemo/internal/store"
)

func runDemo(opts *RootOptions, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	formatter := newFormatter(opts, cmd)

	cfg := opts.Config
	if err := cfg.Resolve(); err != nil {
		return formatter.Fail(CodeConfig, WrapExitError(ExitCommandError, "failed to resolve connection", err))
	}
	logger.Info("connection resolved", "driver", cfg.Driver, "connection", config.Redact(cfg.ConnectionString))

	mappings, err := loadMappings(cfg.MappingsPath)
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "failed to load mappings", err))
	}

	var rec *metrics.Recorder
	if cfg.Metrics {
		rec = metrics.NewRecorder()
		defer func() {
			if err := rec.WriteText(formatter.GetErrWriter()); err != nil {
				logger.Error("error writing metrics", "error", err)
			}
		}()
	}

	db, err := dbcontext.New(mappings, dbcontext.Options{
		Driver:           cfg.Driver,
		ConnectionString: cfg.ConnectionString,
		Logger:           logger,
		LogSQL:           cfg.LogSQL,
		Metrics:          rec,
	})
	if err != nil {
		return formatter.Fail(CodeMappings, WrapExitError(ExitCommandError, "invalid mappings", err))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, stop := signalContext(cmd)
	defer stop()

	// Progress lines go to stderr in json mode so stdout stays parseable.
	progress := cmd.OutOrStdout()
	if opts.Format == "json" {
		progress = formatter.GetErrWriter()
	}

	res, err := demo.NewRunner(db, progress).Run(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return formatter.Fail(CodeUnavailable, WrapExitError(ExitCommandError, "database unavailable", err))
		}
		return formatter.Fail(CodeQuery, WrapExitError(ExitFailure, "demo failed", err))
	}
	logger.Info("demo finished", "bad_type_rows", res.BadTypeRows, "good_type_rows", res.GoodTypeRows)

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	return nil
}

// newLogger returns a text logger tagged with a per-run id.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	if id, err := uuid.NewV7(); err == nil {
		logger = logger.With("run_id", id.String())
	}
	return logger
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadMappings returns the built-in mappings, or those in path if set.
func loadMappings(path string) (*mapping.Config, error) {
	if path == "" {
		return mapping.Default()
	}
	return mapping.LoadFile(path, entity.Registry())
}

// signalContext derives a context from the command's that is cancelled on
// interrupt or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
}
