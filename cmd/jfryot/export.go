package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/jfryot/internal/config"
	"github.com/vadimtrunov/jfryot/internal/export"
	"github.com/vadimtrunov/jfryot/internal/tracker/ryot"
)

// exportFunc runs one complete traversal.
type exportFunc func(ctx context.Context) ([]ryot.Item, error)

// runExport performs the operation named by arg and prints the result.
// Nothing reaches stdout unless the whole traversal succeeded.
func runExport(cmd *cobra.Command, opts *rootOptions, arg string) error {
	op, err := export.ParseOperation(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLogger(cfg.App.LogLevel, cmd.ErrOrStderr()).With(
		slog.String("run_id", uuid.NewString()),
		slog.String("operation", string(op)),
	)

	exp, err := initExporter(cfg, logger)
	if err != nil {
		return err
	}

	var run exportFunc
	switch op {
	case export.OpShows:
		run = exp.Shows
	case export.OpMovies:
		libraryID, err := cfg.Jellyfin.RequireMovieLibrary()
		if err != nil {
			return err
		}
		run = func(ctx context.Context) ([]ryot.Item, error) {
			return exp.Movies(ctx, libraryID)
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var items []ryot.Item
	if opts.progress && isTerminal(cmd.ErrOrStderr()) {
		items, err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Exporting "+string(op)+"...", run)
	} else {
		items, err = run(ctx)
	}
	if err != nil {
		return err
	}

	return ryot.Encode(cmd.OutOrStdout(), items)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
