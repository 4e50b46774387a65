package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/neo-explorer/internal/config"
	"github.com/ajitpratap0/neo-explorer/internal/database"
	"github.com/ajitpratap0/neo-explorer/internal/extract"
	"github.com/ajitpratap0/neo-explorer/internal/metrics"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg *config.Config

	neoFile string
	cadFile string
)

// dbLoader produces the database a command runs against. Commands built for
// the interactive session get one that returns the preloaded database.
type dbLoader func(logger *slog.Logger) (*database.Database, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := newRootCmd()
	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		printHints(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "neo-explorer",
		Short:        "Explore near-Earth objects and their close approaches to Earth",
		Long:         "Loads a near-Earth object catalog and a close-approach extract, links them, and answers lookups and filtered queries.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return errors.Wrap(err, "loading config")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			newLogger().Debug("metrics", "counters", metrics.Snapshot())
		},
	}

	rootCmd.PersistentFlags().StringVar(&neoFile, "neofile", "", "near-Earth object catalog CSV (default from data.neo_file)")
	rootCmd.PersistentFlags().StringVar(&cadFile, "cadfile", "", "close-approach extract JSON (default from data.cad_file)")

	rootCmd.AddCommand(
		inspectCmd(loadDatabase),
		queryCmd(loadDatabase),
		interactiveCmd(),
		statsCmd(),
		mcpCmd(),
	)

	return rootCmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// dataPaths resolves the input files: flags first, then config, then defaults.
func dataPaths() (neoPath, cadPath string) {
	neoPath, cadPath = config.DefaultNEOFile, config.DefaultCADFile
	if cfg != nil {
		neoPath, cadPath = cfg.Data.NEOFile, cfg.Data.CADFile
	}
	if neoFile != "" {
		neoPath = neoFile
	}
	if cadFile != "" {
		cadPath = cadFile
	}
	return neoPath, cadPath
}

// loadDatabase reads both extracts and links them.
func loadDatabase(logger *slog.Logger) (*database.Database, error) {
	neoPath, cadPath := dataPaths()

	neos, err := extract.LoadNEOs(neoPath, logger)
	if err != nil {
		return nil, errors.Wrap(err, "loading near-Earth objects")
	}
	approaches, err := extract.LoadApproaches(cadPath, logger)
	if err != nil {
		return nil, errors.Wrap(err, "loading close approaches")
	}
	return database.New(neos, approaches, logger), nil
}

func defaultLimit() int {
	if cfg == nil {
		return config.DefaultQueryLimit
	}
	return cfg.Query.DefaultLimit
}

func printHints(w io.Writer, err error) {
	for _, hint := range errors.GetAllHints(err) {
		_, _ = fmt.Fprintf(w, "hint: %s\n", hint)
	}
}
