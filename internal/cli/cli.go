// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/storyexport/internal/config"
	"github.com/jeranaias/storyexport/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	JSON       bool
	NoColor    bool
}

// NewRootCommand creates the storyexport command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storyexport",
		Short: "Export stories as text, HTML, PDF or zip collections",
		Long: `storyexport renders stored stories as plain text, HTML or PDF documents
and bundles collections into zip archives with aggregate statistics.

It can run as an HTTP API (serve) or export directly from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.storyexport/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "story database path (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle(cmd.ErrOrStderr(), false).Render("Error: "+err.Error()))
		return ExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// configPath returns the file the config is (or would be) read from.
func (o *RootOptions) configPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// loadConfig loads the config named by --config, or the default location.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFromPath(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ExitError{Code: ExitConfigError, Err: err}
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	return cfg, nil
}

// openStore opens the story database named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return st, nil
}

// setupLogging sends the standard logger to stderr and, when configured, a
// log file. The returned func closes the file.
func setupLogging(cfg *config.Config, stderr io.Writer) (func(), error) {
	if cfg.Logging.File == "" {
		log.SetOutput(stderr)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(stderr, f))
	return func() {
		log.SetOutput(stderr)
		f.Close()
	}, nil
}
