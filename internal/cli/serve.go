// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/storyexport/internal/config"
	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/server"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the export HTTP API",
		Long: `Start the HTTP API serving story exports.

The server stops gracefully on SIGINT or SIGTERM. Edits to the config file
rebuild the exporter without a restart; server settings need a restart.

Example:
  storyexport serve
  storyexport serve --addr :8080 --db ./stories.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions, addr string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	closeLog, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := newServer(cfg, st)
	watchConfig(ctx, opts, srv)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("SIGNAL | shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServer builds a server configured from cfg.
func newServer(cfg *config.Config, st server.StoryStore) *server.Server {
	srv := server.NewServer(cfg.Server.Addr, st, export.New(cfg.ExportOptions())).
		WithTimeouts(server.Timeouts{
			Read:  cfg.ReadTimeout(),
			Write: cfg.WriteTimeout(),
			Idle:  server.DefaultTimeouts().Idle,
		})

	if cfg.Server.RateLimit > 0 {
		srv.WithRateLimiter(server.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst))
	} else {
		srv.WithRateLimiter(nil)
	}

	if cfg.Server.APIKey != "" {
		auth := server.DefaultAuthConfig()
		auth.Enabled = true
		auth.BearerToken = cfg.Server.APIKey
		srv.WithAuth(auth)
	}
	return srv
}

// watchConfig swaps in a fresh exporter whenever the config file changes.
// It does nothing when the config file does not exist.
func watchConfig(ctx context.Context, opts *RootOptions, srv *server.Server) {
	path, err := opts.configPath()
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	w, err := config.NewWatcher(path, 0)
	if err != nil {
		log.Printf("CONFIG_WATCH_FAILED | path=%s error=%v", path, err)
		return
	}

	go w.Run(ctx, func(cfg *config.Config, err error) {
		if err != nil {
			log.Printf("CONFIG_RELOAD_FAILED | path=%s error=%v", path, err)
			return
		}
		srv.WithExporter(export.New(cfg.ExportOptions()))
		log.Printf("CONFIG_RELOAD | path=%s page_size=%s theme=%s", path, cfg.Export.PageSize, cfg.Export.Theme)
	})
}
