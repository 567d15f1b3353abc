// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for storyexport.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Sections
//
//   - [server]: listen address, API key, rate limits, timeouts
//   - [database]: story database path
//   - [export]: default format, footer label, HTML theme, PDF page setup
//   - [logging]: optional log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (STORYEXPORT_*)
//   - ~/.storyexport/config.toml
//   - ~/.storyexport/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := export.New(cfg.ExportOptions())
//
// A running server picks up edits through a Watcher:
//
//	w, _ := config.NewWatcher(path, 0)
//	go w.Run(ctx, func(cfg *config.Config, err error) { ... })
package config
