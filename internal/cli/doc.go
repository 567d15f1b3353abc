// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the storyexport command line.
//
// # Commands
//
//   - serve: run the HTTP export API
//   - export story <id>: write one story as txt, html or pdf
//   - export collection: write a zip archive of many stories
//   - import <file.yaml>: seed users, collections and stories
//   - list: table of a user's stories
//   - config init|show|path|get|set: manage the config file
//   - version: print build information
//
// Every command accepts --config, --db, --json and --no-color. Errors map to
// exit codes through ExitCode.
//
// # Usage
//
//	os.Exit(cli.Execute(context.Background()))
package cli
