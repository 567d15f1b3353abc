// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the config layer and the CLI.
//
// # Key Functions
//
// File Operations:
//   - WritePrivateFile: replace a config file, owner-only (0600)
//   - WriteArtifact: replace an exported story or archive (0644)
//
// Terminal Text:
//   - TruncateWidth, PadRight: column-aware truncation and padding
//   - SingleLine: flatten multi-line text for table cells
//
// # Usage
//
//	// Write an export without leaving a partial file behind
//	err := util.WriteArtifact(path, art.Data)
//
//	// Fit a title into a 30-column table cell
//	cell := util.PadRight(title, 30)
package util
