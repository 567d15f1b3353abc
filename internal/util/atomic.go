// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// =============================================================================
// WRITE POLICIES
// =============================================================================

// ErrIsDirectory is returned when the target path names an existing directory.
var ErrIsDirectory = errors.New("target is a directory")

// writePolicy describes how one kind of file lands on disk. dirMode applies
// only to parent directories that do not exist yet.
type writePolicy struct {
	prefix   string
	fileMode os.FileMode
	dirMode  os.FileMode
}

var (
	// Config files may hold the API key.
	privatePolicy = writePolicy{prefix: ".storyexport-config-", fileMode: 0600, dirMode: 0700}

	// Exported stories are ordinary user documents.
	artifactPolicy = writePolicy{prefix: ".storyexport-export-", fileMode: 0644, dirMode: 0755}
)

// WritePrivateFile replaces path with data, readable only by the owner.
func WritePrivateFile(path string, data []byte) error {
	return writeAtomic(path, data, privatePolicy)
}

// WriteArtifact replaces path with an exported document or archive.
// A reader of path sees either the previous export or the new one, never a mix.
func WriteArtifact(path string, data []byte) error {
	return writeAtomic(path, data, artifactPolicy)
}

// =============================================================================
// ATOMIC REPLACE
// =============================================================================

func writeAtomic(path string, data []byte, p writePolicy) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, p.dirMode); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Same directory as the target so the rename stays on one filesystem.
	f, err := os.CreateTemp(dir, p.prefix+filepath.Base(absPath)+"-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if err := f.Chmod(p.fileMode); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync data to disk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(absPath), err)
	}

	committed = true
	return nil
}
