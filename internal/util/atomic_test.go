// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entryNames lists dir so tests can spot stray temp files.
func entryNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWritePrivateFile_FreshConfigHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".storyexport")
	path := filepath.Join(home, "config.toml")
	body := []byte("[server]\napi_key = \"s3cret\"\n")

	require.NoError(t, WritePrivateFile(path, body))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(home)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestWritePrivateFile_TightensLooseConfig(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	require.NoError(t, WritePrivateFile(path, []byte(`{"server":{}}`)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWriteArtifact_ReplacesPreviousExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "the-lantern-keeper_1.pdf")

	require.NoError(t, WriteArtifact(path, []byte("%PDF-1.3 first export with a long body")))
	require.NoError(t, WriteArtifact(path, []byte("%PDF-1.3 second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 second", string(got))
	assert.Equal(t, []string{"the-lantern-keeper_1.pdf"}, entryNames(t, dir))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	}
}

func TestWriteArtifact_EmptyArchiveBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stories.zip")

	require.NoError(t, WriteArtifact(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteArtifact_DirectoryTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "stories.zip")
	require.NoError(t, os.Mkdir(target, 0755))

	err := WriteArtifact(target, []byte("PK"))
	require.ErrorIs(t, err, ErrIsDirectory)

	info, statErr := os.Stat(target)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{"stories.zip"}, entryNames(t, dir))
}

func TestWriteArtifact_ParentIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "exports")
	require.NoError(t, os.WriteFile(blocker, []byte("keep"), 0644))

	err := WriteArtifact(filepath.Join(blocker, "tide_2.txt"), []byte("Title: Tide\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent directory")

	got, readErr := os.ReadFile(blocker)
	require.NoError(t, readErr)
	assert.Equal(t, "keep", string(got))
}
