// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/storyexport/internal/config"
	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// HELPERS
// =============================================================================

type env struct {
	dir string
	db  string
}

// newEnv points the config home at a temp dir and seeds a database.
func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORYEXPORT_HOME", dir)
	e := &env{dir: dir, db: filepath.Join(dir, "stories.db")}

	_, _, err := e.run(t, "import", filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--db", e.db, "--no-color"))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *env) listRows(t *testing.T, user string) []StoryRow {
	t.Helper()
	out, _, err := e.run(t, "list", "--user", user, "--json")
	require.NoError(t, err)

	var resp struct {
		Success bool       `json:"success"`
		Data    []StoryRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

// =============================================================================
// IMPORT AND LIST
// =============================================================================

func TestImport(t *testing.T) {
	e := &env{dir: t.TempDir()}
	t.Setenv("STORYEXPORT_HOME", e.dir)
	e.db = filepath.Join(e.dir, "stories.db")

	out, _, err := e.run(t, "import", filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 users, 1 collections, 3 stories\n", out)

	// Users and collections are reused on a second run.
	out, _, err = e.run(t, "import", filepath.Join("testdata", "seed.yaml"), "--json")
	require.NoError(t, err)
	var resp struct {
		Data ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ImportResult{Users: 0, Collections: 0, Stories: 3}, resp.Data)
}

func TestImport_Errors(t *testing.T) {
	e := &env{dir: t.TempDir()}
	t.Setenv("STORYEXPORT_HOME", e.dir)
	e.db = filepath.Join(e.dir, "stories.db")

	_, _, err := e.run(t, "import", filepath.Join(e.dir, "missing.yaml"))
	assert.Equal(t, ExitUsageError, ExitCode(err))

	bad := filepath.Join(e.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("users:\n  - username: ana\n    nickname: a\n"), 0600))
	_, _, err = e.run(t, "import", bad)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.ErrorContains(t, err, "nickname")

	orphan := filepath.Join(e.dir, "orphan.yaml")
	require.NoError(t, os.WriteFile(orphan, []byte(
		"users:\n  - username: ana\n    stories:\n      - content: x\n        collection: Nowhere\n"), 0600))
	_, _, err = e.run(t, "import", orphan)
	assert.ErrorIs(t, err, storage.ErrInvalid)
	assert.ErrorContains(t, err, "Nowhere")

	rating := filepath.Join(e.dir, "rating.yaml")
	require.NoError(t, os.WriteFile(rating, []byte(
		"users:\n  - username: bo\n    stories:\n      - content: x\n        rating: 9\n"), 0600))
	_, _, err = e.run(t, "import", rating)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestDecodeSeed_Empty(t *testing.T) {
	seed, err := DecodeSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Users)
}

func TestList(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "list", "--user", "ana")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[0], "    ID  TITLE"))
	assert.Contains(t, lines[1], "The Lantern Keeper")
	assert.Contains(t, lines[1], "Mystery")
	assert.Contains(t, lines[1], "★★★★☆")
	assert.Contains(t, lines[2], "* Tide")
	assert.Contains(t, lines[2], "-")
	assert.Equal(t, "2 stories", lines[3])
	assert.NotContains(t, out, "\x1b[")

	// Columns line up.
	assert.Equal(t, strings.Index(lines[0], "GENRE"), strings.Index(lines[1], "Mystery"))

	out, _, err = e.run(t, "list", "--user", "cy")
	require.NoError(t, err)
	assert.Equal(t, "No stories.\n", out)
}

func TestList_JSONAndFilters(t *testing.T) {
	e := newEnv(t)

	rows := e.listRows(t, "ana")
	require.Len(t, rows, 2)
	assert.Equal(t, "The Lantern Keeper", rows[0].Title)
	assert.Equal(t, 8, rows[0].WordCount)
	require.NotNil(t, rows[0].Rating)
	assert.Equal(t, 4, *rows[0].Rating)

	out, _, err := e.run(t, "list", "-u", "ana", "--favorites", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Tide"`)
	assert.NotContains(t, out, "Lantern")

	_, _, err = e.run(t, "list", "--user", "zed")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))

	_, _, err = e.run(t, "list")
	assert.Error(t, err)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportStory_ToFile(t *testing.T) {
	e := newEnv(t)
	rows := e.listRows(t, "ana")
	out := filepath.Join(e.dir, "out", "lantern.txt")

	_, stderr, err := e.run(t, "export", "story", strconv.FormatInt(rows[0].ID, 10),
		"--user", "ana", "--format", "txt", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 1 story to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Title: The Lantern Keeper\nAuthor: ana\n"))
	assert.Contains(t, string(data), "Generated with: gpt-4")
}

func TestExportStory_DefaultFilenameAndStdout(t *testing.T) {
	e := newEnv(t)
	rows := e.listRows(t, "ana")
	id := strconv.FormatInt(rows[1].ID, 10)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(e.dir))
	t.Cleanup(func() { os.Chdir(wd) })

	out, _, err := e.run(t, "export", "story", id, "-u", "ana", "-f", "html", "--json")
	require.NoError(t, err)
	var resp struct {
		Data ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "tide_"+id+".html", resp.Data.Path)
	assert.Equal(t, 1, resp.Data.Stories)
	_, err = os.Stat(filepath.Join(e.dir, resp.Data.Path))
	assert.NoError(t, err)

	// Binary output goes to a non-terminal stdout untouched.
	out, _, err = e.run(t, "export", "story", id, "-u", "ana", "-f", "pdf", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}

func TestExportStory_DefaultFormatFromConfig(t *testing.T) {
	e := newEnv(t)
	rows := e.listRows(t, "ana")

	cfg := config.Default()
	cfg.Export.DefaultFormat = "html"
	require.NoError(t, config.SaveTOML(cfg, filepath.Join(e.dir, "config.toml")))

	out, _, err := e.run(t, "export", "story", strconv.FormatInt(rows[0].ID, 10), "-u", "ana", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func TestExportStory_Errors(t *testing.T) {
	e := newEnv(t)
	bo := e.listRows(t, "bo")
	rows := e.listRows(t, "ana")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad format", []string{"export", "story", strconv.FormatInt(rows[0].ID, 10), "-u", "ana", "-f", "docx"}, ExitUsageError},
		{"bad id", []string{"export", "story", "abc", "-u", "ana"}, ExitUsageError},
		{"unknown story", []string{"export", "story", "9999", "-u", "ana", "-o", "-"}, ExitNotFoundError},
		{"other owner", []string{"export", "story", strconv.FormatInt(bo[0].ID, 10), "-u", "ana", "-o", "-"}, ExitNotFoundError},
		{"missing user", []string{"export", "story", "1"}, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
		})
	}
}

func TestExportCollection(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(e.dir, "all.zip")

	_, stderr, err := e.run(t, "export", "collection", "-u", "ana", "-f", "pdf", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 2 stories")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	names := zipNames(t, data)
	require.Len(t, names, 3)
	assert.True(t, strings.HasPrefix(names[0], "the-lantern-keeper_"))
	assert.True(t, strings.HasSuffix(names[0], ".pdf"))
	assert.Equal(t, export.MetadataEntry, names[2])
}

func TestExportCollection_Filters(t *testing.T) {
	e := newEnv(t)
	rows := e.listRows(t, "ana")

	st, err := storage.Open(context.Background(), e.db)
	require.NoError(t, err)
	folders, err := st.Collections(context.Background(), "ana")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	var lighthouses, defaults int64
	for _, f := range folders {
		if f.Name == "Lighthouses" {
			lighthouses = f.ID
		}
		if f.Name == story.DefaultFolderName {
			defaults = f.ID
		}
	}
	require.NotZero(t, lighthouses)

	out, _, err := e.run(t, "export", "collection", "-u", "ana", "--collection", strconv.FormatInt(lighthouses, 10), "-o", "-")
	require.NoError(t, err)
	assert.Len(t, zipNames(t, []byte(out)), 2)

	out, _, err = e.run(t, "export", "collection", "-u", "ana", "--ids", strconv.FormatInt(rows[1].ID, 10), "-o", "-")
	require.NoError(t, err)
	names := zipNames(t, []byte(out))
	require.Len(t, names, 2)
	assert.True(t, strings.HasPrefix(names[0], "tide_"))

	// The default collection holds nothing: the seed placed no story in it.
	_, _, err = e.run(t, "export", "collection", "-u", "ana", "--collection", strconv.FormatInt(defaults, 10), "-o", "-")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))

	_, _, err = e.run(t, "export", "collection", "-u", "bo", "--collection", strconv.FormatInt(lighthouses, 10), "-o", "-")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, _, err = e.run(t, "export", "collection", "-u", "cy", "-o", "-")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
}

func TestIsBinary(t *testing.T) {
	assert.True(t, isBinary(&export.Artifact{ContentType: "application/pdf"}))
	assert.True(t, isBinary(&export.Artifact{ContentType: "application/zip"}))
	assert.False(t, isBinary(&export.Artifact{ContentType: "text/plain"}))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

// =============================================================================
// CONFIG AND VERSION
// =============================================================================

func TestConfigCommands(t *testing.T) {
	e := &env{dir: t.TempDir()}
	e.db = filepath.Join(e.dir, "stories.db")
	path := filepath.Join(e.dir, "custom.toml")

	out, _, err := e.run(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, _, err = e.run(t, "config", "init", "--config", path)
	require.NoError(t, err)
	_, _, err = e.run(t, "config", "init", "--config", path)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	_, _, err = e.run(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	_, _, err = e.run(t, "config", "set", "export.page_size", "Letter", "--config", path)
	require.NoError(t, err)
	out, _, err = e.run(t, "config", "get", "export.page_size", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Letter\n", out)

	_, _, err = e.run(t, "config", "set", "export.theme", "neon", "--config", path)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	_, _, err = e.run(t, "config", "set", "export.nope", "x", "--config", path)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, _, err = e.run(t, "config", "set", "server.api_key", "hunter2", "--config", path)
	require.NoError(t, err)
	out, _, err = e.run(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `page_size = "Letter"`)
	assert.NotContains(t, out, "hunter2")
	out, _, err = e.run(t, "config", "get", "server.api_key", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]\n", out)
}

func TestConfig_InvalidFileIsConfigError(t *testing.T) {
	e := &env{dir: t.TempDir()}
	e.db = filepath.Join(e.dir, "stories.db")
	path := filepath.Join(e.dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[export]\ntheme = \"neon\"\n"), 0600))

	_, _, err := e.run(t, "list", "-u", "ana", "--config", path)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestVersion(t *testing.T) {
	e := &env{dir: t.TempDir()}
	out, _, err := e.run(t, "version", "--json")
	require.NoError(t, err)

	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "version", resp.Command)
	assert.Equal(t, Version, resp.Data.Version)
}

// =============================================================================
// SERVE WIRING
// =============================================================================

func TestNewServer_FromConfig(t *testing.T) {
	e := newEnv(t)
	st, err := storage.Open(context.Background(), e.db)
	require.NoError(t, err)
	defer st.Close()

	cfg := config.Default()
	cfg.Server.APIKey = "k"
	cfg.Server.RateLimit = 0
	h := newServer(cfg, st).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/stories", nil)
	req.Header.Set("X-Story-User", "ana")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Lantern Keeper")
}

func TestSetupLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "export.log")

	var stderr bytes.Buffer
	closeLog, err := setupLogging(cfg, &stderr)
	require.NoError(t, err)
	log.Printf("TEST | hello")
	closeLog()

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TEST | hello")
	assert.Contains(t, stderr.String(), "TEST | hello")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitNotFoundError, ExitCode(fmt.Errorf("x: %w", storage.ErrNotFound)))
	assert.Equal(t, ExitNotFoundError, ExitCode(export.ErrEmptyBatch))
	assert.Equal(t, ExitUsageError, ExitCode(&export.UnsupportedFormatError{Format: "rtf"}))
	assert.Equal(t, ExitConfigError, ExitCode(config.ValidateErrors{{Field: "a", Message: "b"}}))
	assert.Equal(t, ExitConfigError, ExitCode(&ExitError{Code: ExitConfigError, Err: errors.New("x")}))
}
