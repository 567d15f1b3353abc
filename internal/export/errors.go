// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyBatch        = errors.New("no stories found for export")
	ErrRender            = errors.New("render failed")
	ErrArchive           = errors.New("archive failed")
	ErrMissingStory      = errors.New("missing story")
)

// UnsupportedFormatError reports a format outside the supported set.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (supported: txt, pdf, html)", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// RenderError reports a renderer that could not produce output for a story.
type RenderError struct {
	StoryID int64
	Format  Format
	Err     error
}

func (e *RenderError) Error() string {
	if e.StoryID == 0 {
		return fmt.Sprintf("render %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("render story %d as %s: %v", e.StoryID, e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// ArchiveError reports an archive that could not be finalized.
type ArchiveError struct {
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("build archive: %v", e.Err)
	}
	return fmt.Sprintf("build archive entry %s: %v", e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

func (e *ArchiveError) Is(target error) bool {
	return target == ErrArchive
}

// StatusCode maps an export error to the HTTP status surfaced to callers.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyBatch):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
