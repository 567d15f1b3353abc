// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// TEXT RENDERER
// =============================================================================

// TextRenderer renders stories as plain text. Content is copied verbatim.
type TextRenderer struct {
	generator string
}

// NewTextRenderer creates a plain-text renderer.
func NewTextRenderer(opts *Options) *TextRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextRenderer{generator: opts.Generator}
}

// Render converts a story to plain text.
func (r *TextRenderer) Render(s *story.Story, exportedAt time.Time) ([]byte, error) {
	if s == nil {
		return nil, &RenderError{Format: FormatText, Err: ErrMissingStory}
	}
	f := newFacts(s, exportedAt, r.generator)
	rule := strings.Repeat("=", ruleWidth)

	lines := []string{
		"Title: " + f.Title,
		"Author: " + f.Author,
		"Created: " + f.Created,
		"Genre: " + f.Genre,
		"Length: " + f.Length,
		"Tone: " + f.Tone,
		"Keywords: " + f.Keywords,
		"Word Count: " + f.WordCountText(),
		"",
	}
	if f.Rating != "" {
		lines = append(lines, "Rating: "+f.Rating, "")
	}
	if f.Model != "" {
		lines = append(lines, "Generated with: "+f.Model, "")
	}
	lines = append(lines,
		rule,
		"STORY CONTENT",
		rule,
		"",
		f.Content,
		"",
		rule,
		f.Footer,
	)

	return []byte(strings.Join(lines, "\n")), nil
}

// Format returns FormatText.
func (r *TextRenderer) Format() Format { return FormatText }

// FileExtension returns the file extension for plain text.
func (r *TextRenderer) FileExtension() string { return ".txt" }

// MimeType returns the MIME type for plain text.
func (r *TextRenderer) MimeType() string { return "text/plain" }
