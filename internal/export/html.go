// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

//go:embed templates/story.html.tmpl
var templateFS embed.FS

// storyTemplate is parsed once; html/template is safe for concurrent Execute.
var storyTemplate = template.Must(template.ParseFS(templateFS, "templates/story.html.tmpl"))

// HTMLRenderer renders stories as a standalone HTML page with embedded CSS.
type HTMLRenderer struct {
	generator string
	theme     string
	tmpl      *template.Template
}

type htmlPage struct {
	Generator string
	Theme     string
	Facts     storyFacts
}

// NewHTMLRenderer creates an HTML renderer.
func NewHTMLRenderer(opts *Options) *HTMLRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	theme := opts.Theme
	if theme != "dark" {
		theme = "light"
	}
	return &HTMLRenderer{
		generator: opts.Generator,
		theme:     theme,
		tmpl:      storyTemplate,
	}
}

// Render converts a story to HTML.
func (r *HTMLRenderer) Render(s *story.Story, exportedAt time.Time) ([]byte, error) {
	if s == nil {
		return nil, &RenderError{Format: FormatHTML, Err: ErrMissingStory}
	}
	page := htmlPage{
		Generator: r.generator,
		Theme:     r.theme,
		Facts:     newFacts(s, exportedAt, r.generator),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, &RenderError{StoryID: s.ID, Format: FormatHTML, Err: err}
	}
	return buf.Bytes(), nil
}

// Format returns FormatHTML.
func (r *HTMLRenderer) Format() Format { return FormatHTML }

// FileExtension returns the file extension for HTML.
func (r *HTMLRenderer) FileExtension() string { return ".html" }

// MimeType returns the MIME type for HTML.
func (r *HTMLRenderer) MimeType() string { return "text/html" }
