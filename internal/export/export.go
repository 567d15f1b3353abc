// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// RENDERER INTERFACE
// =============================================================================

// Renderer converts one story snapshot to a document format.
// Implementations hold only immutable configuration and are safe for
// concurrent use.
type Renderer interface {
	// Render produces the document. exportedAt is embedded in the footer.
	Render(s *story.Story, exportedAt time.Time) ([]byte, error)

	// Format returns the format this renderer produces.
	Format() Format

	// FileExtension returns the file extension including the dot (e.g. ".txt").
	FileExtension() string

	// MimeType returns the MIME type of the rendered document.
	MimeType() string
}

// =============================================================================
// FORMATS
// =============================================================================

// Format identifies an export format.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// SupportedFormats lists every format in the order shown to users.
func SupportedFormats() []Format {
	return []Format{FormatText, FormatPDF, FormatHTML}
}

// ParseFormat validates a format name. Matching ignores case and surrounding
// whitespace.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatHTML, FormatPDF:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures a Service. It is copied at construction and never
// mutated afterwards.
type Options struct {
	// Generator is the application name printed in every footer.
	// Default: "AI Story Generator"
	Generator string

	// Theme for HTML export ("light" or "dark").
	// Default: "light"
	Theme string

	// PDF configures page geometry and styles for the paged-document renderer.
	PDF PDFOptions

	// Now supplies export timestamps. Default: time.Now
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Generator: "AI Story Generator",
		Theme:     "light",
		PDF:       DefaultPDFOptions(),
		Now:       time.Now,
	}
}

// =============================================================================
// SHARED FIELD EXTRACTION
// =============================================================================

// dateLayout renders timestamps as "March 05, 2025 at 02:07 PM".
const dateLayout = "January 02, 2006 at 03:04 PM"

// ruleWidth is the width of separator rules in plain text output.
const ruleWidth = 60

var paragraphBreak = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// metaLine is one labelled fact in a metadata block.
type metaLine struct {
	Label string
	Value string
}

// storyFacts holds every field a renderer prints. All three renderers read
// from it and nothing else, so the formats cannot drift apart.
type storyFacts struct {
	Title     string
	Author    string
	Created   string
	Genre     string
	Length    string
	Tone      string
	Keywords  string
	WordCount int

	// Rating is "" when the story is unrated.
	Rating string
	// Model is "" for template-generated stories.
	Model string

	Content    string
	Paragraphs []string

	Footer string
}

func newFacts(s *story.Story, exportedAt time.Time, generator string) storyFacts {
	f := storyFacts{
		Title:      s.DisplayTitle(),
		Author:     s.Author,
		Created:    s.CreatedAt.Format(dateLayout),
		Genre:      s.Genre.Label(),
		Length:     s.Length.Label(),
		Tone:       s.Tone.Label(),
		Keywords:   s.Keywords,
		WordCount:  s.WordCount(),
		Content:    s.Content,
		Paragraphs: splitParagraphs(s.Content),
		Footer:     "Exported from " + generator + " on " + exportedAt.Format(dateLayout),
	}
	if s.HasRating() {
		f.Rating = strconv.Itoa(*s.Rating) + "/5 stars"
	}
	if s.IsAIGenerated() {
		f.Model = s.Model
	}
	return f
}

// WordCountText returns e.g. "8 words".
func (f storyFacts) WordCountText() string {
	return strconv.Itoa(f.WordCount) + " words"
}

// MetaLines returns the labelled facts shown under the title, optional
// lines included only when present.
func (f storyFacts) MetaLines() []metaLine {
	lines := []metaLine{
		{"Author", f.Author},
		{"Created", f.Created},
		{"Genre", f.Genre},
		{"Length", f.Length},
		{"Tone", f.Tone},
		{"Word Count", f.WordCountText()},
	}
	if f.Rating != "" {
		lines = append(lines, metaLine{"Rating", f.Rating})
	}
	if f.Model != "" {
		lines = append(lines, metaLine{"Generated with", f.Model})
	}
	return lines
}

// splitParagraphs splits content on blank lines, dropping empty blocks.
func splitParagraphs(content string) []string {
	var out []string
	for _, block := range paragraphBreak.Split(content, -1) {
		if p := strings.TrimSpace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}
