// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/storyexport/internal/story"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"txt", FormatText, false},
		{"TXT", FormatText, false},
		{" html ", FormatHTML, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
		{"", "", true},
		{"markdown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				var ufe *UnsupportedFormatError
				require.ErrorAs(t, err, &ufe)
				assert.Equal(t, tt.in, ufe.Format)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactsOptionalLines(t *testing.T) {
	s := lanternKeeper()
	f := newFacts(s, testExported, "AI Story Generator")

	labels := func(lines []metaLine) []string {
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			out = append(out, l.Label)
		}
		return out
	}

	assert.Equal(t,
		[]string{"Author", "Created", "Genre", "Length", "Tone", "Word Count", "Rating", "Generated with"},
		labels(f.MetaLines()))

	s.Rating = nil
	s.Model = story.TemplateModel
	f = newFacts(s, testExported, "AI Story Generator")
	assert.Equal(t,
		[]string{"Author", "Created", "Genre", "Length", "Tone", "Word Count"},
		labels(f.MetaLines()))
	assert.Empty(t, f.Rating)
	assert.Empty(t, f.Model)
}

func TestFactsFields(t *testing.T) {
	f := newFacts(lanternKeeper(), testExported, "Tales")

	assert.Equal(t, "The Lantern Keeper", f.Title)
	assert.Equal(t, "March 05, 2025 at 02:07 PM", f.Created)
	assert.Equal(t, "Mystery", f.Genre)
	assert.Equal(t, "Short (100-300 words)", f.Length)
	assert.Equal(t, "Mysterious", f.Tone)
	assert.Equal(t, "11 words", f.WordCountText())
	assert.Equal(t, "4/5 stars", f.Rating)
	assert.Equal(t, "gpt-3.5-turbo", f.Model)
	assert.Equal(t, "Exported from Tales on March 06, 2025 at 09:30 AM", f.Footer)
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"blank", "\n\n  \n", nil},
		{"single", "One paragraph\nwith a soft break.", []string{"One paragraph\nwith a soft break."}},
		{"two", "First.\n\nSecond.", []string{"First.", "Second."}},
		{"whitespace gap", "First.\n   \nSecond.", []string{"First.", "Second."}},
		{"crlf", "First.\r\n\r\nSecond.", []string{"First.", "Second."}},
		{"extra gaps", "\n\nFirst.\n\n\n\nSecond.\n\n", []string{"First.", "Second."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParagraphs(tt.content))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, StatusCode(&UnsupportedFormatError{Format: "docx"}))
	assert.Equal(t, http.StatusNotFound, StatusCode(ErrEmptyBatch))
	assert.Equal(t, http.StatusInternalServerError,
		StatusCode(&RenderError{StoryID: 1, Format: FormatPDF, Err: errors.New("boom")}))
	assert.Equal(t, http.StatusInternalServerError,
		StatusCode(&ArchiveError{Entry: "a.txt", Err: errors.New("boom")}))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("anything else")))
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")

	re := &RenderError{StoryID: 3, Format: FormatHTML, Err: cause}
	assert.ErrorIs(t, re, ErrRender)
	assert.ErrorIs(t, re, cause)
	assert.Contains(t, re.Error(), "story 3")

	ae := &ArchiveError{Entry: MetadataEntry, Err: cause}
	assert.ErrorIs(t, ae, ErrArchive)
	assert.ErrorIs(t, ae, cause)
	assert.Contains(t, ae.Error(), MetadataEntry)
}
