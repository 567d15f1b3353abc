// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"errors"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// PDF STYLES
// =============================================================================

// RGB is a text color.
type RGB struct {
	R, G, B int
}

var (
	colorBlack = RGB{0, 0, 0}
	colorBlue  = RGB{0, 0, 255}
	colorGray  = RGB{128, 128, 128}
)

// TextStyle describes one styled region of the document. Sizes are in points.
type TextStyle struct {
	Size       float64
	Leading    float64
	SpaceAfter float64
	Indent     float64
	Color      RGB
}

// PDFOptions fixes page geometry and styles for a PDFRenderer.
type PDFOptions struct {
	// PageSize is a page size name understood by fpdf ("A4", "Letter", ...).
	PageSize string

	// Margin is applied on all four sides, in points.
	Margin float64

	// FontFamily is a core font family ("Helvetica", "Times", "Courier").
	FontFamily string

	// Compress enables stream compression. Disable to inspect output.
	Compress bool

	Title    TextStyle
	Meta     TextStyle
	Keywords TextStyle
	Content  TextStyle

	// ParagraphGap is extra space after each body paragraph.
	ParagraphGap float64
}

// DefaultPDFOptions returns A4 pages with one-inch margins.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:   "A4",
		Margin:     72,
		FontFamily: "Helvetica",
		Compress:   true,
		Title:      TextStyle{Size: 24, Leading: 28.8, SpaceAfter: 30, Color: colorBlue},
		Meta:       TextStyle{Size: 10, Leading: 12, SpaceAfter: 8, Color: colorGray},
		Keywords:   TextStyle{Size: 11, Leading: 13.2, SpaceAfter: 20, Indent: 20, Color: colorBlue},
		Content:    TextStyle{Size: 12, Leading: 18, SpaceAfter: 12, Color: colorBlack},

		ParagraphGap: 6,
	}
}

// =============================================================================
// PDF RENDERER
// =============================================================================

// PDFRenderer renders stories as paginated PDF documents.
type PDFRenderer struct {
	generator string
	opts      PDFOptions
}

// NewPDFRenderer creates a PDF renderer. Geometry and styles are copied and
// fixed for the renderer's lifetime.
func NewPDFRenderer(opts *Options) *PDFRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &PDFRenderer{generator: opts.Generator, opts: opts.PDF}
}

// Render converts a story to PDF.
func (r *PDFRenderer) Render(s *story.Story, exportedAt time.Time) ([]byte, error) {
	if s == nil {
		return nil, &RenderError{Format: FormatPDF, Err: ErrMissingStory}
	}
	f := newFacts(s, exportedAt, r.generator)
	o := r.opts

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        o.PageSize,
	})
	pdf.SetCompression(o.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(exportedAt)
	pdf.SetModificationDate(exportedAt)
	pdf.SetMargins(o.Margin, o.Margin, o.Margin)
	pdf.SetAutoPageBreak(true, o.Margin)
	pdf.SetTitle(f.Title, true)
	pdf.SetAuthor(f.Author, true)
	pdf.SetCreator(r.generator, true)

	// Core fonts are cp1252 encoded.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	// Title
	r.useStyle(pdf, "B", o.Title)
	pdf.MultiCell(0, o.Title.Leading, tr(f.Title), "", "C", false)
	pdf.Ln(o.Title.SpaceAfter)

	// Metadata block
	for _, line := range f.MetaLines() {
		r.labelled(pdf, tr, line, o.Meta)
		pdf.Ln(o.Meta.Leading)
	}
	pdf.Ln(o.Meta.SpaceAfter)

	// Keyword callout
	pdf.SetLeftMargin(o.Margin + o.Keywords.Indent)
	pdf.SetX(o.Margin + o.Keywords.Indent)
	r.labelled(pdf, tr, metaLine{Label: "Keywords", Value: f.Keywords}, o.Keywords)
	pdf.SetLeftMargin(o.Margin)
	pdf.Ln(o.Keywords.Leading + o.Keywords.SpaceAfter)

	// Body
	r.useStyle(pdf, "", o.Content)
	for _, p := range f.Paragraphs {
		pdf.MultiCell(0, o.Content.Leading, tr(p), "", "J", false)
		pdf.Ln(o.Content.SpaceAfter + o.ParagraphGap)
	}

	// Footer
	pdf.Ln(o.Title.SpaceAfter)
	r.useStyle(pdf, "", o.Meta)
	pdf.MultiCell(0, o.Meta.Leading, tr(f.Footer), "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{StoryID: s.ID, Format: FormatPDF, Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{StoryID: s.ID, Format: FormatPDF, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &RenderError{StoryID: s.ID, Format: FormatPDF, Err: errors.New("empty document")}
	}
	return buf.Bytes(), nil
}

// Format returns FormatPDF.
func (r *PDFRenderer) Format() Format { return FormatPDF }

// FileExtension returns the file extension for PDF.
func (r *PDFRenderer) FileExtension() string { return ".pdf" }

// MimeType returns the MIME type for PDF.
func (r *PDFRenderer) MimeType() string { return "application/pdf" }

func (r *PDFRenderer) useStyle(pdf *fpdf.Fpdf, fontStyle string, st TextStyle) {
	pdf.SetFont(r.opts.FontFamily, fontStyle, st.Size)
	pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

// labelled writes "Label: value" with a bold label, wrapping as needed.
func (r *PDFRenderer) labelled(pdf *fpdf.Fpdf, tr func(string) string, line metaLine, st TextStyle) {
	r.useStyle(pdf, "B", st)
	pdf.Write(st.Leading, tr(line.Label+": "))
	r.useStyle(pdf, "", st)
	pdf.Write(st.Leading, tr(line.Value))
}
