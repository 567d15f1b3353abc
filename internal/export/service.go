// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// TARGETS AND ARTIFACTS
// =============================================================================

// Target is what to export: a single story or a collection.
// When Story is set Collection is ignored.
type Target struct {
	Story      *story.Story
	Collection *story.Collection
}

// Single targets one story.
func Single(s *story.Story) Target { return Target{Story: s} }

// Batch targets a collection of stories.
func Batch(c *story.Collection) Target { return Target{Collection: c} }

// Artifact is a finished export ready to be downloaded.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte

	// Stories is the number of stories rendered into Data.
	Stories int
}

// Disposition returns the Content-Disposition header value for the artifact.
func (a *Artifact) Disposition() string {
	return fmt.Sprintf("attachment; filename=%q", a.Filename)
}

// =============================================================================
// SERVICE
// =============================================================================

// Service validates export requests, dispatches to renderers and assembles
// archives. A Service holds no mutable state and may be shared freely.
type Service struct {
	renderers map[Format]Renderer
	now       func() time.Time
}

// New creates a Service. opts is copied; nil means DefaultOptions.
func New(opts *Options) *Service {
	o := DefaultOptions()
	if opts != nil {
		o = fillDefaults(*opts)
	}

	return &Service{
		renderers: map[Format]Renderer{
			FormatText: NewTextRenderer(o),
			FormatHTML: NewHTMLRenderer(o),
			FormatPDF:  NewPDFRenderer(o),
		},
		now: o.Now,
	}
}

func fillDefaults(o Options) *Options {
	def := DefaultOptions()
	if o.Generator == "" {
		o.Generator = def.Generator
	}
	if o.Theme == "" {
		o.Theme = def.Theme
	}
	if o.PDF.PageSize == "" {
		o.PDF = def.PDF
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	return &o
}

// Renderer returns the renderer for a format.
func (s *Service) Renderer(f Format) (Renderer, bool) {
	r, ok := s.renderers[f]
	return r, ok
}

// Export renders target in the named format. The format is validated before
// any rendering happens. A single story yields its document; a collection
// yields a zip archive with one entry per story plus collection_info.json.
//
// ctx is checked between stories; a cancelled caller gets ctx.Err() and no
// artifact.
func (s *Service) Export(ctx context.Context, target Target, format string) (*Artifact, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	r := s.renderers[f]
	exportedAt := s.now()

	if target.Story != nil {
		data, err := r.Render(target.Story, exportedAt)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    ItemFilename(target.Story, r.FileExtension()),
			ContentType: r.MimeType(),
			Data:        data,
			Stories:     1,
		}, nil
	}

	c := target.Collection
	if c.Len() == 0 {
		return nil, ErrEmptyBatch
	}

	items := make([]ArchiveItem, 0, c.Len())
	for i, st := range c.Stories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st == nil {
			return nil, &RenderError{Format: f, Err: fmt.Errorf("batch position %d: %w", i, ErrMissingStory)}
		}
		data, err := r.Render(st, exportedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, ArchiveItem{Name: ItemFilename(st, r.FileExtension()), Data: data})
	}

	meta, err := Aggregate(c, exportedAt)
	if err != nil {
		return nil, err
	}

	data, err := BuildArchive(items, meta, exportedAt)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Filename:    ArchiveFilename(exportedAt),
		ContentType: "application/zip",
		Data:        data,
		Stories:     len(items),
	}, nil
}

// ExportStory exports one story.
func (s *Service) ExportStory(ctx context.Context, st *story.Story, format string) (*Artifact, error) {
	return s.Export(ctx, Single(st), format)
}

// ExportCollection exports a collection as a zip archive.
func (s *Service) ExportCollection(ctx context.Context, c *story.Collection, format string) (*Artifact, error) {
	return s.Export(ctx, Batch(c), format)
}
