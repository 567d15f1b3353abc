// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders stories to downloadable documents.
//
// Three renderers share one field-extraction helper so every format prints the
// same facts: TextRenderer, HTMLRenderer and PDFRenderer. Service validates the
// requested format, renders a single story directly, and for a collection
// renders every story, aggregates statistics and builds a zip archive in
// memory. Nothing is returned unless the whole export succeeded.
//
// # Key Types
//
//   - Format: txt, html or pdf
//   - Renderer: document renderer interface
//   - Service: export entry point
//   - Metadata: collection_info.json document
//   - Artifact: finished download (name, content type, bytes)
//
// # Usage
//
//	svc := export.New(export.DefaultOptions())
//	art, err := svc.ExportStory(ctx, s, "pdf")
//	if err != nil {
//	    http.Error(w, "export failed", export.StatusCode(err))
//	    return
//	}
//	w.Header().Set("Content-Disposition", art.Disposition())
package export
