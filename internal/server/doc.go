// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP API for story exports.
//
// # Endpoints
//
//   - GET  /api/stories/{id}/export/{format}   - Export one story (txt, html, pdf)
//   - POST /api/export/multiple                - Export chosen stories as a zip
//   - GET  /api/export/collection?format=      - Export every story of the caller
//   - GET  /api/collections/{id}/export?format= - Export one named collection
//   - GET  /api/stories                        - List the caller's stories
//   - GET  /health                             - Health check
//   - GET  /stats                              - Export counters
//
// The caller is identified by the X-Story-User header set by the fronting
// authentication layer. An optional bearer API key guards every route but
// /health.
//
// # Errors
//
// Errors are JSON objects of the form {"error": "message"}. An unsupported
// format is 400, nothing to export is 404, and any render or archive failure
// is 500 with a generic message; the cause is only logged.
//
// # Usage
//
//	srv := server.NewServer(":8787", store, export.New(nil))
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
