// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/story"
)

// ============================================================================
// MESSAGES
// ============================================================================

const (
	msgInvalidFormat  = "Invalid format. Supported formats: txt, pdf, html"
	msgExportFailed   = "Export failed. Please try again."
	msgNoStoryIDs     = "No story IDs provided"
	msgNoValidStories = "No valid stories found"
	msgNoStories      = "No stories found for export"
	msgStoryNotFound  = "Story not found"
	msgFolderNotFound = "Collection not found"
	msgMissingUser    = "Missing user"
)

// defaultFormat is used when a request names no format.
const defaultFormat = "txt"

// ============================================================================
// REQUEST TYPES
// ============================================================================

// ExportMultipleRequest is the body of POST /api/export/multiple.
type ExportMultipleRequest struct {
	StoryIDs []int64 `json:"story_ids"`
	Format   string  `json:"format"`
}

// StoryListItem is one row of GET /api/stories.
type StoryListItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Genre      string `json:"genre"`
	WordCount  int    `json:"word_count"`
	Rating     *int   `json:"rating"`
	IsFavorite bool   `json:"is_favorite"`
	CreatedAt  string `json:"created_at"`
}

// ============================================================================
// EXPORT HANDLERS
// ============================================================================

// handleExportStory handles GET /api/stories/{id}/export/{format}.
func (s *Server) handleExportStory(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	format := r.PathValue("format")
	if !validFormat(w, format) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgStoryNotFound)
		return
	}

	st, err := s.store.GetStory(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgStoryNotFound)
			return
		}
		s.exportFailed(w, r, "story", err)
		return
	}

	art, err := s.exportService().ExportStory(r.Context(), st, format)
	if err != nil {
		s.writeExportError(w, r, "story", err)
		return
	}
	s.writeArtifact(w, r, art, format)
}

// handleExportMultiple handles POST /api/export/multiple.
func (s *Server) handleExportMultiple(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req ExportMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.StoryIDs) == 0 {
		writeError(w, http.StatusBadRequest, msgNoStoryIDs)
		return
	}
	if len(req.StoryIDs) > MaxBatchSize {
		writeError(w, http.StatusBadRequest, "Too many story IDs (max "+strconv.Itoa(MaxBatchSize)+")")
		return
	}
	if req.Format == "" {
		req.Format = defaultFormat
	}
	if !validFormat(w, req.Format) {
		return
	}

	col, err := s.store.LoadCollection(r.Context(), owner, storage.Filter{IDs: req.StoryIDs})
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.exportFailed(w, r, "multiple", err)
		return
	}
	if col.Len() == 0 {
		writeError(w, http.StatusNotFound, msgNoValidStories)
		return
	}

	s.exportBatch(w, r, "multiple", col, req.Format)
}

// handleExportCollection handles GET /api/export/collection?format=.
func (s *Server) handleExportCollection(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	format := queryFormat(r)
	if !validFormat(w, format) {
		return
	}

	col, err := s.store.LoadCollection(r.Context(), owner, storage.Filter{})
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.exportFailed(w, r, "collection", err)
		return
	}

	s.exportBatch(w, r, "collection", col, format)
}

// handleExportFolder handles GET /api/collections/{id}/export?format=.
func (s *Server) handleExportFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	format := queryFormat(r)
	if !validFormat(w, format) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgFolderNotFound)
		return
	}
	if _, err := s.store.Collection(r.Context(), owner, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgFolderNotFound)
			return
		}
		s.exportFailed(w, r, "folder", err)
		return
	}

	col, err := s.store.LoadCollection(r.Context(), owner, storage.Filter{CollectionID: &id})
	if err != nil {
		s.exportFailed(w, r, "folder", err)
		return
	}

	s.exportBatch(w, r, "folder", col, format)
}

// handleListStories handles GET /api/stories.
func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	stories, err := s.store.ListStories(r.Context(), owner, storage.Filter{
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
	})
	if err != nil {
		log.Printf("LIST_FAILED | owner=%s error=%v", owner, err)
		writeError(w, http.StatusInternalServerError, "Could not list stories")
		return
	}

	items := make([]StoryListItem, 0, len(stories))
	for _, st := range stories {
		items = append(items, StoryListItem{
			ID:         st.ID,
			Title:      st.ShortTitle(),
			Genre:      st.Genre.Label(),
			WordCount:  st.WordCount(),
			Rating:     st.Rating,
			IsFavorite: st.IsFavorite,
			CreatedAt:  st.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": items, "count": len(items)})
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) exportBatch(w http.ResponseWriter, r *http.Request, kind string, col *story.Collection, format string) {
	art, err := s.exportService().ExportCollection(r.Context(), col, format)
	if err != nil {
		s.writeExportError(w, r, kind, err)
		return
	}
	s.writeArtifact(w, r, art, format)
}

// writeExportError maps engine errors onto responses. Internal failures are
// logged and reported without detail.
func (s *Server) writeExportError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	switch export.StatusCode(err) {
	case http.StatusBadRequest:
		writeError(w, http.StatusBadRequest, msgInvalidFormat)
	case http.StatusNotFound:
		writeError(w, http.StatusNotFound, msgNoStories)
	default:
		s.exportFailed(w, r, kind, err)
	}
}

func (s *Server) exportFailed(w http.ResponseWriter, r *http.Request, kind string, err error) {
	s.stats.RecordFailure()
	log.Printf("EXPORT_FAILED | id=%s kind=%s owner=%s error=%v",
		RequestID(r.Context()), kind, ownerFrom(r), err)
	writeError(w, http.StatusInternalServerError, msgExportFailed)
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, art *export.Artifact, format string) {
	f, _ := export.ParseFormat(format)
	s.stats.RecordExport(f, len(art.Data))
	log.Printf("EXPORT_OK | id=%s owner=%s file=%s stories=%d bytes=%d",
		RequestID(r.Context()), ownerFrom(r), art.Filename, art.Stories, len(art.Data))

	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Disposition", art.Disposition())
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

func validFormat(w http.ResponseWriter, format string) bool {
	if _, err := export.ParseFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidFormat)
		return false
	}
	return true
}

func queryFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return defaultFormat
}

// requireOwner resolves the calling user or writes 401.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := ownerFrom(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, msgMissingUser)
		return "", false
	}
	return owner, true
}

func ownerFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}
