// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// ARCHIVE BUILDER
// =============================================================================

// ArchiveItem is one rendered story destined for an archive.
type ArchiveItem struct {
	Name string
	Data []byte
}

// BuildArchive writes items, in order, followed by the metadata entry into an
// in-memory zip archive. Nothing is returned unless every entry was written
// and the archive closed cleanly.
func BuildArchive(items []ArchiveItem, meta *Metadata, modified time.Time) ([]byte, error) {
	if meta == nil {
		return nil, &ArchiveError{Entry: MetadataEntry, Err: errors.New("missing metadata")}
	}

	metaJSON, err := marshalMetadata(meta)
	if err != nil {
		return nil, &ArchiveError{Entry: MetadataEntry, Err: err}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, item := range items {
		if err := writeEntry(zw, item.Name, item.Data, modified); err != nil {
			return nil, &ArchiveError{Entry: item.Name, Err: err}
		}
	}
	if err := writeEntry(zw, MetadataEntry, metaJSON, modified); err != nil {
		return nil, &ArchiveError{Entry: MetadataEntry, Err: err}
	}

	if err := zw.Close(); err != nil {
		return nil, &ArchiveError{Err: err}
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	if name == "" {
		return errors.New("empty entry name")
	}
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalMetadata(meta *Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// FILENAMES
// =============================================================================

// ItemFilename returns slug(title or "story") + "_" + id + ext.
func ItemFilename(s *story.Story, ext string) string {
	base := s.Title
	if base == "" {
		base = "story"
	}
	return Slug(base) + "_" + strconv.FormatInt(s.ID, 10) + ext
}

// ArchiveFilename returns the download name for a batch exported at t.
func ArchiveFilename(t time.Time) string {
	return "stories_collection_" + t.Format("20060102_150405") + ".zip"
}
