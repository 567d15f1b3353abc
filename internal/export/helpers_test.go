// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/storyexport/internal/story"
)

var (
	testCreated  = time.Date(2025, time.March, 5, 14, 7, 0, 0, time.UTC)
	testExported = time.Date(2025, time.March, 6, 9, 30, 0, 0, time.UTC)
)

func lanternKeeper() *story.Story {
	return &story.Story{
		ID:        42,
		Title:     "The Lantern Keeper",
		Author:    "ana",
		Keywords:  "lighthouse, storm, ghost",
		Genre:     story.GenreMystery,
		Length:    story.LengthShort,
		Tone:      story.ToneMysterious,
		Content:   "The storm came at dusk.\n\nNobody saw the light go out.",
		CreatedAt: testCreated,
		Rating:    story.IntPtr(4),
		Model:     "gpt-3.5-turbo",
	}
}

func templateStory(id int64, genre story.Genre) *story.Story {
	return &story.Story{
		ID:        id,
		Author:    "ana",
		Keywords:  "forest",
		Genre:     genre,
		Length:    story.LengthShort,
		Tone:      story.ToneHappy,
		Content:   "A short walk in the woods.",
		CreatedAt: testCreated.Add(time.Duration(id) * time.Hour),
		Model:     story.TemplateModel,
	}
}

// testOptions returns options with a fixed clock and uncompressed PDFs.
func testOptions() *Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return testExported }
	opts.PDF.Compress = false
	return opts
}

type zipEntry struct {
	Name string
	Data []byte
}

func readZip(t *testing.T, data []byte) []zipEntry {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make([]zipEntry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries = append(entries, zipEntry{Name: f.Name, Data: b})
	}
	return entries
}
