// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/storyexport/internal/story"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "stories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_MigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	_, err = s.CreateUser(ctx, "ana")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening applies nothing new and keeps data.
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	u, err := s.UserByName(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "  ana ")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	_, err = s.CreateUser(ctx, "ana")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.CreateUser(ctx, "")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.UserByName(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	// Every new user gets a default collection.
	folders, err := s.Collections(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, story.DefaultFolderName, folders[0].Name)
	assert.True(t, folders[0].IsDefault)
}

func TestCreateCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "ana")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "bo")
	require.NoError(t, err)

	f, err := s.CreateCollection(ctx, "ana", story.Folder{Name: "Dragons"})
	require.NoError(t, err)
	assert.Equal(t, story.DefaultFolderColor, f.Color)
	assert.Equal(t, story.DefaultFolderIcon, f.Icon)
	assert.Equal(t, "ana", f.Owner)

	_, err = s.CreateCollection(ctx, "ana", story.Folder{Name: "Dragons"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Names are unique per owner only.
	_, err = s.CreateCollection(ctx, "bo", story.Folder{Name: "Dragons"})
	assert.NoError(t, err)

	_, err = s.CreateCollection(ctx, "ana", story.Folder{Name: "Bad", Color: "purple"})
	assert.ErrorIs(t, err, ErrInvalid)

	got, err := s.Collection(ctx, "ana", f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dragons", got.Name)

	_, err = s.Collection(ctx, "bo", f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateStory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "ana")
	require.NoError(t, err)

	created := time.Date(2025, 3, 5, 14, 7, 0, 123456789, time.UTC)
	st, err := s.CreateStory(ctx, NewStory{
		Owner:     "ana",
		Keywords:  "dragon, cave",
		Genre:     "Sci_Fi",
		Length:    "medium",
		Tone:      "dark",
		Content:   strings.Repeat("word ", 20),
		Rating:    story.IntPtr(4),
		Model:     story.TemplateModel,
		CreatedAt: created,
	})
	require.NoError(t, err)

	assert.Equal(t, "ana", st.Author)
	assert.Equal(t, story.GenreSciFi, st.Genre)
	assert.Equal(t, story.LengthMedium, st.Length)
	assert.Equal(t, story.ToneDark, st.Tone)
	assert.Equal(t, created, st.CreatedAt)
	require.NotNil(t, st.Rating)
	assert.Equal(t, 4, *st.Rating)
	assert.False(t, st.IsAIGenerated())
	assert.Equal(t, 20, st.WordCount())
	// Untitled stories are titled from their content.
	assert.Equal(t, story.AutoTitle(st.Content), st.Title)
	assert.True(t, strings.HasSuffix(st.Title, "..."))
}

func TestCreateStory_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "ana")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   NewStory
		want error
	}{
		{"no content", NewStory{Owner: "ana"}, ErrInvalid},
		{"bad genre", NewStory{Owner: "ana", Content: "x", Genre: "western"}, ErrInvalid},
		{"bad length", NewStory{Owner: "ana", Content: "x", Length: "epic"}, ErrInvalid},
		{"bad tone", NewStory{Owner: "ana", Content: "x", Tone: "wry"}, ErrInvalid},
		{"rating low", NewStory{Owner: "ana", Content: "x", Rating: story.IntPtr(0)}, ErrInvalid},
		{"rating high", NewStory{Owner: "ana", Content: "x", Rating: story.IntPtr(6)}, ErrInvalid},
		{"unknown owner", NewStory{Owner: "zed", Content: "x"}, ErrNotFound},
		{"foreign collection", NewStory{Owner: "ana", Content: "x", CollectionID: ptr(int64(999))}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateStory(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	st, err := s.CreateStory(ctx, NewStory{Owner: "ana", Content: "A tale."})
	require.NoError(t, err)
	assert.Equal(t, story.GenreFantasy, st.Genre)
	assert.Equal(t, story.DefaultModel, st.Model)
	assert.Nil(t, st.Rating)
	assert.Equal(t, "A tale.", st.Title)
}

func TestListStories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"ana", "bo"} {
		_, err := s.CreateUser(ctx, name)
		require.NoError(t, err)
	}
	folder, err := s.CreateCollection(ctx, "ana", story.Folder{Name: "Night"})
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(owner string, offset time.Duration, fav bool, col *int64) int64 {
		st, err := s.CreateStory(ctx, NewStory{
			Owner:        owner,
			Content:      "content",
			CreatedAt:    base.Add(offset),
			IsFavorite:   fav,
			CollectionID: col,
		})
		require.NoError(t, err)
		return st.ID
	}

	oldest := mk("ana", 0, false, nil)
	newest := mk("ana", 2*time.Hour, true, &folder.ID)
	middle := mk("ana", 90*time.Minute+500*time.Millisecond, false, &folder.ID)
	other := mk("bo", time.Hour, true, nil)

	ids := func(list []*story.Story) []int64 {
		out := make([]int64, 0, len(list))
		for _, st := range list {
			out = append(out, st.ID)
		}
		return out
	}

	all, err := s.ListStories(ctx, "ana", Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{newest, middle, oldest}, ids(all))

	byID, err := s.ListStories(ctx, "ana", Filter{IDs: []int64{oldest, other, 12345}})
	require.NoError(t, err)
	assert.Equal(t, []int64{oldest}, ids(byID))

	inFolder, err := s.ListStories(ctx, "ana", Filter{CollectionID: &folder.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{newest, middle}, ids(inFolder))

	favs, err := s.ListStories(ctx, "ana", Filter{FavoritesOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{newest}, ids(favs))

	_, err = s.GetStory(ctx, "ana", other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "ana")
	require.NoError(t, err)

	col, err := s.LoadCollection(ctx, "ana", Filter{})
	require.NoError(t, err)
	assert.Equal(t, "ana", col.Owner)
	assert.Equal(t, 0, col.Len())

	_, err = s.LoadCollection(ctx, "nobody", Filter{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
