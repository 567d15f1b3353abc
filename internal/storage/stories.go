// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// NewStory is the input to CreateStory.
type NewStory struct {
	Owner    string
	Title    string
	Keywords string
	Genre    story.Genre
	Length   story.Length
	Tone     story.Tone
	Content  string

	Rating     *int
	IsFavorite bool
	IsPublic   bool

	Model          string
	GenerationTime *float64

	CollectionID *int64

	// CreatedAt defaults to now.
	CreatedAt time.Time
}

// Filter narrows ListStories. Zero value lists every story of the owner.
type Filter struct {
	// IDs restricts results to these story ids. Unknown ids are ignored.
	IDs []int64

	// CollectionID restricts results to one collection.
	CollectionID *int64

	FavoritesOnly bool
}

const storyColumns = `s.id, s.title, u.username, s.keywords, s.genre, s.length, s.tone, s.content,
	s.created_at, s.rating, s.is_favorite, s.ai_model_used, s.collection_id`

// CreateStory validates and stores a story. An empty title is derived from the
// content.
func (s *Store) CreateStory(ctx context.Context, in NewStory) (*story.Story, error) {
	if err := normalizeNewStory(&in); err != nil {
		return nil, err
	}

	uid, err := s.userID(ctx, in.Owner)
	if err != nil {
		return nil, err
	}

	if in.CollectionID != nil {
		if _, err := s.Collection(ctx, in.Owner, *in.CollectionID); err != nil {
			return nil, err
		}
	}

	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now()
	}

	var rating sql.NullInt64
	if in.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*in.Rating), Valid: true}
	}
	var genTime sql.NullFloat64
	if in.GenerationTime != nil {
		genTime = sql.NullFloat64{Float64: *in.GenerationTime, Valid: true}
	}
	var collection sql.NullInt64
	if in.CollectionID != nil {
		collection = sql.NullInt64{Int64: *in.CollectionID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stories (user_id, collection_id, title, keywords, genre, length, tone, content,
		                      created_at, is_public, is_favorite, rating, generation_time, ai_model_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, collection, in.Title, in.Keywords, string(in.Genre), string(in.Length), string(in.Tone),
		in.Content, formatTime(in.CreatedAt), boolInt(in.IsPublic), boolInt(in.IsFavorite),
		rating, genTime, in.Model)
	if err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetStory(ctx, in.Owner, id)
}

func normalizeNewStory(in *NewStory) error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: story content is required", ErrInvalid)
	}
	if in.Title == "" {
		in.Title = story.AutoTitle(in.Content)
	}

	var err error
	if in.Genre == "" {
		in.Genre = story.GenreFantasy
	} else if in.Genre, err = story.ParseGenre(string(in.Genre)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Length == "" {
		in.Length = story.LengthShort
	} else if in.Length, err = story.ParseLength(string(in.Length)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Tone == "" {
		in.Tone = story.ToneHappy
	} else if in.Tone, err = story.ParseTone(string(in.Tone)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if in.Rating != nil && (*in.Rating < story.MinRating || *in.Rating > story.MaxRating) {
		return fmt.Errorf("%w: rating %d outside %d-%d", ErrInvalid, *in.Rating, story.MinRating, story.MaxRating)
	}
	if in.Model == "" {
		in.Model = story.DefaultModel
	}
	return nil
}

// GetStory returns one of owner's stories.
func (s *Store) GetStory(ctx context.Context, owner string, id int64) (*story.Story, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+`
		 FROM stories s JOIN users u ON u.id = s.user_id
		 WHERE s.id = ? AND u.username = ?`, id, owner)

	st, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("story %d: %w", id, ErrNotFound)
	}
	return st, err
}

// ListStories returns owner's stories, newest first.
func (s *Store) ListStories(ctx context.Context, owner string, f Filter) ([]*story.Story, error) {
	query := `SELECT ` + storyColumns + `
		FROM stories s JOIN users u ON u.id = s.user_id
		WHERE u.username = ?`
	args := []any{owner}

	if len(f.IDs) > 0 {
		query += ` AND s.id IN (?` + strings.Repeat(", ?", len(f.IDs)-1) + `)`
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if f.CollectionID != nil {
		query += ` AND s.collection_id = ?`
		args = append(args, *f.CollectionID)
	}
	if f.FavoritesOnly {
		query += ` AND s.is_favorite = 1`
	}
	query += ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*story.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// LoadCollection returns owner's matching stories as an export set. Unknown
// owners are reported as ErrNotFound; an owner without stories yields an
// empty collection.
func (s *Store) LoadCollection(ctx context.Context, owner string, f Filter) (*story.Collection, error) {
	name, err := s.OwnerName(ctx, owner)
	if err != nil {
		return nil, err
	}
	stories, err := s.ListStories(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return &story.Collection{Owner: name, Stories: stories}, nil
}

func scanStory(sc scanner) (*story.Story, error) {
	var (
		st         story.Story
		genre      string
		length     string
		tone       string
		created    string
		rating     sql.NullInt64
		favorite   int
		collection sql.NullInt64
	)
	err := sc.Scan(&st.ID, &st.Title, &st.Author, &st.Keywords, &genre, &length, &tone, &st.Content,
		&created, &rating, &favorite, &st.Model, &collection)
	if err != nil {
		return nil, err
	}

	st.Genre = story.Genre(genre)
	st.Length = story.Length(length)
	st.Tone = story.Tone(tone)
	st.IsFavorite = favorite != 0
	if rating.Valid {
		st.Rating = story.IntPtr(int(rating.Int64))
	}
	if collection.Valid {
		id := collection.Int64
		st.CollectionID = &id
	}
	if st.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &st, nil
}
