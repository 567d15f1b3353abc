// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// COLLECTION METADATA
// =============================================================================

// MetadataEntry is the archive entry holding the serialized Metadata.
const MetadataEntry = "collection_info.json"

// Metadata summarizes one batch export. It is written as collection_info.json
// and its JSON field names are part of the public format.
type Metadata struct {
	CollectionInfo CollectionInfo `json:"collection_info"`
	Statistics     Statistics     `json:"statistics"`
	Stories        []StorySummary `json:"stories"`
}

// CollectionInfo describes the batch as a whole.
type CollectionInfo struct {
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	ExportDate   string    `json:"export_date"`
	TotalStories int       `json:"total_stories"`
	DateRange    DateRange `json:"date_range"`
}

// DateRange holds the oldest and newest creation timestamps in a batch.
type DateRange struct {
	Oldest string `json:"oldest"`
	Newest string `json:"newest"`
}

// Statistics holds aggregate numbers over a batch.
type Statistics struct {
	TotalWords           int        `json:"total_words"`
	AverageWordsPerStory OneDecimal `json:"average_words_per_story"`

	// AverageRating is nil, encoded as null, when no story is rated.
	AverageRating *OneDecimal `json:"average_rating"`

	GenreDistribution map[string]int    `json:"genre_distribution"`
	GenerationMethods GenerationMethods `json:"generation_methods"`
}

// GenerationMethods counts AI versus template-generated stories.
type GenerationMethods struct {
	AIGenerated   int `json:"ai_generated"`
	TemplateBased int `json:"template_based"`
}

// StorySummary is one entry of the stories list.
type StorySummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
	Genre      string `json:"genre"`
	WordCount  int    `json:"word_count"`
	Rating     *int   `json:"rating"`
	IsFavorite bool   `json:"is_favorite"`
	AIModel    string `json:"ai_model"`
}

// OneDecimal is a number always encoded with exactly one decimal place.
type OneDecimal float64

// MarshalJSON encodes the value as e.g. 12.0 or 3.5.
func (d OneDecimal) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(d), 'f', 1, 64), nil
}

// round1 rounds the exact binary value of x to one decimal place, ties to
// even. 2.25 becomes 2.2; 0.15 is stored below the tie and becomes 0.1.
func round1(x float64) OneDecimal {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return OneDecimal(x)
	}
	return OneDecimal(v)
}

// isoTime formats timestamps the way collection_info.json expects.
func isoTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate computes batch metadata in a single pass over the collection.
// It fails with ErrEmptyBatch when the collection holds no stories.
func Aggregate(c *story.Collection, exportedAt time.Time) (*Metadata, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyBatch
	}
	for i, s := range c.Stories {
		if s == nil {
			return nil, fmt.Errorf("batch position %d: %w", i, ErrMissingStory)
		}
	}

	owner := c.Owner
	if owner == "" {
		owner = c.Stories[0].Author
	}

	var totalWords, ratingSum, ratedCount, aiCount int
	oldest, newest := c.Stories[0].CreatedAt, c.Stories[0].CreatedAt
	genres := make(map[string]int)
	summaries := make([]StorySummary, 0, len(c.Stories))

	for _, s := range c.Stories {
		words := s.WordCount()
		totalWords += words

		if s.HasRating() {
			ratingSum += *s.Rating
			ratedCount++
		}
		if s.IsAIGenerated() {
			aiCount++
		}
		genres[s.Genre.Label()]++

		if s.CreatedAt.Before(oldest) {
			oldest = s.CreatedAt
		}
		if s.CreatedAt.After(newest) {
			newest = s.CreatedAt
		}

		summaries = append(summaries, StorySummary{
			ID:         s.ID,
			Title:      s.ShortTitle(),
			CreatedAt:  isoTime(s.CreatedAt),
			Genre:      s.Genre.Label(),
			WordCount:  words,
			Rating:     s.Rating,
			IsFavorite: s.IsFavorite,
			AIModel:    s.Model,
		})
	}

	n := len(c.Stories)
	stats := Statistics{
		TotalWords:           totalWords,
		AverageWordsPerStory: round1(float64(totalWords) / float64(n)),
		GenreDistribution:    genres,
		GenerationMethods: GenerationMethods{
			AIGenerated:   aiCount,
			TemplateBased: n - aiCount,
		},
	}
	if ratedCount > 0 {
		avg := round1(float64(ratingSum) / float64(ratedCount))
		stats.AverageRating = &avg
	}

	return &Metadata{
		CollectionInfo: CollectionInfo{
			Title:        "Story Collection - " + owner,
			Author:       owner,
			ExportDate:   isoTime(exportedAt),
			TotalStories: n,
			DateRange: DateRange{
				Oldest: isoTime(oldest),
				Newest: isoTime(newest),
			},
		},
		Statistics: stats,
		Stories:    summaries,
	}, nil
}
