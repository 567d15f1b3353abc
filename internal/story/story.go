// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package story

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TemplateModel is the model identifier recorded for stories produced by the
// built-in template generator rather than a language model.
const TemplateModel = "simple_algorithm"

// DefaultModel is recorded when a story is created without a model identifier.
const DefaultModel = "gpt-3.5-turbo"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// autoTitleRunes is how much content is used to title an untitled story.
const autoTitleRunes = 50

// GenerationMethod tags how a story's content was produced.
type GenerationMethod string

const (
	MethodAI       GenerationMethod = "ai-generated"
	MethodTemplate GenerationMethod = "template-generated"
)

// =============================================================================
// STORY
// =============================================================================

// Story is a snapshot of one exportable story.
// Callers must not mutate a Story once it has been handed to an exporter.
type Story struct {
	ID       int64
	Title    string
	Author   string // owner display name
	Keywords string
	Genre    Genre
	Length   Length
	Tone     Tone
	Content  string

	CreatedAt time.Time

	// Rating is nil when the story has not been rated.
	Rating     *int
	IsFavorite bool

	// Model is the recorded model identifier; TemplateModel marks template output.
	Model string

	// CollectionID is nil for stories outside any collection.
	CollectionID *int64
}

// WordCount returns the number of whitespace-delimited tokens in Content.
func (s *Story) WordCount() int {
	return len(strings.Fields(s.Content))
}

// IsAIGenerated reports whether the story came from a language model.
func (s *Story) IsAIGenerated() bool {
	return s.Model != TemplateModel
}

// GenerationMethod returns MethodAI or MethodTemplate.
func (s *Story) GenerationMethod() GenerationMethod {
	if s.IsAIGenerated() {
		return MethodAI
	}
	return MethodTemplate
}

// HasRating reports whether a rating is recorded.
func (s *Story) HasRating() bool {
	return s.Rating != nil
}

// DisplayTitle returns the title used in rendered documents.
func (s *Story) DisplayTitle() string {
	if s.Title == "" {
		return "Untitled Story"
	}
	return s.Title
}

// ShortTitle returns the title used in listings and collection metadata.
func (s *Story) ShortTitle() string {
	if s.Title == "" {
		return "Untitled"
	}
	return s.Title
}

// AutoTitle derives a title from content: the first 50 characters, with an
// ellipsis when the content is longer.
func AutoTitle(content string) string {
	if utf8.RuneCountInString(content) <= autoTitleRunes {
		return content
	}
	return string([]rune(content)[:autoTitleRunes]) + "..."
}

// IntPtr is a helper for building optional ratings.
func IntPtr(v int) *int {
	return &v
}

// =============================================================================
// COLLECTION
// =============================================================================

// Collection is an ordered group of stories exported together.
// All stories are expected to share Owner; this is not verified.
type Collection struct {
	Owner   string
	Stories []*Story
}

// Len returns the number of stories in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Stories)
}

// Folder describes a user-defined group of stories as persisted by storage.
type Folder struct {
	ID          int64
	Owner       string
	Name        string
	Description string
	Color       string
	Icon        string
	IsDefault   bool
	CreatedAt   time.Time
}

// Folder defaults.
const (
	DefaultFolderName  = "My Stories"
	DefaultFolderColor = "#6f42c1"
	DefaultFolderIcon  = "fas fa-folder"
)
