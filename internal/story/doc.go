// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package story defines the read-only story model consumed by the export engine.
//
// # Key Types
//
//   - Story: immutable snapshot of one story at the moment an export begins
//   - Collection: ordered set of stories belonging to one owner
//   - Genre, Length, Tone: closed enumerations with human-readable labels
//
// # Derived Fields
//
// Word count and generation method are never stored. They are computed from
// Content and Model every time they are asked for:
//
//	s := &story.Story{Content: "Once upon a time", Model: story.TemplateModel}
//	s.WordCount()        // 4
//	s.IsAIGenerated()    // false
package story
