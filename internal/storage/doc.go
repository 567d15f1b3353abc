// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists users, story collections and stories in SQLite.
//
// The schema is versioned with embedded migrations applied on Open. Queries
// are always scoped to an owner: a story belonging to someone else is
// reported as ErrNotFound.
//
// # Key Types
//
//   - Store: SQLite-backed persistence
//   - NewStory: input for CreateStory
//   - Filter: narrows ListStories to ids or a collection
//
// # Usage
//
//	store, err := storage.Open(ctx, "stories.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	col, err := store.LoadCollection(ctx, "ana", storage.Filter{})
package storage
