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

// User is a story owner.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// CreateUser adds a user together with their default "My Stories" collection.
func (s *Store) CreateUser(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := s.now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`,
		username, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (user_id, name, description, color, icon, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		id, story.DefaultFolderName, "Your personal story collection",
		story.DefaultFolderColor, "fas fa-book", formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert default collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &User{ID: id, Username: username, CreatedAt: now.UTC()}, nil
}

// UserByName looks a user up by username.
func (s *Store) UserByName(ctx context.Context, username string) (*User, error) {
	var (
		u       User
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// OwnerName returns the display name used as the author of a user's stories.
func (s *Store) OwnerName(ctx context.Context, username string) (string, error) {
	u, err := s.UserByName(ctx, username)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

func (s *Store) userID(ctx context.Context, username string) (int64, error) {
	u, err := s.UserByName(ctx, username)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
