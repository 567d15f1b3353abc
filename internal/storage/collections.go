// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jeranaias/storyexport/internal/story"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const folderColumns = `c.id, u.username, c.name, c.description, c.color, c.icon, c.is_default, c.created_at`

// CreateCollection adds a named collection for owner. Names are unique per owner.
func (s *Store) CreateCollection(ctx context.Context, owner string, f story.Folder) (*story.Folder, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return nil, fmt.Errorf("%w: empty collection name", ErrInvalid)
	}
	if f.Color == "" {
		f.Color = story.DefaultFolderColor
	}
	if !hexColor.MatchString(f.Color) {
		return nil, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalid, f.Color)
	}
	if f.Icon == "" {
		f.Icon = story.DefaultFolderIcon
	}

	uid, err := s.userID(ctx, owner)
	if err != nil {
		return nil, err
	}

	created := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (user_id, name, description, color, icon, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, f.Name, f.Description, f.Color, f.Icon, boolInt(f.IsDefault), formatTime(created))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("collection %q: %w", f.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert collection: %w", err)
	}

	if f.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	f.Owner = owner
	f.CreatedAt = created.UTC()
	return &f, nil
}

// Collection returns one of owner's collections.
func (s *Store) Collection(ctx context.Context, owner string, id int64) (*story.Folder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+`
		 FROM collections c JOIN users u ON u.id = c.user_id
		 WHERE c.id = ? AND u.username = ?`, id, owner)

	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	return f, err
}

// Collections lists owner's collections by name.
func (s *Store) Collections(ctx context.Context, owner string) ([]*story.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+folderColumns+`
		 FROM collections c JOIN users u ON u.id = c.user_id
		 WHERE u.username = ?
		 ORDER BY c.name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*story.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(sc scanner) (*story.Folder, error) {
	var (
		f         story.Folder
		isDefault int
		created   string
	)
	if err := sc.Scan(&f.ID, &f.Owner, &f.Name, &f.Description, &f.Color, &f.Icon, &isDefault, &created); err != nil {
		return nil, err
	}
	f.IsDefault = isDefault != 0

	var err error
	if f.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &f, nil
}
