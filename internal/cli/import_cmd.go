// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/story"
)

// =============================================================================
// SEED FILE FORMAT
// =============================================================================

// SeedFile is the YAML document accepted by the import command.
//
//	users:
//	  - username: ana
//	    collections:
//	      - name: Lighthouses
//	        color: "#0d6efd"
//	    stories:
//	      - title: The Lantern Keeper
//	        collection: Lighthouses
//	        genre: mystery
//	        rating: 4
//	        content: |
//	          The lamp went dark.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is one user with their collections and stories.
type SeedUser struct {
	Username    string           `yaml:"username"`
	Collections []SeedCollection `yaml:"collections"`
	Stories     []SeedStory      `yaml:"stories"`
}

// SeedCollection is a named collection.
type SeedCollection struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
}

// SeedStory is one story. Collection refers to a collection by name.
type SeedStory struct {
	Title      string    `yaml:"title"`
	Collection string    `yaml:"collection"`
	Keywords   string    `yaml:"keywords"`
	Genre      string    `yaml:"genre"`
	Length     string    `yaml:"length"`
	Tone       string    `yaml:"tone"`
	Content    string    `yaml:"content"`
	Rating     *int      `yaml:"rating"`
	Favorite   bool      `yaml:"favorite"`
	Public     bool      `yaml:"public"`
	Model      string    `yaml:"model"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// ImportResult counts what an import created.
type ImportResult struct {
	Users       int `json:"users"`
	Collections int `json:"collections"`
	Stories     int `json:"stories"`
}

// DecodeSeed parses a seed document. Unknown keys are rejected.
func DecodeSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed SeedFile
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// =============================================================================
// IMPORT COMMAND
// =============================================================================

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Seed users, collections and stories from YAML",
		Long: `Import users, collections and stories from a YAML seed file.

Existing users and collections are reused, so a seed file can be applied
more than once; stories are always added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return usageError(err)
			}
			defer f.Close()

			seed, err := DecodeSeed(f)
			if err != nil {
				return usageError(err)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := ImportSeed(cmd.Context(), st, seed)
			if err != nil {
				return err
			}

			if opts.JSON {
				return NewJSONResponse("import", res).Write(cmd.OutOrStdout())
			}
			s := newStyles(cmd.OutOrStdout(), opts.NoColor)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d users, %d collections, %d stories\n",
				s.Success.Render("Imported"), res.Users, res.Collections, res.Stories)
			return nil
		},
	}
}

// ImportSeed writes seed into st. It stops at the first invalid record and
// reports which one failed.
func ImportSeed(ctx context.Context, st *storage.Store, seed *SeedFile) (*ImportResult, error) {
	res := &ImportResult{}

	for _, u := range seed.Users {
		if _, err := st.CreateUser(ctx, u.Username); err != nil {
			if !errors.Is(err, storage.ErrDuplicate) {
				return res, fmt.Errorf("user %q: %w", u.Username, err)
			}
		} else {
			res.Users++
		}

		folders, err := st.Collections(ctx, u.Username)
		if err != nil {
			return res, err
		}
		byName := make(map[string]int64, len(folders))
		for _, f := range folders {
			byName[f.Name] = f.ID
		}

		for _, c := range u.Collections {
			if _, ok := byName[c.Name]; ok {
				continue
			}
			f, err := st.CreateCollection(ctx, u.Username, story.Folder{
				Name:        c.Name,
				Description: c.Description,
				Color:       c.Color,
				Icon:        c.Icon,
			})
			if err != nil {
				return res, fmt.Errorf("user %q collection %q: %w", u.Username, c.Name, err)
			}
			byName[f.Name] = f.ID
			res.Collections++
		}

		for i, s := range u.Stories {
			in := storage.NewStory{
				Owner:      u.Username,
				Title:      s.Title,
				Keywords:   s.Keywords,
				Genre:      story.Genre(s.Genre),
				Length:     story.Length(s.Length),
				Tone:       story.Tone(s.Tone),
				Content:    s.Content,
				Rating:     s.Rating,
				IsFavorite: s.Favorite,
				IsPublic:   s.Public,
				Model:      s.Model,
				CreatedAt:  s.CreatedAt,
			}
			if s.Collection != "" {
				id, ok := byName[s.Collection]
				if !ok {
					return res, fmt.Errorf("user %q story %d: unknown collection %q: %w",
						u.Username, i+1, s.Collection, storage.ErrInvalid)
				}
				in.CollectionID = &id
			}
			if _, err := st.CreateStory(ctx, in); err != nil {
				return res, fmt.Errorf("user %q story %d: %w", u.Username, i+1, err)
			}
			res.Stories++
		}
	}
	return res, nil
}
