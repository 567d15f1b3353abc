// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/story"
	"github.com/jeranaias/storyexport/internal/util"
)

// StoryRow is one story in list output.
type StoryRow struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Genre      string `json:"genre"`
	WordCount  int    `json:"word_count"`
	Rating     *int   `json:"rating"`
	IsFavorite bool   `json:"is_favorite"`
	Created    string `json:"created_at"`
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var (
		user         string
		collectionID int64
		favorites    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a user's stories",
		Example: `  storyexport list --user ana
  storyexport list -u ana --favorites --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.UserByName(cmd.Context(), user); err != nil {
				return fmt.Errorf("user %q: %w", user, err)
			}

			filter := storage.Filter{FavoritesOnly: favorites}
			if cmd.Flags().Changed("collection") {
				filter.CollectionID = &collectionID
			}
			stories, err := st.ListStories(cmd.Context(), user, filter)
			if err != nil {
				return err
			}

			rows := make([]StoryRow, 0, len(stories))
			for _, s := range stories {
				rows = append(rows, storyRow(s))
			}

			if opts.JSON {
				return NewJSONResponse("list", rows).Write(cmd.OutOrStdout())
			}
			renderTable(cmd.OutOrStdout(), rows, newStyles(cmd.OutOrStdout(), opts.NoColor))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "owner of the stories (required)")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "only stories in this collection")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorite stories")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func storyRow(s *story.Story) StoryRow {
	return StoryRow{
		ID:         s.ID,
		Title:      util.SingleLine(s.ShortTitle()),
		Genre:      s.Genre.Label(),
		WordCount:  s.WordCount(),
		Rating:     s.Rating,
		IsFavorite: s.IsFavorite,
		Created:    s.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// =============================================================================
// TABLE RENDERING
// =============================================================================

type column struct {
	title string
	width int
	right bool
}

var listColumns = []column{
	{title: "ID", width: 6, right: true},
	{title: "TITLE", width: 36},
	{title: "GENRE", width: 16},
	{title: "WORDS", width: 7, right: true},
	{title: "RATING", width: 6},
	{title: "CREATED", width: 16},
}

// renderTable writes rows as aligned columns. Widths are measured in
// terminal columns so wide runes in titles do not break alignment.
func renderTable(w io.Writer, rows []StoryRow, s styles) {
	if len(rows) == 0 {
		fmt.Fprintln(w, s.Dim.Render("No stories."))
		return
	}

	header := make([]string, len(listColumns))
	for i, c := range listColumns {
		header[i] = cell(c, c.title)
	}
	fmt.Fprintln(w, s.Header.Render(strings.Join(header, "  ")))

	for _, r := range rows {
		title := r.Title
		if r.IsFavorite {
			title = "* " + title
		}
		values := []string{
			strconv.FormatInt(r.ID, 10),
			title,
			r.Genre,
			strconv.Itoa(r.WordCount),
			ratingStars(r.Rating),
			r.Created,
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cell(listColumns[i], v)
		}
		cells[4] = s.Star.Render(cells[4])
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	fmt.Fprintln(w, s.Dim.Render(fmt.Sprintf("%d %s", len(rows), plural(len(rows), "story", "stories"))))
}

func cell(c column, v string) string {
	if c.right {
		v = util.TruncateWidth(v, c.width)
		return strings.Repeat(" ", c.width-util.StringWidth(v)) + v
	}
	return util.PadRight(v, c.width)
}

func ratingStars(r *int) string {
	if r == nil {
		return "-"
	}
	return strings.Repeat("★", *r) + strings.Repeat("☆", story.MaxRating-*r)
}
