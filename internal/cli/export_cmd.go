// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/util"
)

// ExportOptions holds flags shared by the export subcommands.
type ExportOptions struct {
	*RootOptions
	User   string
	Format string
	Out    string
	Force  bool
}

// ExportResult is reported after an export is written.
type ExportResult struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Stories int    `json:"stories"`
	Bytes   int    `json:"bytes"`
}

func newExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a story or a collection",
		Long: `Export one story as a document, or many stories as a zip archive.

--out names the destination file; "-" writes to stdout. Without --out the
artifact's own filename is used in the current directory.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", "", "owner of the stories (required)")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "txt, html or pdf (default from config)")
	cmd.PersistentFlags().StringVarP(&opts.Out, "out", "o", "", `output file, or "-" for stdout`)
	cmd.PersistentFlags().BoolVar(&opts.Force, "force", false, "write binary output to a terminal")
	_ = cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(newExportStoryCommand(opts))
	cmd.AddCommand(newExportCollectionCommand(opts))
	return cmd
}

func newExportStoryCommand(opts *ExportOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "story <id>",
		Short: "Export a single story",
		Example: `  storyexport export story 42 --user ana --format pdf
  storyexport export story 42 -u ana -o - | less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return usageError(fmt.Errorf("invalid story id %q", args[0]))
			}
			return runExport(cmd, opts, func(ex *exporter) (*export.Artifact, error) {
				st, err := ex.store.GetStory(cmd.Context(), opts.User, id)
				if err != nil {
					return nil, err
				}
				return ex.svc.ExportStory(cmd.Context(), st, ex.format)
			})
		},
	}
}

func newExportCollectionCommand(opts *ExportOptions) *cobra.Command {
	var (
		collectionID int64
		ids          []int64
		favorites    bool
	)

	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Export stories as a zip archive",
		Long: `Export the user's stories as a zip archive with one file per story and
collection_info.json. By default every story is included; --collection,
--ids and --favorites narrow the set.`,
		Example: `  storyexport export collection --user ana --format html
  storyexport export collection -u ana --collection 3 -o dragons.zip
  storyexport export collection -u ana --ids 4,9,12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := storage.Filter{IDs: ids, FavoritesOnly: favorites}
			if cmd.Flags().Changed("collection") {
				filter.CollectionID = &collectionID
			}
			return runExport(cmd, opts, func(ex *exporter) (*export.Artifact, error) {
				if filter.CollectionID != nil {
					if _, err := ex.store.Collection(cmd.Context(), opts.User, collectionID); err != nil {
						return nil, err
					}
				}
				col, err := ex.store.LoadCollection(cmd.Context(), opts.User, filter)
				if err != nil {
					return nil, err
				}
				return ex.svc.ExportCollection(cmd.Context(), col, ex.format)
			})
		},
	}

	cmd.Flags().Int64Var(&collectionID, "collection", 0, "only stories in this collection")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "only these story ids")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorite stories")
	return cmd
}

// =============================================================================
// SHARED EXPORT FLOW
// =============================================================================

type exporter struct {
	store  *storage.Store
	svc    *export.Service
	format string
}

func runExport(cmd *cobra.Command, opts *ExportOptions, produce func(*exporter) (*export.Artifact, error)) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = cfg.Export.DefaultFormat
	}
	if _, err := export.ParseFormat(format); err != nil {
		return usageError(err)
	}

	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	art, err := produce(&exporter{store: st, svc: export.New(cfg.ExportOptions()), format: format})
	if err != nil {
		if errors.Is(err, export.ErrEmptyBatch) {
			return &ExitError{Code: ExitNotFoundError, Err: errors.New("no stories found for export")}
		}
		return err
	}

	path, err := writeArtifact(cmd.OutOrStdout(), opts, art)
	if err != nil {
		return err
	}

	result := ExportResult{Path: path, Format: format, Stories: art.Stories, Bytes: len(art.Data)}
	if opts.JSON {
		if path == "-" {
			return nil
		}
		return NewJSONResponse("export", result).Write(cmd.OutOrStdout())
	}

	s := newStyles(cmd.ErrOrStderr(), opts.NoColor)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %d %s to %s %s\n",
		s.Success.Render("Exported"),
		result.Stories, plural(result.Stories, "story", "stories"),
		result.Path,
		s.Dim.Render(fmt.Sprintf("(%d bytes)", result.Bytes)))
	return nil
}

// writeArtifact writes art to the destination chosen by --out and returns
// the path written ("-" for stdout).
func writeArtifact(stdout io.Writer, opts *ExportOptions, art *export.Artifact) (string, error) {
	if opts.Out == "-" {
		if isBinary(art) && IsTerminal(stdout) && !opts.Force {
			return "", usageError(fmt.Errorf("refusing to write %s to a terminal; use --out or --force", art.ContentType))
		}
		if _, err := stdout.Write(art.Data); err != nil {
			return "", err
		}
		return "-", nil
	}

	path := opts.Out
	if path == "" {
		path = art.Filename
	}
	if err := util.WriteArtifact(path, art.Data); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return filepath.Clean(path), nil
}

func isBinary(art *export.Artifact) bool {
	return art.ContentType == "application/pdf" || art.ContentType == "application/zip"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
