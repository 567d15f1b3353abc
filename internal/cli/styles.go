// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// STYLES
// =============================================================================

type styles struct {
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Star    lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := renderer(w, noColor)
	return styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Dim:     r.NewStyle().Foreground(lipgloss.Color("242")),
		Success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		Star:    r.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

func errorStyle(w io.Writer, noColor bool) lipgloss.Style {
	return renderer(w, noColor).NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
}
