// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug lower-cases s, replaces each run of non-alphanumeric characters with a
// single hyphen and trims hyphens from both ends. Accented letters are reduced
// to their ASCII base; other non-ASCII characters are dropped.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	gap := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case r > unicode.MaxASCII:
			// Combining marks and non-Latin letters.
			continue
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
		case 'A' <= r && r <= 'Z':
			r = unicode.ToLower(r)
		default:
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('-')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}
