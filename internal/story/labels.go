// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package story

import (
	"fmt"
	"strings"
)

// Genre is the story genre code.
type Genre string

const (
	GenreFantasy   Genre = "fantasy"
	GenreSciFi     Genre = "sci_fi"
	GenreRomance   Genre = "romance"
	GenreHorror    Genre = "horror"
	GenreMystery   Genre = "mystery"
	GenreAdventure Genre = "adventure"
	GenreDrama     Genre = "drama"
	GenreComedy    Genre = "comedy"
)

// Length is the requested story length code.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Tone is the story tone code.
type Tone string

const (
	ToneHappy      Tone = "happy"
	ToneDark       Tone = "dark"
	ToneHumorous   Tone = "humorous"
	ToneDramatic   Tone = "dramatic"
	ToneMysterious Tone = "mysterious"
	ToneRomantic   Tone = "romantic"
)

var genreLabels = map[Genre]string{
	GenreFantasy:   "Fantasy",
	GenreSciFi:     "Science Fiction",
	GenreRomance:   "Romance",
	GenreHorror:    "Horror",
	GenreMystery:   "Mystery",
	GenreAdventure: "Adventure",
	GenreDrama:     "Drama",
	GenreComedy:    "Comedy",
}

var lengthLabels = map[Length]string{
	LengthShort:  "Short (100-300 words)",
	LengthMedium: "Medium (300-600 words)",
	LengthLong:   "Long (600-1000 words)",
}

var toneLabels = map[Tone]string{
	ToneHappy:      "Happy",
	ToneDark:       "Dark",
	ToneHumorous:   "Humorous",
	ToneDramatic:   "Dramatic",
	ToneMysterious: "Mysterious",
	ToneRomantic:   "Romantic",
}

// Label returns the display label. Unknown codes are returned unchanged.
func (g Genre) Label() string {
	if l, ok := genreLabels[g]; ok {
		return l
	}
	return string(g)
}

// Label returns the display label. Unknown codes are returned unchanged.
func (l Length) Label() string {
	if label, ok := lengthLabels[l]; ok {
		return label
	}
	return string(l)
}

// Label returns the display label. Unknown codes are returned unchanged.
func (t Tone) Label() string {
	if l, ok := toneLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseGenre validates a genre code. Matching is case-insensitive.
func ParseGenre(s string) (Genre, error) {
	g := Genre(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := genreLabels[g]; !ok {
		return "", fmt.Errorf("unknown genre %q", s)
	}
	return g, nil
}

// ParseLength validates a length code. Matching is case-insensitive.
func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengthLabels[l]; !ok {
		return "", fmt.Errorf("unknown length %q", s)
	}
	return l, nil
}

// ParseTone validates a tone code. Matching is case-insensitive.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := toneLabels[t]; !ok {
		return "", fmt.Errorf("unknown tone %q", s)
	}
	return t, nil
}
