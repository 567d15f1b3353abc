// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"Many   spaces\tand\ttabs", "many-spaces-and-tabs"},
		{"snake_case_title", "snake-case-title"},
		{"Ünïcödé Tëxt", "unicode-text"},
		{"Chapter 2: The Return", "chapter-2-the-return"},
		{"龍の物語", ""},
		{"dragon 龍 tale", "dragon-tale"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
