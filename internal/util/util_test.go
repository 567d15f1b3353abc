// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

// =============================================================================
// DISPLAY WIDTH TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		input    string
		maxWidth int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"龍の物語です", 6, "龍..."},
		{"龍の物語", 8, "龍の物語"},
	}

	for _, tc := range testCases {
		result := TruncateWidth(tc.input, tc.maxWidth)
		if result != tc.expected {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.input, tc.maxWidth, result, tc.expected)
		}
		if StringWidth(result) > tc.maxWidth {
			t.Errorf("TruncateWidth(%q, %d) is %d columns wide", tc.input, tc.maxWidth, StringWidth(result))
		}
	}
}

func TestPadRight(t *testing.T) {
	testCases := []struct {
		input    string
		width    int
		expected string
	}{
		{"abc", 6, "abc   "},
		{"abcdefgh", 6, "abc..."},
		{"龍", 4, "龍  "},
	}

	for _, tc := range testCases {
		result := PadRight(tc.input, tc.width)
		if result != tc.expected {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tc.input, tc.width, result, tc.expected)
		}
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
	if w := StringWidth("龍の"); w != 4 {
		t.Errorf("StringWidth(龍の) = %d, want 4", w)
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("  The lamp\n\nwent   dark\t"); got != "The lamp went dark" {
		t.Errorf("SingleLine = %q", got)
	}
}
