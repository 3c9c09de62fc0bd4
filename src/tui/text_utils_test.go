package tui

import (
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
	}{
		{"fits", "Fix chunk loading", 40},
		{"exact width", "Fix chunk loading", 17},
		{"several lines", "Merge pull request #4711 from MovingBlocks/fix/world-gen-seed", 20},
		{"long word", "https://github.com/MovingBlocks/Terasology/pull/4711/commits/0a1b2c3d4e5f", 30},
		{"wide runes", "Übersetzung 世界 aktualisiert für die Spielwelt 🎉 und mehr", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			for i, line := range strings.Split(got, "\n") {
				if w := VisualWidth(line); w > tt.width {
					t.Errorf("line %d is %d cells wide, limit %d: %q", i, w, tt.width, line)
				}
			}
			if strings.Join(strings.Fields(got), "") != strings.Join(strings.Fields(tt.text), "") {
				t.Errorf("Wrap() changed the content: %q", got)
			}
		})
	}
}

func TestWrap_Degenerate(t *testing.T) {
	if got := Wrap("", 20); got != "" {
		t.Errorf("Wrap(empty) = %q", got)
	}
	if got := Wrap("keep as is", 0); got != "keep as is" {
		t.Errorf("Wrap(width 0) = %q", got)
	}
	if got := Wrap("a b", 1); got != "a\nb" {
		t.Errorf("Wrap(width 1) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		maxLen   int
		ellipsis bool
		want     string
	}{
		{"No changes", 20, true, "No changes"},
		{"  padded  ", 20, true, "padded"},
		{"Update the module manager", 10, true, "Update ..."},
		{"Update the module manager", 10, false, "Update the"},
		{"abc", 0, true, ""},
		{"abcdef", 3, true, "abc"},
	}

	for _, tt := range tests {
		got := Truncate(tt.in, tt.maxLen, tt.ellipsis)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.in, tt.maxLen, tt.ellipsis, got, tt.want)
		}
		if VisualWidth(got) > tt.maxLen && tt.maxLen > 0 {
			t.Errorf("Truncate(%q) exceeds %d cells", tt.in, tt.maxLen)
		}
	}
}

func TestTruncateAndPad(t *testing.T) {
	for _, in := range []string{"#12", "latest (#2145)", "世界世界世界世界"} {
		got := TruncateAndPad(in, 10, true)
		if w := VisualWidth(got); w != 10 {
			t.Errorf("TruncateAndPad(%q) is %d cells wide", in, w)
		}
	}
}
