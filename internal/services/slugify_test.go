package services

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Senior Engineer 1", "senior-engineer-1"},
		{"  Lead   Designer  ", "lead-designer"},
		{"C++ / Go Developer!", "c--go-developer"},
		{"already-a_slug", "already-a_slug"},
		{"Ünïcode Rôle", "ncode-rle"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.expected {
				t.Errorf("Slugify(%q): expected %q, got %q", tt.in, tt.expected, got)
			}
		})
	}
}
