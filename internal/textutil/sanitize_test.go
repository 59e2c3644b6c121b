package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Episode 01", "Episode 01"},
		{"Re:Zero/Part 2", "Re-Zero-Part 2"},
		{`a\b*c`, "a-b-c"},
		{`what? "quoted" <x>|y`, "what quoted xy"},
		{"  padded  ", "padded"},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
