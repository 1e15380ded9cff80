package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Section 1: Basics  ", "Section 1- Basics"},
		{"a/b\\c", "a-b-c"},
		{"what?<>|\"", "what"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/home/user/Videos", "home_user_videos"},
		{"My-Dir_2", "my-dir_2"},
		{"   ", "unknown"},
		{"///", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTidyExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Lesson 3 .mp4", "Lesson 3.mp4"},
		{"Lesson 3.mp4", "Lesson 3.mp4"},
		{"notes", "notes"},
		{".hidden", ".hidden"},
		{" spaced  .MKV ", "spaced.MKV"},
	}
	for _, tt := range tests {
		if got := TidyExtension(tt.in); got != tt.want {
			t.Errorf("TidyExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
