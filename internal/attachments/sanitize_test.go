package attachments

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"My Homework (1).PNG", "My_Homework_1.png"},
		{"report.final.txt", "report.final.txt"},
		{"宿題.pdf", "file.pdf"},
		{"数学テスト", "file.jpg"},
		{"...", "file.jpg"},
		{"", "file.jpg"},
		{"  spaced out  .gif", "spaced_out.gif"},
		{"weird!@#$%^&*chars.webp", "weirdchars.webp"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileName_CapsBaseLength(t *testing.T) {
	long := strings.Repeat("a", 120) + ".png"
	got := SanitizeFileName(long)
	base := strings.TrimSuffix(got, ".png")
	if len(base) > maxBaseLen {
		t.Fatalf("expected base capped at %d, got %d (%q)", maxBaseLen, len(base), got)
	}
}

func TestSanitizeFileName_MangledExtensionDefaults(t *testing.T) {
	if got := SanitizeFileName("picture.日本語"); got != "picture.jpg" {
		t.Fatalf("expected jpg default, got %q", got)
	}
	if got := SanitizeFileName("archive.verylongextension"); got != "archive.jpg" {
		t.Fatalf("expected oversized extension replaced, got %q", got)
	}
}

func TestContentTypeForName(t *testing.T) {
	cases := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
		"a.webp": "image/webp",
		"a.pdf":  "application/pdf",
		"a.bin":  "application/octet-stream",
	}
	for name, want := range cases {
		if got := contentTypeForName(name); got != want {
			t.Fatalf("contentTypeForName(%q) = %q, want %q", name, got, want)
		}
	}
}
