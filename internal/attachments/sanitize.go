package attachments

import (
	"strings"
	"unicode"
)

const maxBaseLen = 40

// SanitizeFileName reduces a user-supplied file name to a storage-key-safe
// form: ASCII letters, digits, "._-" survive, whitespace collapses to
// underscores, everything else (including any non-ASCII script) is dropped.
// A name with nothing left becomes "file"; a missing or mangled extension
// becomes "jpg" since images dominate uploads here.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i+1:]
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._-")
	if len(cleaned) > maxBaseLen {
		cleaned = strings.Trim(cleaned[:maxBaseLen], "._-")
	}
	if cleaned == "" {
		cleaned = "file"
	}
	return cleaned + "." + sanitizeExt(ext)
}

func sanitizeExt(ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || len(out) > 8 {
		return "jpg"
	}
	return out
}

// contentTypeForName maps a sanitized file name onto the MIME type recorded
// alongside the upload.
func contentTypeForName(name string) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "heic":
		return "image/heic"
	case "pdf":
		return "application/pdf"
	case "txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
