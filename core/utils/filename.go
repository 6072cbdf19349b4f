package utils

import (
	"strings"
	"unicode"
)

// SanitizeFileName turns an arbitrary display name into a single path component.
// Path separators and characters rejected by common filesystems become '_';
// leading and trailing spaces and dots are trimmed. An empty result becomes "_".
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), " .")
	if out == "" {
		return "_"
	}
	return out
}
