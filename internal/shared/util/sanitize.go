package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 128

// SanitizeFileName removes path separators and rejects traversal patterns.
// Long names are cut so they stay readable in logs and reports.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if r := []rune(s); len(r) > maxFileNameLen {
		s = string(r[:maxFileNameLen])
	}
	return s, nil
}
