package utils

import (
	"regexp"
	"strings"
)

// CountWords đếm số token tách bởi khoảng trắng.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename thay mọi ký tự ngoài [a-zA-Z0-9.-] bằng "_".
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
