package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ContainsIgnoreCase reports whether search occurs in text, case-insensitively.
// Empty text or search always returns false.
func ContainsIgnoreCase(text, search string) bool {
	if text == "" || search == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(search))
}

// CollapseWhitespace trims s and collapses runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
