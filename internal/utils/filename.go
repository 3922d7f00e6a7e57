package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxFilenameLength leaves room for suffixes such as " (2)" and ".md".
const maxFilenameLength = 200

var (
	// Reserved on Windows, or path separators anywhere
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Any run of whitespace, including newlines and tabs
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// Hashtags and brackets break wiki-style Markdown links to the deck
	markdownReplacer = strings.NewReplacer("#", "", "[", "(", "]", ")")
)

// SanitizeFilename turns a category name into a directory or file name that
// is safe on common filesystems and in Markdown links (no slashes, colons,
// quotes, hashtags or square brackets, no trailing dots).
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = markdownReplacer.Replace(name)
	name = strings.TrimSpace(whitespaceRuns.ReplaceAllString(name, " "))

	if utf8.RuneCountInString(name) > maxFilenameLength {
		name = strings.TrimSpace(string([]rune(name)[:maxFilenameLength]))
	}

	// Windows refuses names ending in a dot
	name = strings.TrimRight(name, ". ")

	if name == "" {
		return "Untitled"
	}
	return name
}

// UniqueFilename returns name, or name with a numeric suffix if name is
// already in taken. The chosen name is added to taken.
// Example: "Go" -> "Go (2)" when "Go" was used by a sibling.
func UniqueFilename(name string, taken map[string]bool) string {
	candidate := name
	for i := 2; taken[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s (%d)", name, i)
	}
	taken[strings.ToLower(candidate)] = true
	return candidate
}
