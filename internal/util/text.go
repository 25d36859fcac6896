package util

import "strings"

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, both of which
// Postgres rejects in text columns. Spreadsheet exports carry them more
// often than one would hope.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// CompactName removes all whitespace, e.g. for script anchors keyed by
// speaker ("Duke of Vienna" -> "DukeofVienna").
func CompactName(value string) string {
	return strings.Join(strings.Fields(value), "")
}
