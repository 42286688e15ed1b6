package utils

import "strings"

// NormalizeName lowercases and trims a lookup-entity name (city, genre,
// language).  Applied once at the API boundary so the same value always
// hits the same unique index, instead of hiding the mutation in a save hook.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeEmail canonicalizes an email address the same way before both
// storage and lookup.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
