// Package locale implements locale code normalization and the two resolution
// cascades of the translation store: the write-side source/target resolution
// for a record class and the read-side display-locale resolution for a
// request.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize canonicalizes a locale code so that variants like "en_US",
// "EN-us" and "en-US" compare and hash identically: separators become "-"
// and the whole code is lowercased. Empty input stays empty.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	code = strings.ReplaceAll(code, "_", "-")
	return strings.ToLower(code)
}

// NormalizeAll normalizes every code, dropping empties and duplicates while
// preserving first-seen order.
func NormalizeAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		n := Normalize(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// ParseTags parses normalized codes into language tags, skipping codes the
// matcher cannot represent.
func ParseTags(codes []string) []language.Tag {
	tags := make([]language.Tag, 0, len(codes))
	for _, c := range codes {
		tag, err := language.Parse(Normalize(c))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
