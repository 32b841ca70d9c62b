// Package hash derives the content keys that deduplicate source strings.
// Keys are deterministic across runs and platforms: xxHash64 is unseeded and
// the input layout is fixed, so equal (locale, context, text) triples always
// map to the same key.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/quillworks/traduit/internal/locale"
)

// sep separates the hashed fields so that no shifting of content between
// locale, context and text can produce the same input stream.
const sep = "\x00"

// Key returns the content key for one source string triple. The locale is
// normalized before hashing so "en_US" and "en-US" key identically. The
// threat model is deduplication, not security; a fast 64-bit content hash
// is sufficient.
func Key(text, sourceLocale, context string) string {
	d := xxhash.New()
	_, _ = d.WriteString(locale.Normalize(sourceLocale))
	_, _ = d.WriteString(sep)
	_, _ = d.WriteString(context)
	_, _ = d.WriteString(sep)
	_, _ = d.WriteString(text)
	return fmt.Sprintf("%016x", d.Sum64())
}
