package registry

import (
	"regexp"
	"strings"
)

var (
	parensPattern      = regexp.MustCompile(`[()]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	underscoresPattern = regexp.MustCompile(`_+`)
)

// sourceExtensions are the document suffixes stripped from index names,
// longest-match first.
var sourceExtensions = []string{".html", ".htm", ".pdf", ".txt"}

// TrimSourceExtension strips one trailing source extension from a filename,
// leaving the rest of the name untouched. Used for display names, where
// full normalization would be too aggressive.
func TrimSourceExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// NormalizeName converts a document filename or index name into the
// canonical identifier used to address its index: lower-cased, source
// extension stripped, parentheses removed, whitespace runs collapsed to
// single underscores. The same function is applied at ingestion and at
// query time, and NormalizeName(NormalizeName(x)) == NormalizeName(x) for
// any input.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = parensPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, "_")
	name = underscoresPattern.ReplaceAllString(name, "_")

	// Trimming underscores can expose an extension suffix and vice versa,
	// so iterate to a fixpoint to keep normalization idempotent.
	for {
		next := strings.Trim(name, "_")
		for _, ext := range sourceExtensions {
			next = strings.TrimSuffix(next, ext)
		}
		if next == name {
			return name
		}
		name = next
	}
}
