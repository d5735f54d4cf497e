package source

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func StripHTML(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// FormatCompanyName turns a board slug into a display name:
// "nubank-brazil" -> "Nubank brazil". Only the first letter is capitalized.
func FormatCompanyName(slug string) string {
	spaced := strings.ReplaceAll(slug, "-", " ")
	if len(spaced) < 2 {
		return strings.ToUpper(spaced)
	}
	return strings.ToUpper(spaced[:1]) + spaced[1:]
}
