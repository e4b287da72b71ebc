package application

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	octetRe       = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)

// SanitizeTextField cleans a value before it is stored as alt text. Text that is not valid
// UTF-8 sanitizes to "". Otherwise markup and percent-encoded octets are removed, a lone "<"
// is encoded as "&lt;" and whitespace runs (tabs and newlines included) collapse to one space.
func SanitizeTextField(text string) string {
	if !utf8.ValidString(text) {
		return ""
	}
	text = scriptStyleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = octetRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
