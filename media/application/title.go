package application

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

var separatorReplacer = strings.NewReplacer("_", " ", "-", " ")

// GenerateTitleFromFilename derives a display title from the base name of filePath.
// Examples: "my-beach-photo.jpg" -> "My Beach Photo", "SummerVacation2024.jpg" -> "Summer Vacation 2024".
// An empty result means no usable title could be derived.
func GenerateTitleFromFilename(filePath string) string {
	name := baseName(filePath)
	if name == "" {
		return ""
	}

	text := separatorReplacer.Replace(name)
	text = splitWords(text)
	return titleCase(strings.Join(strings.Fields(text), " "))
}

// baseName strips directories and the final extension. Dot-files have no base name.
func baseName(filePath string) string {
	if filePath == "" {
		return ""
	}
	base := path.Base(strings.ReplaceAll(filePath, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// splitWords inserts a space before every non-leading uppercase letter and between a letter
// and a following digit, unless a space is already there.
func splitWords(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	prev, first := rune(0), true
	for _, r := range s {
		if !first && prev != ' ' && r != ' ' {
			if unicode.IsUpper(r) || (unicode.IsDigit(r) && unicode.IsLetter(prev)) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev, first = r, false
	}
	return b.String()
}

// titleCase upper-cases the first rune of each space-separated word and lower-cases the rest.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// NormalizeDisplayText replaces every hyphen and underscore with a space.
func NormalizeDisplayText(text string) string {
	return separatorReplacer.Replace(text)
}
