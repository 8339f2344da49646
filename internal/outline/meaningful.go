package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minLabelRunes is the shortest trimmed text that can be a title or heading.
const minLabelRunes = 4

// noiseRunes are decorative characters ignored when deciding whether text
// carries any content. Whitespace is handled separately.
const noiseRunes = "-–—_*~`'\"′“”‘’·•›‹<>"

// IsMeaningful reports whether text is long enough to be a label and is not
// made up solely of whitespace and decorative punctuation.
func IsMeaningful(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minLabelRunes {
		return false
	}
	return strings.IndexFunc(text, func(r rune) bool {
		return !isNoise(r)
	}) >= 0
}

func isNoise(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(noiseRunes, r)
}
