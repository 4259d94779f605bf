package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxCanonicalKeyLen bounds the normalized canonical place key.
const maxCanonicalKeyLen = 80

// asciiFolder strips combining marks after NFD decomposition, so "Chichibū"
// folds to "Chichibu" before slugification.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldASCII(s string) string {
	out, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify lowercases, folds diacritics, and collapses any run of
// non-alphanumeric characters into a single hyphen. Non-Latin scripts fold
// to nothing; an empty result means the input cannot form a display slug.
func Slugify(s string) string {
	s = strings.ToLower(foldASCII(s))

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeCanonicalKey produces the normalized ASCII lowercase identity for
// a place, capped at 80 characters. Same alphabet as Slugify.
func NormalizeCanonicalKey(s string) string {
	key := Slugify(strings.TrimSpace(s))
	if len(key) > maxCanonicalKeyLen {
		key = strings.TrimRight(key[:maxCanonicalKeyLen], "-")
	}
	return key
}

// titleSeparators split a post title into its primary part and trailing
// branding ("Shimokitazawa Guide | SeichiMap" → "Shimokitazawa Guide").
var titleSeparators = []string{"|", "-", "—", "｜"}

// CleanTitle returns the text before the first title separator, trimmed.
func CleanTitle(title string) string {
	cut := len(title)
	for _, sep := range titleSeparators {
		if idx := strings.Index(title, sep); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(title[:cut])
}

// clamp01 clamps a confidence value to the [0, 1] domain.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
