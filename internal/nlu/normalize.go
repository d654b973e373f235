// Package nlu implements the Utterance Parser (UP): stateless text→intent
// extraction over caller speech transcripts. All operations work on a
// normalised form of the input text.
package nlu

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	curlyApostrophes = strings.NewReplacer(
		"‘", "'", "’", "'", "‛", "'", "`", "'",
	)
	nonAlnumSpace = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	multiSpace    = regexp.MustCompile(`\s+`)
	hawaiVariant  = regexp.MustCompile(`hawai(i|\x{00EF})`)
)

// Normalize implements spec.md §4.3's normalisation pipeline: lower-case,
// NFD with combining marks stripped, curly apostrophes folded to ', "'s"
// plurals reduced, punctuation replaced with spaces, whitespace collapsed,
// and hawaii/hawaï folded to hawai.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = curlyApostrophes.Replace(s)
	s = stripDiacritics(s)
	s = strings.ReplaceAll(s, "'s", "s")
	s = nonAlnumSpace.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = hawaiVariant.ReplaceAllString(s, "hawai")
	return s
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// Tokens splits normalised text into words.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
