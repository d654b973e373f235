package nlu

import "regexp"

// Answer is the result of YesNo.
type Answer int

const (
	Unknown Answer = iota
	Yes
	No
)

var yesPhrases = map[string]bool{
	"ja": true, "jazeker": true, "klopt": true, "is goed": true,
	"oke": true, "oke ": true, "oké": true, "is prima": true, "correct": true,
}

var noPhrases = map[string]bool{
	"nee": true, "niets": true, "dat was het": true, "is alles": true,
	"klaar": true, "klopt niet": true, "anders": true,
}

// YesNo classifies a normalised utterance per spec.md §4.3.
func YesNo(text string) Answer {
	n := Normalize(text)
	if yesPhrases[n] {
		return Yes
	}
	if noPhrases[n] {
		return No
	}
	// No-phrases are checked before yes-phrases: "klopt niet" contains
	// "klopt", so scanning yes-phrases first would misread a rejection
	// ("nee dat klopt niet") as a confirmation.
	for phrase := range noPhrases {
		if containsPhrase(n, phrase) {
			return No
		}
	}
	for phrase := range yesPhrases {
		if containsPhrase(n, phrase) {
			return Yes
		}
	}
	return Unknown
}

func containsPhrase(haystack, phrase string) bool {
	return len(phrase) > 0 && indexOf(haystack, phrase) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

var digitsOnly = regexp.MustCompile(`\d+`)

// PhoneDigits extracts a digit string from text, per spec.md §4.3: if it
// starts with "31" and is at least 11 digits long, the leading "31" is
// replaced with a leading "0".
func PhoneDigits(text string) string {
	digits := ""
	for _, m := range digitsOnly.FindAllString(text, -1) {
		digits += m
	}
	if len(digits) >= 11 && digits[:2] == "31" {
		digits = "0" + digits[2:]
	}
	return digits
}

var postcodeRe = regexp.MustCompile(`\b\d{4}\s?[A-Za-z]{2}\b`)

// Postcode extracts a 4-digit+2-letter Dutch postcode, upper-cased with
// spaces removed.
func Postcode(text string) (string, bool) {
	m := postcodeRe.FindString(text)
	if m == "" {
		return "", false
	}
	out := make([]byte, 0, 6)
	for i := 0; i < len(m); i++ {
		c := m[i]
		if c == ' ' {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out), true
}

var houseNumberRe = regexp.MustCompile(`\b\d{1,4}[A-Za-z]?\b`)

// HouseNumber extracts the house-number-shaped token. When the text also
// contains a postcode (the caller dictates "postcode, huisnummer" in that
// order, per spec.md §8 scenario 6), the search starts after the postcode
// match, so "1234 AB 5" yields "5". When no postcode is present, or nothing
// house-number-shaped follows it, the first match in the whole text is
// returned, which for "1234 AB" alone is the postcode's "1234".
func HouseNumber(text string) (string, bool) {
	searchFrom := 0
	if loc := postcodeRe.FindStringIndex(text); loc != nil {
		searchFrom = loc[1]
	}
	m := houseNumberRe.FindString(text[searchFrom:])
	if m == "" {
		m = houseNumberRe.FindString(text)
	}
	if m == "" {
		return "", false
	}
	return m, true
}

// numberWords maps normalised (diacritic-stripped) number words to 1..10;
// "één" normalises to "een" before lookup.
var numberWords = map[string]int{
	"een": 1, "twee": 2, "drie": 3, "vier": 4, "vijf": 5,
	"zes": 6, "zeven": 7, "acht": 8, "negen": 9, "tien": 10,
}

// NumberWord resolves a normalised Dutch number word to 1..10.
func NumberWord(word string) (int, bool) {
	n, ok := numberWords[word]
	return n, ok
}
