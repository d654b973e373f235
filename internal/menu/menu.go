// Package menu implements the Menu Index (MI): an immutable in-process
// index of orderable items, loaded once from a JSON catalogue file at
// startup.
package menu

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var hawaiVariant = regexp.MustCompile(`hawai(i|\x{00EF})`)

// Item is spec.md §3's MenuItem entity.
type Item struct {
	Code           string
	DisplayName    string
	Price          float64
	NormalizedName string
	Tokens         map[string]bool
}

// Index is the immutable, process-lifetime menu. Zero value is a valid,
// empty index (spec.md §7's configuration-error fallback).
type Index struct {
	items []Item
}

// rawItem covers the documented flat-list item shape with both English and
// Dutch field aliases, per spec.md §9's "accept the documented aliases".
type rawItem struct {
	Name  string  `json:"name"`
	Naam  string  `json:"naam"`
	Price float64 `json:"price"`
	Prijs float64 `json:"prijs"`
	Code  string  `json:"code"`
}

type rawCategory struct {
	Items []rawItem `json:"items"`
}

type rawCatalogue struct {
	Items      []rawItem     `json:"items"`
	Categories []rawCategory `json:"categories"`
}

// Load reads and parses the catalogue file in any of the documented shapes:
// a flat list, {items:[...]}, or {categories:[{items:[...]}...]}.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Index{}, err
	}
	return Parse(data)
}

// Parse builds an Index from raw catalogue bytes.
func Parse(data []byte) (*Index, error) {
	idx := &Index{}

	// Try the flat-list shape first: a bare JSON array.
	var flat []rawItem
	if err := json.Unmarshal(data, &flat); err == nil {
		for _, r := range flat {
			idx.add(r)
		}
		return idx, nil
	}

	var cat rawCatalogue
	if err := json.Unmarshal(data, &cat); err != nil {
		return &Index{}, err
	}
	for _, r := range cat.Items {
		idx.add(r)
	}
	for _, c := range cat.Categories {
		for _, r := range c.Items {
			idx.add(r)
		}
	}
	return idx, nil
}

func (idx *Index) add(r rawItem) {
	name := r.Name
	if name == "" {
		name = r.Naam
	}
	price := r.Price
	if price == 0 {
		price = r.Prijs
	}
	if name == "" || price <= 0 {
		return
	}
	code := r.Code
	if code == "" {
		code = normalize(name)
	}
	item := Item{
		Code:           code,
		DisplayName:    name,
		Price:          price,
		NormalizedName: normalize(name),
		Tokens:         tokenSet(name),
	}
	idx.items = append(idx.items, item)
}

// Items returns the loaded menu items in catalogue order.
func (idx *Index) Items() []Item {
	return idx.items
}

// ByCode finds an item by its exact catalogue code, used when finalising an
// order from a client-submitted code rather than a spoken utterance.
func (idx *Index) ByCode(code string) (Item, bool) {
	for _, item := range idx.items {
		if item.Code == code {
			return item, true
		}
	}
	return Item{}, false
}

// normalize lower-cases and strips diacritics/apostrophes, matching the
// normalisation UP applies to caller utterances so substring matching works.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = stripDiacritics(s)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimSpace(s)
	return hawaiVariant.ReplaceAllString(s, "hawai")
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

// categoryStopWords are generic course names that must not by themselves
// justify a token-overlap match — spec.md §4.3's "pizza without variant"
// guard depends on "pizza" never counting as a specific match on its own.
var categoryStopWords = map[string]bool{"pizza": true, "pizzas": true}

// tokenSet returns the set of words ≥3 characters, per spec.md §3's
// MenuItem.token_set definition, excluding generic category stop-words.
func tokenSet(name string) map[string]bool {
	normalized := normalize(name)
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) >= 3 && !categoryStopWords[f] {
			set[f] = true
		}
	}
	return set
}
