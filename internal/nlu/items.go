package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ristoranteadam/sara/internal/menu"
)

// ParsedItem is one matched menu item with its spoken quantity.
type ParsedItem struct {
	Item     menu.Item
	Quantity int
}

var segmentSplit = regexp.MustCompile(`\s*,\s*|\s+en dan\s+|\s+en\s+|\s+plus\s+|\s+&\s+`)

var quantityPrefix = regexp.MustCompile(`^(\d+|[a-z]+)\s+(.+)$`)

// ParseItems implements spec.md §4.3's parse_items algorithm.
func ParseItems(text string, idx *menu.Index) []ParsedItem {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	segments := segmentSplit.Split(normalized, -1)
	order := make([]string, 0, len(segments))
	quantities := make(map[string]int)
	matched := make(map[string]menu.Item)

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		qty := 1
		tail := seg
		if m := quantityPrefix.FindStringSubmatch(seg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				qty = n
			} else if n, ok := NumberWord(m[1]); ok {
				qty = n
			}
			tail = m[2]
		}

		item, found := matchMenuItem(tail, idx)
		if !found {
			item, found = matchMenuItem(seg, idx)
		}
		if !found {
			continue
		}
		if qty < 1 {
			qty = 1
		}

		if _, seen := matched[item.Code]; !seen {
			order = append(order, item.Code)
			matched[item.Code] = item
		}
		quantities[item.Code] += qty
	}

	if len(order) == 0 {
		return nil
	}

	out := make([]ParsedItem, 0, len(order))
	for _, code := range order {
		q := quantities[code]
		if q < 1 {
			q = 1
		}
		out = append(out, ParsedItem{Item: matched[code], Quantity: q})
	}
	return out
}

// MentionsUnresolvedPizza reports whether the utterance names "pizza(s)"
// generically without a specific menu match — DSM asks which pizza.
func MentionsUnresolvedPizza(text string, idx *menu.Index) bool {
	normalized := Normalize(text)
	if !mentionsUnresolvedPizza(normalized) {
		return false
	}
	items := ParseItems(text, idx)
	for _, it := range items {
		if strings.Contains(it.Item.NormalizedName, "pizza") {
			return false
		}
	}
	return true
}

func mentionsUnresolvedPizza(normalized string) bool {
	return strings.Contains(normalized, "pizza")
}

// matchMenuItem finds the menu item a segment refers to, following
// _match_menu_segment's two-phase algorithm: a substring match in either
// direction (segment contains the item's name, or the item's name contains
// the segment) wins outright, first hit in catalogue order, no scoring.
// Only when no substring match exists anywhere does it fall back to token
// overlap, picking the highest with a strict tie-break (first found wins).
func matchMenuItem(segment string, idx *menu.Index) (menu.Item, bool) {
	if idx == nil {
		return menu.Item{}, false
	}

	for _, item := range idx.Items() {
		if item.NormalizedName == "" {
			continue
		}
		if strings.Contains(segment, item.NormalizedName) || strings.Contains(item.NormalizedName, segment) {
			return item, true
		}
	}

	segTokens := tokenSetOf(segment)
	var best menu.Item
	bestOverlap := 0
	found := false
	for _, item := range idx.Items() {
		if item.NormalizedName == "" {
			continue
		}
		overlap := overlapCount(segTokens, item.Tokens)
		if overlap < 1 {
			continue
		}
		if !found || overlap > bestOverlap {
			best, bestOverlap, found = item, overlap, true
		}
	}
	return best, found
}

// categoryStopWords mirrors internal/menu's generic-noun exclusion so a bare
// "pizza" mention never counts as overlap with a specific pizza item.
var categoryStopWords = map[string]bool{"pizza": true, "pizzas": true}

func tokenSetOf(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) >= 3 && !categoryStopWords[f] {
			set[f] = true
		}
	}
	return set
}

func overlapCount(a, b map[string]bool) int {
	count := 0
	for t := range a {
		if b[t] {
			count++
		}
	}
	return count
}
