// Package classifier suggests an item category from free text. It scores
// fixed keyword lists against the item name and description; no learning,
// no external calls.
package classifier

import (
	"sort"
	"strings"
)

type categoryInfo struct {
	keywords []string
	// priority breaks ties between broad and specific categories; lower
	// wins more weight.
	priority int
}

var categories = map[string]categoryInfo{
	"Electronics": {
		keywords: []string{"laptop", "phone", "computer", "tablet", "charger", "headphones", "earbuds", "camera", "ipad", "macbook", "iphone", "android", "wireless", "bluetooth", "usb", "cable", "adapter", "power", "battery"},
		priority: 1,
	},
	"Documents": {
		keywords: []string{"id", "card", "license", "passport", "certificate", "diploma", "transcript", "receipt", "ticket", "voucher", "coupon", "check", "money", "cash", "credit", "debit", "insurance"},
		priority: 2,
	},
	"Clothing": {
		keywords: []string{"shirt", "pants", "jeans", "dress", "skirt", "jacket", "coat", "sweater", "hoodie", "sweatshirt", "t-shirt", "blouse", "suit", "tie", "belt", "shoes", "boots", "sneakers", "sandals", "socks", "underwear"},
		priority: 3,
	},
	"Accessories": {
		keywords: []string{"wallet", "purse", "bag", "backpack", "water bottle", "umbrella", "glasses", "sunglasses", "watch", "jewelry", "ring", "necklace", "bracelet", "earrings", "hat", "cap", "scarf", "gloves", "mittens"},
		priority: 4,
	},
	"Books": {
		keywords: []string{"book", "textbook", "notebook", "journal", "diary", "magazine", "novel", "dictionary", "encyclopedia", "manual", "guide", "workbook", "planner", "calendar"},
		priority: 5,
	},
	"Keys": {
		keywords: []string{"key", "keys", "keychain", "keyring", "house key", "car key", "office key", "lock"},
		priority: 6,
	},
	"ID Cards": {
		keywords: []string{"id card", "student id", "employee id", "badge", "access card", "library card", "membership card"},
		priority: 7,
	},
	"Wallets": {
		keywords: []string{"wallet", "purse", "billfold", "money clip", "card holder"},
		priority: 8,
	},
	"Others": {
		keywords: []string{"miscellaneous", "unknown", "other", "various", "assorted"},
		priority: 9,
	},
}

// Suggestion is the result of a category suggestion.
type Suggestion struct {
	Category   string             `json:"suggested_category"`
	Confidence float64            `json:"confidence"`
	AllScores  map[string]float64 `json:"all_scores"`
}

// Suggest scores every category's keyword list against the given name and
// description. Each keyword hit counts once; the hit count is normalized by
// the list length and weighted by the inverse priority. Falls back to
// "Others" when nothing matches.
func Suggest(itemName, description string) Suggestion {
	text := strings.ToLower(itemName + " " + description)

	scores := make(map[string]float64, len(categories))
	best := "Others"
	bestScore := 0.0

	for name, info := range categories {
		hits := 0
		for _, kw := range info.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		score := float64(hits) / float64(len(info.keywords)) * (1 / float64(info.priority))
		scores[name] = score
		if score > bestScore {
			bestScore = score
			best = name
		}
	}

	return Suggestion{
		Category:   best,
		Confidence: bestScore,
		AllScores:  scores,
	}
}

// AllCategories lists every known category, ordered by priority.
func AllCategories() []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return categories[names[i]].priority < categories[names[j]].priority
	})
	return names
}

// Keywords returns the keyword list backing a category, nil for unknown
// categories.
func Keywords(category string) []string {
	info, ok := categories[category]
	if !ok {
		return nil
	}
	return info.keywords
}
