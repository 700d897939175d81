package identify

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// UnknownPlant is returned when no classifier label maps to a known plant term.
const UnknownPlant = "Unknown Plant"

// plantLabelMap is the curated lexical mapping from general-purpose classifier
// labels to plant display names.
var plantLabelMap = map[string]string{
	"pot plant":    "House Plant",
	"potted plant": "House Plant",
	"houseplant":   "House Plant",
	"vase":         "House Plant",
	"flower":       "Flowering Plant",
	"daisy":        "Daisy",
	"sunflower":    "Sunflower",
	"cactus":       "Cactus",
	"succulent":    "Succulent",
	"fern":         "Fern",
	"tree":         "Tree",
	"palm":         "Palm",
	"grass":        "Ornamental Grass",
	"vegetable":    "Vegetable Plant",
	"herb":         "Herb",
	"ivy":          "Ivy",
	"moss":         "Moss",
	"shrub":        "Shrub",
}

// plantTerms are substrings that mark a label as plant-related even when it
// has no curated mapping.
var plantTerms = []string{"plant", "flower", "leaf", "tree", "herb", "botan", "flora"}

// maxLabelDistance is the edit-distance tolerance for near-miss labels
// ("pot pant" still maps to "House Plant").
const maxLabelDistance = 2

// MapLabel resolves a classifier label to a plant display name. Exact match
// first, then edit-distance tolerant match against the curated vocabulary,
// then a plant-term substring check; otherwise UnknownPlant.
func MapLabel(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return UnknownPlant
	}

	if name, ok := plantLabelMap[normalized]; ok {
		return name
	}

	bestName := ""
	bestDistance := maxLabelDistance + 1
	for key, name := range plantLabelMap {
		if d := levenshtein.Distance(normalized, key); d < bestDistance {
			bestDistance = d
			bestName = name
		}
	}
	if bestName != "" {
		return bestName
	}

	for _, term := range plantTerms {
		if strings.Contains(normalized, term) {
			return titleCase(normalized)
		}
	}

	return UnknownPlant
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
