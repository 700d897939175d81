package calculator

import "strings"

// RotationInput asks for a rotation plan starting after a given crop.
type RotationInput struct {
	PreviousCrop string `json:"previous_crop" binding:"required"`
	Years        int    `json:"years" binding:"required"`
}

// RotationYear is one season's recommendation.
type RotationYear struct {
	Year   int      `json:"year"`
	Family string   `json:"family"`
	Crops  []string `json:"crops"`
	Note   string   `json:"note,omitempty"`
}

// RotationResult is the full multi-year plan.
type RotationResult struct {
	PreviousFamily string         `json:"previous_family"`
	Plan           []RotationYear `json:"plan"`
}

// rotationOrder is the classic four-family cycle: legumes fix nitrogen for
// the leafy crops, heavy-feeding fruiting crops follow, light-feeding roots
// close the cycle.
var rotationOrder = []string{"legume", "leafy", "fruiting", "root"}

var rotationFamilies = map[string][]string{
	"legume":   {"beans", "peas", "clover"},
	"leafy":    {"lettuce", "spinach", "cabbage", "kale"},
	"fruiting": {"tomato", "pepper", "squash", "corn"},
	"root":     {"carrot", "beet", "onion", "potato"},
}

var rotationNotes = map[string]string{
	"legume":   "fixes nitrogen for the following season",
	"leafy":    "uses the nitrogen banked by legumes",
	"fruiting": "heavy feeders, amend with compost before planting",
	"root":     "light feeders that loosen the soil",
}

// cropFamily maps individual crops back to their rotation family.
var cropFamily = func() map[string]string {
	m := make(map[string]string)
	for family, crops := range rotationFamilies {
		m[family] = family
		for _, crop := range crops {
			m[crop] = family
		}
	}
	return m
}()

const maxRotationYears = 10

// Rotation builds a plan that never repeats a family in consecutive years,
// continuing the fixed cycle from wherever the previous crop left it.
func Rotation(in RotationInput) (*RotationResult, error) {
	if in.Years <= 0 || in.Years > maxRotationYears {
		return nil, invalid("years", "must be between 1 and 10")
	}

	family, ok := cropFamily[strings.ToLower(strings.TrimSpace(in.PreviousCrop))]
	if !ok {
		return nil, invalid("previous_crop", "is not a recognized crop or family")
	}

	start := 0
	for i, f := range rotationOrder {
		if f == family {
			start = i + 1
			break
		}
	}

	plan := make([]RotationYear, 0, in.Years)
	for year := 1; year <= in.Years; year++ {
		f := rotationOrder[(start+year-1)%len(rotationOrder)]
		plan = append(plan, RotationYear{
			Year:   year,
			Family: f,
			Crops:  rotationFamilies[f],
			Note:   rotationNotes[f],
		})
	}

	return &RotationResult{PreviousFamily: family, Plan: plan}, nil
}
