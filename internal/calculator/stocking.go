package calculator

import (
	"math"
	"strings"
)

// StockingInput describes a pasture and the animal species to stock.
type StockingInput struct {
	Acres         float64 `json:"acres" binding:"required"`
	SoilQuality   string  `json:"soil_quality" binding:"required"`
	GrazingMonths float64 `json:"grazing_months" binding:"required"`
	Species       string  `json:"species" binding:"required"`
}

// StockingResult reports the forage supply in animal-unit-months and the
// recommended head count.
type StockingResult struct {
	TotalAUM           float64 `json:"total_aum"`
	AnimalUnitEquiv    float64 `json:"animal_unit_equivalent"`
	RecommendedAnimals int     `json:"recommended_animals"`
}

// soilQualityFactors scales forage production by pasture condition.
var soilQualityFactors = map[string]float64{
	"poor":      0.5,
	"fair":      0.75,
	"good":      1.0,
	"excellent": 1.25,
}

// animalUnitEquivalents is the standard AUE table: one 1000-lb cow with calf
// equals 1.0 animal units.
var animalUnitEquivalents = map[string]float64{
	"cattle": 1.0,
	"horse":  1.25,
	"sheep":  0.2,
	"goat":   0.15,
	"llama":  0.3,
}

// Stocking computes total_AUM = acres x soil_quality_factor x grazing_months
// and recommends floor(total_AUM / (AUE x grazing_months)) animals.
func Stocking(in StockingInput) (*StockingResult, error) {
	if err := requirePositive("acres", in.Acres); err != nil {
		return nil, err
	}
	if err := requirePositive("grazing_months", in.GrazingMonths); err != nil {
		return nil, err
	}

	factor, ok := soilQualityFactors[strings.ToLower(strings.TrimSpace(in.SoilQuality))]
	if !ok {
		return nil, invalid("soil_quality", "must be one of poor, fair, good, excellent")
	}
	aue, ok := animalUnitEquivalents[strings.ToLower(strings.TrimSpace(in.Species))]
	if !ok {
		return nil, invalid("species", "is not a supported grazing species")
	}

	totalAUM := in.Acres * factor * in.GrazingMonths
	return &StockingResult{
		TotalAUM:           totalAUM,
		AnimalUnitEquiv:    aue,
		RecommendedAnimals: int(math.Floor(totalAUM / (aue * in.GrazingMonths))),
	}, nil
}
