package calculator

import "gonum.org/v1/gonum/stat"

// CompostInput is the mass of green (nitrogen-rich) and brown (carbon-rich)
// feedstock going into a pile.
type CompostInput struct {
	GreenWeightKg float64 `json:"green_weight_kg" binding:"required"`
	BrownWeightKg float64 `json:"brown_weight_kg" binding:"required"`
}

// CompostResult reports the estimated carbon-to-nitrogen ratio and fixed
// adjustment advice around the ideal 30:1.
type CompostResult struct {
	CNRatio        float64 `json:"cn_ratio"`
	Recommendation string  `json:"recommendation"`
}

// Assumed feedstock ratios and advice thresholds around the 30:1 ideal.
const (
	greenCNRatio = 20.0
	brownCNRatio = 60.0

	lowerCNThreshold = 25.0
	upperCNThreshold = 35.0
)

// Compost estimates the pile's C:N ratio as the mass-weighted average of the
// green (20:1) and brown (60:1) assumptions.
func Compost(in CompostInput) (*CompostResult, error) {
	if err := requirePositive("green_weight_kg", in.GreenWeightKg); err != nil {
		return nil, err
	}
	if err := requirePositive("brown_weight_kg", in.BrownWeightKg); err != nil {
		return nil, err
	}

	ratio := stat.Mean(
		[]float64{greenCNRatio, brownCNRatio},
		[]float64{in.GreenWeightKg, in.BrownWeightKg},
	)

	result := &CompostResult{CNRatio: ratio}
	switch {
	case ratio > upperCNThreshold:
		// Carbon-heavy pile decomposes slowly: it needs nitrogen.
		result.Recommendation = "add more green materials"
	case ratio < lowerCNThreshold:
		result.Recommendation = "add more brown materials"
	default:
		result.Recommendation = "balanced mix, maintain current ratio"
	}
	return result, nil
}
