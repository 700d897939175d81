package calculator

import "math"

// FertilizerInput describes the soil test results, the target levels and the
// N-P-K analysis of the chosen product. PPM values come from a soil report;
// percents from the fertilizer label.
type FertilizerInput struct {
	AreaSqM float64 `json:"area_sq_m" binding:"required"`

	CurrentN float64 `json:"current_n_ppm"`
	CurrentP float64 `json:"current_p_ppm"`
	CurrentK float64 `json:"current_k_ppm"`

	TargetN float64 `json:"target_n_ppm"`
	TargetP float64 `json:"target_p_ppm"`
	TargetK float64 `json:"target_k_ppm"`

	FertilizerN float64 `json:"fertilizer_n_pct"`
	FertilizerP float64 `json:"fertilizer_p_pct"`
	FertilizerK float64 `json:"fertilizer_k_pct"`
}

// FertilizerResult reports the product amount needed per nutrient and the
// overall recommendation driven by the limiting nutrient.
type FertilizerResult struct {
	AmountN float64 `json:"amount_n_grams"`
	AmountP float64 `json:"amount_p_grams"`
	AmountK float64 `json:"amount_k_grams"`

	// AmountNeeded is the maximum across N, P and K: the limiting nutrient
	// determines the total product applied.
	AmountNeeded     float64 `json:"amount_needed_grams"`
	LimitingNutrient string  `json:"limiting_nutrient,omitempty"`
}

// Fertilizer computes grams of product per nutrient as
// gap_ppm x area x 100 / nutrient_percent and takes the maximum.
func Fertilizer(in FertilizerInput) (*FertilizerResult, error) {
	if err := requirePositive("area_sq_m", in.AreaSqM); err != nil {
		return nil, err
	}
	for field, v := range map[string]float64{
		"current_n_ppm": in.CurrentN, "current_p_ppm": in.CurrentP, "current_k_ppm": in.CurrentK,
		"target_n_ppm": in.TargetN, "target_p_ppm": in.TargetP, "target_k_ppm": in.TargetK,
		"fertilizer_n_pct": in.FertilizerN, "fertilizer_p_pct": in.FertilizerP, "fertilizer_k_pct": in.FertilizerK,
	} {
		if err := requireNonNegative(field, v); err != nil {
			return nil, err
		}
	}

	result := &FertilizerResult{}
	nutrients := []struct {
		name    string
		current float64
		target  float64
		percent float64
		out     *float64
	}{
		{"N", in.CurrentN, in.TargetN, in.FertilizerN, &result.AmountN},
		{"P", in.CurrentP, in.TargetP, in.FertilizerP, &result.AmountP},
		{"K", in.CurrentK, in.TargetK, in.FertilizerK, &result.AmountK},
	}

	for _, n := range nutrients {
		gap := math.Max(0, n.target-n.current)
		if gap == 0 {
			continue
		}
		if n.percent <= 0 {
			return nil, invalid("fertilizer_"+n.name, "contains none of a needed nutrient")
		}
		*n.out = gap * in.AreaSqM * 100 / n.percent
		if *n.out > result.AmountNeeded {
			result.AmountNeeded = *n.out
			result.LimitingNutrient = n.name
		}
	}

	return result, nil
}
