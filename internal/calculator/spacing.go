package calculator

import (
	"math"
	"strings"
)

// SpacingInput describes the bed dimensions, the crop and the plant count to
// aim for.
type SpacingInput struct {
	FieldLengthM float64 `json:"field_length_m" binding:"required"`
	FieldWidthM  float64 `json:"field_width_m" binding:"required"`
	Crop         string  `json:"crop" binding:"required"`
	TargetPlants int     `json:"target_plants" binding:"required"`
}

// SpacingResult is the spacing pair that best approaches the target count.
type SpacingResult struct {
	RowSpacingM    float64 `json:"row_spacing_m"`
	PlantSpacingM  float64 `json:"plant_spacing_m"`
	AchievedPlants int     `json:"achieved_plants"`
	Rows           int     `json:"rows"`
	PlantsPerRow   int     `json:"plants_per_row"`
}

// cropSpacingRange is the allowed min/max spacing per crop, in metres.
type cropSpacingRange struct {
	rowMin, rowMax     float64
	plantMin, plantMax float64
}

var cropSpacingRanges = map[string]cropSpacingRange{
	"tomato":  {rowMin: 0.75, rowMax: 1.2, plantMin: 0.45, plantMax: 0.9},
	"lettuce": {rowMin: 0.3, rowMax: 0.5, plantMin: 0.2, plantMax: 0.35},
	"corn":    {rowMin: 0.75, rowMax: 1.0, plantMin: 0.2, plantMax: 0.3},
	"carrot":  {rowMin: 0.3, rowMax: 0.45, plantMin: 0.05, plantMax: 0.1},
	"cabbage": {rowMin: 0.6, rowMax: 0.9, plantMin: 0.3, plantMax: 0.6},
	"beans":   {rowMin: 0.45, rowMax: 0.9, plantMin: 0.08, plantMax: 0.15},
	"squash":  {rowMin: 1.2, rowMax: 1.8, plantMin: 0.6, plantMax: 1.2},
}

// spacingStep is the grid-search increment in metres.
const spacingStep = 0.05

// Spacing brute-force searches row and plant spacings at 0.05 m increments
// within the crop's allowed ranges, minimizing the absolute difference between
// the achieved and target plant counts.
func Spacing(in SpacingInput) (*SpacingResult, error) {
	if err := requirePositive("field_length_m", in.FieldLengthM); err != nil {
		return nil, err
	}
	if err := requirePositive("field_width_m", in.FieldWidthM); err != nil {
		return nil, err
	}
	if in.TargetPlants <= 0 {
		return nil, invalid("target_plants", "must be a positive number")
	}

	ranges, ok := cropSpacingRanges[strings.ToLower(strings.TrimSpace(in.Crop))]
	if !ok {
		return nil, invalid("crop", "is not a supported crop")
	}

	var best *SpacingResult
	bestDiff := math.MaxFloat64

	for row := ranges.rowMin; row <= ranges.rowMax+1e-9; row += spacingStep {
		for plant := ranges.plantMin; plant <= ranges.plantMax+1e-9; plant += spacingStep {
			rows := int(math.Floor(in.FieldWidthM / row))
			perRow := int(math.Floor(in.FieldLengthM / plant))
			achieved := rows * perRow

			diff := math.Abs(float64(achieved - in.TargetPlants))
			if diff < bestDiff {
				bestDiff = diff
				best = &SpacingResult{
					RowSpacingM:    round2(row),
					PlantSpacingM:  round2(plant),
					AchievedPlants: achieved,
					Rows:           rows,
					PlantsPerRow:   perRow,
				}
			}
		}
	}

	if best == nil {
		return nil, invalid("field dimensions", "are too small for the chosen crop")
	}
	return best, nil
}

// round2 trims accumulated float error from the grid walk.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
