package calculator

import (
	"math"
	"testing"

	"plant-care-api/internal/apperrors"
)

func expectValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFertilizer(t *testing.T) {
	// Gap of 10 ppm N over 100 m2 with a 10% N product: 10*100*100/10 = 10000 g.
	result, err := Fertilizer(FertilizerInput{
		AreaSqM:  100,
		CurrentN: 20, TargetN: 30, FertilizerN: 10,
		CurrentP: 15, TargetP: 15, FertilizerP: 5,
		CurrentK: 10, TargetK: 12, FertilizerK: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.AmountN, 10000) {
		t.Errorf("expected 10000 g for N, got %.2f", result.AmountN)
	}
	if result.AmountP != 0 {
		t.Errorf("expected 0 g for P with no gap, got %.2f", result.AmountP)
	}
	if !almostEqual(result.AmountK, 1000) {
		t.Errorf("expected 1000 g for K, got %.2f", result.AmountK)
	}
	if result.LimitingNutrient != "N" || !almostEqual(result.AmountNeeded, 10000) {
		t.Errorf("expected N to limit at 10000 g, got %s at %.2f",
			result.LimitingNutrient, result.AmountNeeded)
	}
}

func TestFertilizer_WiderGapNeedsMoreProduct(t *testing.T) {
	base := FertilizerInput{AreaSqM: 50, CurrentN: 10, TargetN: 20, FertilizerN: 10}
	wider := base
	wider.TargetN = 40

	small, err := Fertilizer(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := Fertilizer(wider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if large.AmountNeeded <= small.AmountNeeded {
		t.Errorf("a wider nutrient gap must need more product: %.2f vs %.2f",
			large.AmountNeeded, small.AmountNeeded)
	}
}

func TestFertilizer_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input FertilizerInput
	}{
		{"zero area", FertilizerInput{AreaSqM: 0, TargetN: 10, FertilizerN: 10}},
		{"negative current", FertilizerInput{AreaSqM: 10, CurrentN: -5, TargetN: 10, FertilizerN: 10}},
		{"gap with zero-percent product", FertilizerInput{AreaSqM: 10, TargetN: 10, FertilizerN: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fertilizer(tt.input)
			expectValidationError(t, err)
		})
	}
}

func TestStocking(t *testing.T) {
	// 100 acres of good pasture over 6 months: 600 AUM; cattle at AUE 1.0
	// gives 100 head.
	result, err := Stocking(StockingInput{
		Acres: 100, SoilQuality: "good", GrazingMonths: 6, Species: "cattle",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.TotalAUM, 600) {
		t.Errorf("expected 600 AUM, got %.2f", result.TotalAUM)
	}
	if result.RecommendedAnimals != 100 {
		t.Errorf("expected 100 head, got %d", result.RecommendedAnimals)
	}
}

func TestStocking_SoilAndSpeciesScale(t *testing.T) {
	good, err := Stocking(StockingInput{Acres: 40, SoilQuality: "good", GrazingMonths: 5, Species: "sheep"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	poor, err := Stocking(StockingInput{Acres: 40, SoilQuality: "poor", GrazingMonths: 5, Species: "sheep"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poor.RecommendedAnimals >= good.RecommendedAnimals {
		t.Errorf("poor soil must carry fewer animals: %d vs %d",
			poor.RecommendedAnimals, good.RecommendedAnimals)
	}
	// Sheep at AUE 0.2 stock five times as many head as cattle.
	if good.RecommendedAnimals != 200 {
		t.Errorf("expected 200 sheep on 40 good acres, got %d", good.RecommendedAnimals)
	}
}

func TestStocking_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input StockingInput
	}{
		{"zero acres", StockingInput{Acres: 0, SoilQuality: "good", GrazingMonths: 6, Species: "cattle"}},
		{"unknown soil", StockingInput{Acres: 10, SoilQuality: "swampy", GrazingMonths: 6, Species: "cattle"}},
		{"unknown species", StockingInput{Acres: 10, SoilQuality: "good", GrazingMonths: 6, Species: "dragon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Stocking(tt.input)
			expectValidationError(t, err)
		})
	}
}

func TestCompost(t *testing.T) {
	tests := []struct {
		name           string
		input          CompostInput
		wantRatio      float64
		recommendation string
	}{
		{
			name:           "equal mass is carbon heavy",
			input:          CompostInput{GreenWeightKg: 10, BrownWeightKg: 10},
			wantRatio:      40,
			recommendation: "add more green materials",
		},
		{
			name:           "green heavy pile needs browns",
			input:          CompostInput{GreenWeightKg: 30, BrownWeightKg: 1},
			wantRatio:      (30*20 + 1*60) / 31.0,
			recommendation: "add more brown materials",
		},
		{
			name:           "three parts green to one brown is balanced",
			input:          CompostInput{GreenWeightKg: 30, BrownWeightKg: 10},
			wantRatio:      30,
			recommendation: "balanced mix, maintain current ratio",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compost(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(result.CNRatio, tt.wantRatio) {
				t.Errorf("expected C:N %.4f, got %.4f", tt.wantRatio, result.CNRatio)
			}
			if result.Recommendation != tt.recommendation {
				t.Errorf("expected %q, got %q", tt.recommendation, result.Recommendation)
			}
		})
	}
}

func TestCompost_Validation(t *testing.T) {
	_, err := Compost(CompostInput{GreenWeightKg: 0, BrownWeightKg: 5})
	expectValidationError(t, err)
	_, err = Compost(CompostInput{GreenWeightKg: 5, BrownWeightKg: -1})
	expectValidationError(t, err)
}

func TestSpacing(t *testing.T) {
	result, err := Spacing(SpacingInput{
		FieldLengthM: 10, FieldWidthM: 5, Crop: "tomato", TargetPlants: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranges := cropSpacingRanges["tomato"]
	if result.RowSpacingM < ranges.rowMin || result.RowSpacingM > ranges.rowMax {
		t.Errorf("row spacing %.2f outside allowed range", result.RowSpacingM)
	}
	if result.PlantSpacingM < ranges.plantMin || result.PlantSpacingM > ranges.plantMax {
		t.Errorf("plant spacing %.2f outside allowed range", result.PlantSpacingM)
	}
	if result.AchievedPlants != result.Rows*result.PlantsPerRow {
		t.Errorf("achieved %d does not match %d rows x %d per row",
			result.AchievedPlants, result.Rows, result.PlantsPerRow)
	}
}

func TestSpacing_PrefersClosestCount(t *testing.T) {
	// A huge target forces the densest grid the ranges allow.
	dense, err := Spacing(SpacingInput{FieldLengthM: 10, FieldWidthM: 5, Crop: "lettuce", TargetPlants: 100000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sparse, err := Spacing(SpacingInput{FieldLengthM: 10, FieldWidthM: 5, Crop: "lettuce", TargetPlants: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dense.AchievedPlants <= sparse.AchievedPlants {
		t.Errorf("target pressure should change density: dense %d, sparse %d",
			dense.AchievedPlants, sparse.AchievedPlants)
	}
}

func TestSpacing_Validation(t *testing.T) {
	_, err := Spacing(SpacingInput{FieldLengthM: 10, FieldWidthM: 5, Crop: "kudzu", TargetPlants: 10})
	expectValidationError(t, err)
	_, err = Spacing(SpacingInput{FieldLengthM: 0, FieldWidthM: 5, Crop: "tomato", TargetPlants: 10})
	expectValidationError(t, err)
	_, err = Spacing(SpacingInput{FieldLengthM: 10, FieldWidthM: 5, Crop: "tomato", TargetPlants: 0})
	expectValidationError(t, err)
}

func TestRotation(t *testing.T) {
	result, err := Rotation(RotationInput{PreviousCrop: "tomato", Years: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PreviousFamily != "fruiting" {
		t.Errorf("expected tomato to map to fruiting, got %q", result.PreviousFamily)
	}
	if len(result.Plan) != 4 {
		t.Fatalf("expected a 4-year plan, got %d", len(result.Plan))
	}

	// The first planned family must differ from the previous crop's family,
	// and no two consecutive years may repeat a family.
	if result.Plan[0].Family == result.PreviousFamily {
		t.Errorf("year 1 repeats the previous family %q", result.PreviousFamily)
	}
	for i := 1; i < len(result.Plan); i++ {
		if result.Plan[i].Family == result.Plan[i-1].Family {
			t.Errorf("years %d and %d repeat family %q", i, i+1, result.Plan[i].Family)
		}
	}
	if result.Plan[0].Family != "root" {
		t.Errorf("expected the cycle to continue with root after fruiting, got %q", result.Plan[0].Family)
	}
	if len(result.Plan[0].Crops) == 0 {
		t.Error("expected crop suggestions for each year")
	}
}

func TestRotation_AcceptsFamilyName(t *testing.T) {
	result, err := Rotation(RotationInput{PreviousCrop: "legume", Years: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan[0].Family != "leafy" {
		t.Errorf("expected leafy after legume, got %q", result.Plan[0].Family)
	}
}

func TestRotation_Validation(t *testing.T) {
	_, err := Rotation(RotationInput{PreviousCrop: "tomato", Years: 0})
	expectValidationError(t, err)
	_, err = Rotation(RotationInput{PreviousCrop: "tomato", Years: 11})
	expectValidationError(t, err)
	_, err = Rotation(RotationInput{PreviousCrop: "moonflower", Years: 3})
	expectValidationError(t, err)
}
