package identify

import (
	"context"
	"image"
	"image/draw"
	"math"
	"sort"

	"plant-care-api/internal/apperrors"
)

// LocalClassifier is the on-device fallback: a general-purpose object
// classifier over a fixed label vocabulary, scored from deterministic pixel
// features. It is not plant-specific; its top label is mapped through the
// curated lexical heuristic in labels.go.
type LocalClassifier struct{}

// NewLocalClassifier creates the fallback provider.
func NewLocalClassifier() *LocalClassifier {
	return &LocalClassifier{}
}

func (c *LocalClassifier) Name() string { return "local-classifier" }

// features are the image statistics the label scores are computed from.
type features struct {
	greenFraction float64 // share of green-dominant pixels
	avgSaturation float64
	avgLuminance  float64
	edgeVariance  float64 // Laplacian variance, texture proxy
}

// Identify scores the fixed vocabulary against the image features and returns
// the ranked predictions with the top label mapped to a plant name.
func (c *LocalClassifier) Identify(ctx context.Context, in Input) (*Identification, error) {
	if in.Image == nil {
		return nil, apperrors.NewProcessingError("no decoded image for local classification", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("local classification cancelled", err)
	}

	f := extractFeatures(in.Image)
	predictions := scoreVocabulary(f)
	if len(predictions) == 0 {
		return nil, apperrors.NewProcessingError("local classifier produced no predictions", nil)
	}

	top := predictions[0]
	return &Identification{
		Source:      c.Name(),
		Name:        MapLabel(top.Label),
		Confidence:  top.Confidence,
		Predictions: predictions,
	}, nil
}

func extractFeatures(img image.Image) features {
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return features{}
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	var greenCount int
	var totalSat, totalLum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := float64(r16>>8), float64(g16>>8), float64(b16>>8)

			if g > 100 && g > r && g > b {
				greenCount++
			}

			max := math.Max(math.Max(r, g), b)
			min := math.Min(math.Min(r, g), b)
			if max > 0 {
				totalSat += (max - min) / max
			}
			totalLum += max / 255
		}
	}

	return features{
		greenFraction: float64(greenCount) / total,
		avgSaturation: totalSat / total,
		avgLuminance:  totalLum / total,
		edgeVariance:  laplacianVariance(gray),
	}
}

// laplacianVariance measures local contrast with a 3x3 Laplacian kernel.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	kernel := [3][3]int{{0, 1, 0}, {1, -4, 1}, {0, 1, 0}}
	var sum, sumSq float64

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var val int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					val += int(gray.GrayAt(bounds.Min.X+x+kx, bounds.Min.Y+y+ky).Y) * kernel[ky+1][kx+1]
				}
			}
			fVal := float64(val)
			sum += fVal
			sumSq += fVal * fVal
		}
	}

	n := float64((width - 2) * (height - 2))
	if n <= 0 {
		return 0
	}
	mean := sum / n
	return (sumSq / n) - (mean * mean)
}

// scoreVocabulary rates every label in the fixed vocabulary from the features.
// Scores are fixed rules, not learned weights, so results are reproducible.
func scoreVocabulary(f features) []Prediction {
	scores := map[string]float64{
		"pot plant":  0.2 + 0.7*f.greenFraction,
		"flower":     0.1 + 0.5*f.avgSaturation + 0.2*f.greenFraction,
		"tree":       0.1 + 0.4*f.greenFraction + edgeScore(f.edgeVariance, 400),
		"grass":      0.05 + 0.5*f.greenFraction + edgeScore(f.edgeVariance, 800),
		"cactus":     0.1 + 0.3*f.greenFraction + 0.2*(1-f.avgSaturation),
		"background": 0.3 * (1 - f.greenFraction) * (1 - f.avgSaturation),
	}

	predictions := make([]Prediction, 0, len(scores))
	var sumScores float64
	for label, score := range scores {
		if score < 0 {
			score = 0
		}
		sumScores += score
		predictions = append(predictions, Prediction{Label: label, Confidence: score})
	}

	if sumScores > 0 {
		for i := range predictions {
			predictions[i].Confidence /= sumScores
		}
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Confidence != predictions[j].Confidence {
			return predictions[i].Confidence > predictions[j].Confidence
		}
		return predictions[i].Label < predictions[j].Label
	})
	return predictions
}

// edgeScore maps a Laplacian variance onto [0, 0.3] with the given midpoint.
func edgeScore(variance, midpoint float64) float64 {
	return 0.3 * (variance / (variance + midpoint))
}
