package health

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// Assessment estimates plant health from the colour distribution of an image.
type Assessment struct {
	OverallHealth float64 `json:"overall_health"`
	Details       Details `json:"details"`
	Issues        []Issue `json:"issues,omitempty"`
}

// Details holds the tissue classification percentages.
type Details struct {
	HealthyTissuePct  float64 `json:"healthy_tissue_pct"`
	StressedTissuePct float64 `json:"stressed_tissue_pct"`
	DamagedTissuePct  float64 `json:"damaged_tissue_pct"`
}

// Issue is a detected problem with fixed remediation advice.
type Issue struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Solutions   []string `json:"solutions"`
}

// Fixed issue thresholds over the tissue percentages.
const (
	yellowIssueThreshold = 20.0
	brownIssueThreshold  = 15.0
)

// Assess classifies every pixel into green, yellow-ish, brown-ish or other
// via fixed RGB-channel threshold rules and derives a 0-100 health score.
// Deterministic and stateless: no model inference, no learned weights.
func Assess(img image.Image) Assessment {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return Assessment{}
	}

	var green, yellow, brown int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := int(r16>>8), int(g16>>8), int(b16>>8)

			switch {
			case g > 100 && g > r && g > b:
				green++
			case r > 150 && g > 150 && b < 100:
				yellow++
			case r > 80 && r <= 160 && g < 100 && b < 80:
				brown++
			}
		}
	}

	greenPct := 100 * float64(green) / float64(total)
	yellowPct := 100 * float64(yellow) / float64(total)
	brownPct := 100 * float64(brown) / float64(total)

	score := greenPct - (0.5*yellowPct + brownPct)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	assessment := Assessment{
		OverallHealth: score,
		Details: Details{
			HealthyTissuePct:  greenPct,
			StressedTissuePct: yellowPct,
			DamagedTissuePct:  brownPct,
		},
	}

	if yellowPct > yellowIssueThreshold {
		assessment.Issues = append(assessment.Issues, Issue{
			Type:        "Nutrient Deficiency",
			Severity:    "moderate",
			Description: "Significant yellowing suggests a nitrogen or iron deficiency.",
			Solutions: []string{
				"Apply a balanced fertilizer according to label rates",
				"Check soil pH; nutrients lock out below 5.5 and above 7.5",
				"Avoid overwatering, which leaches mobile nutrients",
			},
		})
	}
	if brownPct > brownIssueThreshold {
		assessment.Issues = append(assessment.Issues, Issue{
			Type:        "Disease/Damage",
			Severity:    "high",
			Description: "Browning tissue indicates disease, scorch or physical damage.",
			Solutions: []string{
				"Remove affected leaves with sterilized shears",
				"Improve air circulation around the plant",
				"Treat with an appropriate fungicide if spots are spreading",
			},
		})
	}

	return assessment
}

// AssessReader decodes an image stream and assesses it. Any decode error
// yields a zeroed assessment rather than propagating.
func AssessReader(r io.Reader) Assessment {
	img, _, err := image.Decode(r)
	if err != nil {
		return Assessment{}
	}
	return Assess(img)
}
