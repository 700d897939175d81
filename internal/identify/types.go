package identify

import (
	"image"

	"plant-care-api/internal/health"
)

// Input carries both the raw bytes (for providers that post the image) and
// the decoded image (for local pixel analysis), so the image is decoded once.
type Input struct {
	Bytes []byte
	Image image.Image
}

// CareInfo is the flattened care guidance extracted from a provider response.
// Optional fields are omitted structurally rather than null-stripped at
// persistence time.
type CareInfo struct {
	Watering    string `json:"watering,omitempty"`
	Sunlight    string `json:"sunlight,omitempty"`
	Soil        string `json:"soil,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Description string `json:"description,omitempty"`
}

// Disease is a provider-detected disease candidate.
type Disease struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Description string  `json:"description,omitempty"`
	Treatment   string  `json:"treatment,omitempty"`
}

// Prediction is one ranked candidate label from a classifier.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Identification is the normalized result shape shared by all providers.
// Confidence always comes from the single best-ranked suggestion of whichever
// source answered; there is no ensemble scoring across sources.
type Identification struct {
	Source         string             `json:"source"`
	Name           string             `json:"name"`
	ScientificName string             `json:"scientific_name,omitempty"`
	Confidence     float64            `json:"confidence"`
	CareInfo       *CareInfo          `json:"care_info,omitempty"`
	Diseases       []Disease          `json:"diseases,omitempty"`
	Health         *health.Assessment `json:"health,omitempty"`
	Predictions    []Prediction       `json:"predictions,omitempty"`
}
