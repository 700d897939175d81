package identify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plant-care-api/internal/apperrors"
	"plant-care-api/internal/health"
)

// PlantIDProvider identifies plants through the Plant.id HTTP API. The first
// suggestion is taken as the best match and normalized into the shared result
// shape; the provider's own health-assessment fields, when present, become the
// companion health sub-object.
type PlantIDProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewPlantIDProvider creates the primary identification provider.
func NewPlantIDProvider(endpoint, apiKey string, timeout time.Duration) *PlantIDProvider {
	return &PlantIDProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *PlantIDProvider) Name() string { return "plant-id" }

type plantIDRequest struct {
	APIKey         string   `json:"api_key"`
	Images         []string `json:"images"`
	PlantDetails   []string `json:"plant_details"`
	DiseaseDetails []string `json:"disease_details"`
}

type plantIDDetails struct {
	ScientificName  string   `json:"scientific_name"`
	CommonNames     []string `json:"common_names"`
	WikiDescription struct {
		Value string `json:"value"`
	} `json:"wiki_description"`
	Watering struct {
		Text string `json:"text"`
	} `json:"watering"`
	Sunlight    []string `json:"sunlight"`
	Soil        string   `json:"soil"`
	Temperature string   `json:"temperature"`
}

type plantIDSuggestion struct {
	PlantName    string         `json:"plant_name"`
	Probability  float64        `json:"probability"`
	PlantDetails plantIDDetails `json:"plant_details"`
}

type plantIDDisease struct {
	Name           string  `json:"name"`
	Probability    float64 `json:"probability"`
	DiseaseDetails struct {
		Description string `json:"description"`
		Treatment   struct {
			Biological []string `json:"biological"`
			Chemical   []string `json:"chemical"`
		} `json:"treatment"`
	} `json:"disease_details"`
}

type plantIDResponse struct {
	Suggestions      []plantIDSuggestion `json:"suggestions"`
	HealthAssessment *struct {
		IsHealthy            bool             `json:"is_healthy"`
		IsHealthyProbability float64          `json:"is_healthy_probability"`
		Diseases             []plantIDDisease `json:"diseases"`
	} `json:"health_assessment"`
}

// Identify posts the base64-encoded image with the requested detail fields.
// Failures are typed: no network response, non-2xx status, or an empty or
// malformed suggestion list. None are retried.
func (p *PlantIDProvider) Identify(ctx context.Context, in Input) (*Identification, error) {
	payload := plantIDRequest{
		APIKey: p.apiKey,
		Images: []string{base64.StdEncoding.EncodeToString(in.Bytes)},
		PlantDetails: []string{
			"common_names", "scientific_name", "wiki_description",
			"watering", "sunlight", "soil", "temperature",
		},
		DiseaseDetails: []string{"description", "treatment"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode identification request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build identification request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("identification provider unreachable",
			apperrors.ProviderNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewProviderError(
			fmt.Sprintf("identification provider returned status %d", resp.StatusCode),
			apperrors.ProviderErrorStatus, nil)
	}

	var parsed plantIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewProviderError("malformed identification response",
			apperrors.ProviderEmptyPayload, err)
	}
	if len(parsed.Suggestions) == 0 {
		return nil, apperrors.NewProviderError("identification response had no suggestions",
			apperrors.ProviderEmptyPayload, nil)
	}

	best := parsed.Suggestions[0]
	result := &Identification{
		Source:         p.Name(),
		Name:           displayName(best.PlantName, best.PlantDetails.CommonNames),
		ScientificName: best.PlantDetails.ScientificName,
		Confidence:     best.Probability,
		CareInfo:       normalizeCareInfo(best.PlantDetails),
	}

	if parsed.HealthAssessment != nil {
		result.Health = normalizeHealth(parsed.HealthAssessment.IsHealthyProbability)
		for _, d := range parsed.HealthAssessment.Diseases {
			result.Diseases = append(result.Diseases, Disease{
				Name:        d.Name,
				Probability: d.Probability,
				Description: d.DiseaseDetails.Description,
				Treatment:   firstTreatment(d.DiseaseDetails.Treatment.Biological, d.DiseaseDetails.Treatment.Chemical),
			})
		}
	}

	return result, nil
}

func displayName(plantName string, commonNames []string) string {
	if len(commonNames) > 0 && commonNames[0] != "" {
		return commonNames[0]
	}
	return plantName
}

func normalizeCareInfo(d plantIDDetails) *CareInfo {
	info := &CareInfo{
		Watering:    d.Watering.Text,
		Sunlight:    strings.Join(d.Sunlight, ", "),
		Soil:        d.Soil,
		Temperature: d.Temperature,
		Description: d.WikiDescription.Value,
	}
	if *info == (CareInfo{}) {
		return nil
	}
	return info
}

// normalizeHealth maps the provider's healthy-probability into the shared
// assessment shape so both sources produce comparable health sub-objects.
func normalizeHealth(healthyProbability float64) *health.Assessment {
	score := healthyProbability * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &health.Assessment{
		OverallHealth: score,
		Details: health.Details{
			HealthyTissuePct: score,
			DamagedTissuePct: 100 - score,
		},
	}
}

func firstTreatment(biological, chemical []string) string {
	if len(biological) > 0 {
		return biological[0]
	}
	if len(chemical) > 0 {
		return chemical[0]
	}
	return ""
}
