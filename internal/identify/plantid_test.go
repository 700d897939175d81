package identify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plant-care-api/internal/apperrors"
)

const plantIDFixture = `{
	"suggestions": [
		{
			"plant_name": "Monstera deliciosa",
			"probability": 0.92,
			"plant_details": {
				"scientific_name": "Monstera deliciosa",
				"common_names": ["Swiss Cheese Plant"],
				"wiki_description": {"value": "A tropical climbing plant."},
				"watering": {"text": "Water when the top soil is dry"},
				"sunlight": ["bright indirect"],
				"soil": "well-draining",
				"temperature": "18-27C"
			}
		}
	],
	"health_assessment": {
		"is_healthy": false,
		"is_healthy_probability": 0.75,
		"diseases": [
			{
				"name": "leaf spot",
				"probability": 0.4,
				"disease_details": {
					"description": "Fungal spotting on leaves",
					"treatment": {"biological": ["remove affected leaves"], "chemical": ["copper fungicide"]}
				}
			}
		]
	}
}`

func newPlantIDTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *PlantIDProvider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewPlantIDProvider(server.URL, "test-key", 5*time.Second)
}

func TestPlantIDProvider_NormalizesResponse(t *testing.T) {
	var captured plantIDRequest
	_, provider := newPlantIDTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(plantIDFixture))
	})

	result, err := provider.Identify(context.Background(), Input{Bytes: []byte("image-data")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.APIKey != "test-key" {
		t.Errorf("expected the API key in the request, got %q", captured.APIKey)
	}
	if len(captured.Images) != 1 || captured.Images[0] == "" {
		t.Error("expected one base64 image in the request")
	}

	if result.Source != "plant-id" {
		t.Errorf("expected plant-id source, got %q", result.Source)
	}
	if result.Name != "Swiss Cheese Plant" {
		t.Errorf("expected the first common name, got %q", result.Name)
	}
	if result.ScientificName != "Monstera deliciosa" {
		t.Errorf("unexpected scientific name %q", result.ScientificName)
	}
	if result.Confidence != 0.92 {
		t.Errorf("unexpected confidence %.2f", result.Confidence)
	}
	if result.CareInfo == nil || result.CareInfo.Watering != "Water when the top soil is dry" {
		t.Errorf("expected normalized care info, got %+v", result.CareInfo)
	}

	if result.Health == nil {
		t.Fatal("expected the provider's health assessment to be normalized")
	}
	if result.Health.OverallHealth != 75 {
		t.Errorf("expected health score 75, got %.2f", result.Health.OverallHealth)
	}
	if len(result.Diseases) != 1 {
		t.Fatalf("expected one disease, got %d", len(result.Diseases))
	}
	if result.Diseases[0].Treatment != "remove affected leaves" {
		t.Errorf("expected the biological treatment first, got %q", result.Diseases[0].Treatment)
	}
}

func TestPlantIDProvider_FallsBackToPlantName(t *testing.T) {
	_, provider := newPlantIDTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions": [{"plant_name": "Ficus lyrata", "probability": 0.5, "plant_details": {}}]}`))
	})

	result, err := provider.Identify(context.Background(), Input{Bytes: []byte("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "Ficus lyrata" {
		t.Errorf("expected the latin name when no common names exist, got %q", result.Name)
	}
	if result.CareInfo != nil {
		t.Errorf("expected nil care info when every field is empty, got %+v", result.CareInfo)
	}
	if result.Health != nil {
		t.Error("expected no health sub-object without a health assessment")
	}
}

func TestPlantIDProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "empty suggestions",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"suggestions": []}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, provider := newPlantIDTestServer(t, tt.handler)
			_, err := provider.Identify(context.Background(), Input{Bytes: []byte("x")})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeProvider) {
				t.Errorf("expected a provider error, got %v", err)
			}
		})
	}
}

func TestPlantIDProvider_NoRetryOnFailure(t *testing.T) {
	requests := 0
	_, provider := newPlantIDTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.Identify(context.Background(), Input{Bytes: []byte("x")})
	if err == nil {
		t.Fatal("expected an error")
	}
	if requests != 1 {
		t.Errorf("provider failures must not be retried, saw %d requests", requests)
	}
}
