package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Persistence
	DBPath string

	// Azure blob storage (upload path disabled when account/key are absent)
	AzureAccountName   string
	AzureAccountKey    string
	AzureContainerName string

	// Identification providers
	PlantIDAPIKey   string
	PlantIDEndpoint string

	// Generative text provider
	OpenAIAPIKey   string
	OpenAIEndpoint string
	OpenAIModel    string

	// Content pipeline
	DraftRetention time.Duration
	ContentTopics  []string
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// BlobEnabled reports whether the blob storage upload path is configured.
func (c *Config) BlobEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// PlantIDEnabled reports whether the primary identification provider is configured.
func (c *Config) PlantIDEnabled() bool {
	return c.PlantIDAPIKey != ""
}

// WriterEnabled reports whether the generative text provider is configured.
// Absence disables blog generation and content rewriting rather than failing hard.
func (c *Config) WriterEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Optional .env for local development; the environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		DBPath: getEnvOrDefault("DB_PATH", "plantcare.db"),

		AzureAccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainerName: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "plant-images"),

		PlantIDAPIKey:   os.Getenv("PLANT_ID_API_KEY"),
		PlantIDEndpoint: getEnvOrDefault("PLANT_ID_ENDPOINT", "https://api.plant.id/v2/identify"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint: getEnvOrDefault("OPENAI_ENDPOINT", "https://api.openai.com"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),

		DraftRetention: parseDurationOrDefault("DRAFT_RETENTION", 30*24*time.Hour),
		ContentTopics:  splitList(getEnvOrDefault("CONTENT_TOPICS", defaultTopics)),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	if cfg.DraftRetention <= 0 {
		return nil, fmt.Errorf("DRAFT_RETENTION must be > 0 (got %s)", cfg.DraftRetention)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	return cfg, nil
}

const defaultTopics = "seasonal planting guide,composting basics,houseplant care,pest management,soil health"

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
