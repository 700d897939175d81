package repository

import (
	"time"

	"plant-care-api/internal/health"
	"plant-care-api/internal/identify"
)

// AnalysisRecord is one cached identification result, keyed by the exact image
// URL. Immutable after creation: an image URL maps to at most one stored row
// (cache-check-before-call plus the unique index).
type AnalysisRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ImageURL  string    `gorm:"uniqueIndex;size:512" json:"image_url"`
	Timestamp time.Time `json:"timestamp"`

	Methods StringList `gorm:"serializer:json" json:"methods"`

	// Result of whichever provider answered; absent fields are omitted
	// structurally instead of being null-stripped before persistence.
	PlantID    *identify.Identification `gorm:"serializer:json" json:"plant_id,omitempty"`
	Classifier *identify.Identification `gorm:"serializer:json" json:"classifier,omitempty"`
	Health     *health.Assessment       `gorm:"serializer:json" json:"health,omitempty"`
}

// StringList is a JSON-serialized string slice column.
type StringList []string

// BlogPost is one aggregated or generated post. Link is the dedup key: an
// existence check runs before every insert.
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Link      string    `gorm:"uniqueIndex;size:512" json:"link"`
	PubDate   time.Time `json:"pub_date"`
	Source    string    `json:"source,omitempty"`
	Category  string    `json:"category,omitempty"`
	Status    string    `gorm:"index;default:draft" json:"status"`
	Processed bool      `gorm:"index" json:"processed"`

	ProcessedContent string     `json:"processed_content,omitempty"`
	Description      string     `json:"description,omitempty"`
	Keywords         StringList `gorm:"serializer:json" json:"keywords,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// FeedSource is one RSS source the aggregator pulls from.
type FeedSource struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	URL      string `gorm:"uniqueIndex;size:512" json:"url"`
	Category string `json:"category,omitempty"`
	Active   bool   `gorm:"index;default:true" json:"active"`
}
