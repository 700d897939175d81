package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// AnalysisRepository stores and looks up identification results by image URL.
type AnalysisRepository interface {
	// FindByImageURL returns the first record matching the exact URL, or
	// nil when no record exists. A miss is not an error.
	FindByImageURL(ctx context.Context, imageURL string) (*AnalysisRecord, error)

	// Save persists a new analysis record.
	Save(ctx context.Context, record *AnalysisRecord) error
}

// PostRepository stores aggregated and generated blog posts.
type PostRepository interface {
	// ExistsByLink reports whether a post with this exact link is stored.
	ExistsByLink(ctx context.Context, link string) (bool, error)

	// Insert stores a new post; ErrDuplicateLink on a link collision.
	Insert(ctx context.Context, post *BlogPost) error

	// FindByID returns ErrPostNotFound when the post does not exist.
	FindByID(ctx context.Context, id uint) (*BlogPost, error)

	// FindUnprocessed returns stored posts the content step has not touched.
	FindUnprocessed(ctx context.Context, limit int) ([]BlogPost, error)

	// Update persists changes to an existing post.
	Update(ctx context.Context, post *BlogPost) error

	// DeleteStaleDrafts removes posts still in draft status created before
	// the cutoff; returns the number deleted.
	DeleteStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error)
}

// SourceRepository stores the RSS sources the aggregator pulls.
type SourceRepository interface {
	FindActive(ctx context.Context) ([]FeedSource, error)
	Upsert(ctx context.Context, source *FeedSource) error
}

// Open opens the sqlite database and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&AnalysisRecord{}, &BlogPost{}, &FeedSource{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

type gormAnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates the gorm-backed analysis store.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &gormAnalysisRepository{db: db}
}

func (r *gormAnalysisRepository) FindByImageURL(ctx context.Context, imageURL string) (*AnalysisRecord, error) {
	var record AnalysisRecord
	err := r.db.WithContext(ctx).Where("image_url = ?", imageURL).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis for %s: %w", imageURL, err)
	}
	return &record, nil
}

func (r *gormAnalysisRepository) Save(ctx context.Context, record *AnalysisRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save analysis for %s: %w", record.ImageURL, err)
	}
	return nil
}

type gormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates the gorm-backed post store.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) ExistsByLink(ctx context.Context, link string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BlogPost{}).Where("link = ?", link).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return count > 0, nil
}

func (r *gormPostRepository) Insert(ctx context.Context, post *BlogPost) error {
	exists, err := r.ExistsByLink(ctx, post.Link)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateLink
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to insert post %q: %w", post.Link, err)
	}
	return nil
}

func (r *gormPostRepository) FindByID(ctx context.Context, id uint) (*BlogPost, error) {
	var post BlogPost
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post %d: %w", id, err)
	}
	return &post, nil
}

func (r *gormPostRepository) FindUnprocessed(ctx context.Context, limit int) ([]BlogPost, error) {
	var posts []BlogPost
	q := r.db.WithContext(ctx).Where("processed = ?", false).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load unprocessed posts: %w", err)
	}
	return posts, nil
}

func (r *gormPostRepository) Update(ctx context.Context, post *BlogPost) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post %d: %w", post.ID, err)
	}
	return nil
}

func (r *gormPostRepository) DeleteStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusDraft, cutoff).
		Delete(&BlogPost{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep stale drafts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type gormSourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates the gorm-backed feed source store.
func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &gormSourceRepository{db: db}
}

func (r *gormSourceRepository) FindActive(ctx context.Context) ([]FeedSource, error) {
	var sources []FeedSource
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("failed to load active feed sources: %w", err)
	}
	return sources, nil
}

func (r *gormSourceRepository) Upsert(ctx context.Context, source *FeedSource) error {
	var existing FeedSource
	err := r.db.WithContext(ctx).Where("url = ?", source.URL).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
			return fmt.Errorf("failed to create feed source %q: %w", source.URL, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up feed source %q: %w", source.URL, err)
	default:
		source.ID = existing.ID
		if err := r.db.WithContext(ctx).Save(source).Error; err != nil {
			return fmt.Errorf("failed to update feed source %q: %w", source.URL, err)
		}
		return nil
	}
}
