package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"plant-care-api/internal/ai"
	"plant-care-api/internal/apperrors"
	"plant-care-api/internal/logger"
	"plant-care-api/internal/repository"
)

// ContentService generates and enhances blog posts through the configured
// text provider.
type ContentService interface {
	// Generate drafts a post about the topic and stores it.
	Generate(ctx context.Context, topic string) (*repository.BlogPost, error)

	// Enhance rewrites the stored post's content and marks it processed.
	Enhance(ctx context.Context, postID uint) (*repository.BlogPost, error)

	// PlanContent drafts one post per configured topic; used by the weekly
	// scheduled job.
	PlanContent(ctx context.Context, topics []string) (int, error)
}

type contentService struct {
	posts  repository.PostRepository
	writer ai.Writer // nil when no API key is configured
}

// NewContentService creates the content service. writer may be nil; every
// operation then reports the feature as disabled.
func NewContentService(posts repository.PostRepository, writer ai.Writer) ContentService {
	return &contentService{posts: posts, writer: writer}
}

func (s *contentService) Generate(ctx context.Context, topic string) (*repository.BlogPost, error) {
	if s.writer == nil {
		return nil, apperrors.NewDisabledError("content generation is not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperrors.NewValidationError("topic is required", nil)
	}

	draft, err := s.writer.Draft(ctx, topic)
	if err != nil {
		return nil, err
	}

	post := &repository.BlogPost{
		Title:   draft.Title,
		Content: draft.Content,
		// Generated posts get a synthetic link so the dedup key stays unique.
		Link:    fmt.Sprintf("generated://%d-%s", time.Now().UnixNano(), slugify(topic)),
		PubDate: time.Now().UTC(),
		Source:  "generator",
		Status:  repository.StatusDraft,
	}
	if err := s.posts.Insert(ctx, post); err != nil {
		return nil, apperrors.NewInternalError("failed to store generated post", err)
	}

	logger.WithFields(logrus.Fields{"topic": topic, "post": post.ID}).Info("Blog post generated")
	return post, nil
}

func (s *contentService) Enhance(ctx context.Context, postID uint) (*repository.BlogPost, error) {
	if s.writer == nil {
		return nil, apperrors.NewDisabledError("content enhancement is not configured")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperrors.NewNotFoundError("post not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load post", err)
	}

	rewritten, err := s.writer.Rewrite(ctx, post.Title, post.Content)
	if err != nil {
		return nil, err
	}

	post.ProcessedContent = rewritten
	post.Processed = true
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, apperrors.NewInternalError("failed to store enhanced post", err)
	}

	logger.WithFields(logrus.Fields{"post": post.ID}).Info("Blog post enhanced")
	return post, nil
}

func (s *contentService) PlanContent(ctx context.Context, topics []string) (int, error) {
	if s.writer == nil {
		return 0, apperrors.NewDisabledError("content generation is not configured")
	}

	generated := 0
	for _, topic := range topics {
		if _, err := s.Generate(ctx, topic); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"topic": topic,
			}).Error("Content plan topic failed, continuing")
			continue
		}
		generated++
	}
	return generated, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
