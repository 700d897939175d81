package feed

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"plant-care-api/internal/logger"
	"plant-care-api/internal/repository"
)

// Aggregator pulls the active RSS sources, stores entries deduplicated by
// exact link, and sweeps stale drafts afterwards.
type Aggregator struct {
	sources   repository.SourceRepository
	posts     repository.PostRepository
	parser    *gofeed.Parser
	retention time.Duration
}

// Summary reports what one aggregation run did.
type Summary struct {
	SourcesTotal  int   `json:"sources_total"`
	SourcesFailed int   `json:"sources_failed"`
	ItemsSeen     int   `json:"items_seen"`
	ItemsInserted int   `json:"items_inserted"`
	DraftsSwept   int64 `json:"drafts_swept"`
}

// NewAggregator creates the feed aggregator. retention is how long drafts
// survive before the sweep removes them.
func NewAggregator(sources repository.SourceRepository, posts repository.PostRepository, retention time.Duration) *Aggregator {
	return &Aggregator{
		sources:   sources,
		posts:     posts,
		parser:    gofeed.NewParser(),
		retention: retention,
	}
}

// Run executes one aggregation pass. A failure fetching one source is logged
// and the run continues with the remaining sources; there is no retry or
// backoff.
func (a *Aggregator) Run(ctx context.Context) (*Summary, error) {
	sources, err := a.sources.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{SourcesTotal: len(sources)}
	for _, source := range sources {
		if err := a.ingestSource(ctx, source, summary); err != nil {
			summary.SourcesFailed++
			logger.WithError(err).WithFields(logrus.Fields{
				"source": source.Name,
				"url":    source.URL,
			}).Error("Feed source failed, continuing with remaining sources")
		}
	}

	cutoff := time.Now().Add(-a.retention)
	swept, err := a.posts.DeleteStaleDrafts(ctx, cutoff)
	if err != nil {
		logger.WithError(err).Error("Stale draft sweep failed")
	} else {
		summary.DraftsSwept = swept
	}

	logger.WithFields(logrus.Fields{
		"sources":  summary.SourcesTotal,
		"failed":   summary.SourcesFailed,
		"seen":     summary.ItemsSeen,
		"inserted": summary.ItemsInserted,
		"swept":    summary.DraftsSwept,
	}).Info("Feed aggregation completed")
	return summary, nil
}

func (a *Aggregator) ingestSource(ctx context.Context, source repository.FeedSource, summary *Summary) error {
	parsed, err := a.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return err
	}

	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		summary.ItemsSeen++

		// Dedup by exact link, not content hash: two different URLs with
		// identical content are both stored.
		exists, err := a.posts.ExistsByLink(ctx, item.Link)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		post := &repository.BlogPost{
			Title:    item.Title,
			Content:  itemContent(item),
			Link:     item.Link,
			PubDate:  itemDate(item),
			Source:   source.Name,
			Category: source.Category,
			Status:   repository.StatusDraft,
		}
		if err := a.posts.Insert(ctx, post); err != nil {
			// A concurrent run may have inserted the same link between the
			// existence check and the insert; that is not a source failure.
			if err == repository.ErrDuplicateLink {
				continue
			}
			return err
		}
		summary.ItemsInserted++
	}
	return nil
}

func itemContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func itemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now()
}
