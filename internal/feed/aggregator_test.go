package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"plant-care-api/internal/repository"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Garden Blog</title>
	<item>
		<title>Winter pruning</title>
		<link>https://garden.example/winter-pruning</link>
		<description>&lt;p&gt;Prune dormant trees in late winter.&lt;/p&gt;</description>
		<pubDate>Mon, 12 Jan 2026 10:00:00 GMT</pubDate>
	</item>
	<item>
		<title>Seed starting</title>
		<link>https://garden.example/seed-starting</link>
		<description>Start seeds indoors six weeks before last frost.</description>
	</item>
	<item>
		<title>No link item</title>
		<description>This one is skipped.</description>
	</item>
</channel>
</rss>`

func openFeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func addSource(t *testing.T, sources repository.SourceRepository, name, url string) {
	t.Helper()
	err := sources.Upsert(context.Background(), &repository.FeedSource{
		Name: name, URL: url, Active: true,
	})
	if err != nil {
		t.Fatalf("failed to add source: %v", err)
	}
}

func TestAggregator_InsertsAndDeduplicates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	db := openFeedTestDB(t)
	sources := repository.NewSourceRepository(db)
	posts := repository.NewPostRepository(db)
	addSource(t, sources, "garden", server.URL)

	aggregator := NewAggregator(sources, posts, 30*24*time.Hour)

	summary, err := aggregator.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ItemsSeen != 2 {
		t.Errorf("expected 2 linked items seen, got %d", summary.ItemsSeen)
	}
	if summary.ItemsInserted != 2 {
		t.Errorf("expected 2 items inserted, got %d", summary.ItemsInserted)
	}

	// A second run over identical feed content inserts nothing.
	summary, err = aggregator.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ItemsInserted != 0 {
		t.Errorf("expected 0 inserts on the second run, got %d", summary.ItemsInserted)
	}

	pending, err := posts.FindUnprocessed(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected exactly 2 stored posts, got %d", len(pending))
	}
	for _, post := range pending {
		if post.Status != repository.StatusDraft {
			t.Errorf("aggregated posts start as drafts, got %q", post.Status)
		}
		if post.Source != "garden" {
			t.Errorf("expected source garden, got %q", post.Source)
		}
	}
}

func TestAggregator_FailedSourceDoesNotStopOthers(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFixture))
	}))
	defer working.Close()

	db := openFeedTestDB(t)
	sources := repository.NewSourceRepository(db)
	posts := repository.NewPostRepository(db)
	addSource(t, sources, "broken", broken.URL)
	addSource(t, sources, "working", working.URL)

	summary, err := NewAggregator(sources, posts, time.Hour).Run(context.Background())
	if err != nil {
		t.Fatalf("a failed source must not fail the run: %v", err)
	}
	if summary.SourcesTotal != 2 {
		t.Errorf("expected 2 sources, got %d", summary.SourcesTotal)
	}
	if summary.SourcesFailed != 1 {
		t.Errorf("expected 1 failed source, got %d", summary.SourcesFailed)
	}
	if summary.ItemsInserted != 2 {
		t.Errorf("expected the working source's items stored, got %d", summary.ItemsInserted)
	}
}

func TestAggregator_SweepsStaleDrafts(t *testing.T) {
	db := openFeedTestDB(t)
	sources := repository.NewSourceRepository(db)
	posts := repository.NewPostRepository(db)

	stale := &repository.BlogPost{
		Title:     "stale",
		Link:      "https://garden.example/stale",
		Status:    repository.StatusDraft,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	if err := posts.Insert(context.Background(), stale); err != nil {
		t.Fatalf("failed to seed stale draft: %v", err)
	}

	summary, err := NewAggregator(sources, posts, 24*time.Hour).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.DraftsSwept != 1 {
		t.Errorf("expected 1 draft swept, got %d", summary.DraftsSwept)
	}
}
