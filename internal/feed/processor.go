package feed

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"plant-care-api/internal/logger"
	"plant-care-api/internal/repository"
)

// Rewriter rewrites cleaned post content through a generative text provider.
// Nil rewriter means the feature path is disabled (no API key configured).
type Rewriter interface {
	Rewrite(ctx context.Context, title, content string) (string, error)
}

// Processor cleans raw feed content, derives keywords and a short
// description, and marks posts processed.
type Processor struct {
	posts    repository.PostRepository
	rewriter Rewriter
}

// NewProcessor creates the content processor. rewriter may be nil.
func NewProcessor(posts repository.PostRepository, rewriter Rewriter) *Processor {
	return &Processor{posts: posts, rewriter: rewriter}
}

const descriptionLimit = 160

var whitespaceRun = regexp.MustCompile(`\s+`)

// Process cleans one post in place and persists it. When a rewriter is
// configured the cleaned content is passed through it first; a rewrite
// failure is logged and the cleaned original is kept.
func (p *Processor) Process(ctx context.Context, post *repository.BlogPost) error {
	cleaned := CleanHTML(post.Content)

	if p.rewriter != nil {
		rewritten, err := p.rewriter.Rewrite(ctx, post.Title, cleaned)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"post": post.ID,
			}).Warn("Content rewrite failed, keeping cleaned original")
		} else if rewritten != "" {
			cleaned = rewritten
		}
	}

	post.ProcessedContent = cleaned
	post.Description = Truncate(cleaned, descriptionLimit)
	post.Keywords = ExtractKeywords(cleaned)
	post.Processed = true

	return p.posts.Update(ctx, post)
}

// ProcessPending processes every stored post the content step has not touched
// yet. One post failing does not stop the batch.
func (p *Processor) ProcessPending(ctx context.Context) (int, error) {
	posts, err := p.posts.FindUnprocessed(ctx, 0)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range posts {
		if err := p.Process(ctx, &posts[i]); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"post": posts[i].ID,
			}).Error("Post processing failed")
			continue
		}
		processed++
	}
	return processed, nil
}

// CleanHTML strips tags and collapses whitespace from raw feed content.
func CleanHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// Fall back to whitespace cleanup of the raw string.
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
	}
	doc.Find("script, style").Remove()
	text := doc.Text()
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Truncate shortens s to at most limit runes, cutting at a word boundary
// where one exists.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// ExtractKeywords derives the naive keyword list: lowercase, strip
// punctuation, split on whitespace, drop stop-words and short tokens, dedupe
// preserving first-seen order.
func ExtractKeywords(text string) []string {
	normalized := punctuation.ReplaceAllString(strings.ToLower(text), "")

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	if len(keywords) > 20 {
		keywords = keywords[:20]
	}
	return keywords
}
