package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plant-care-api/internal/apperrors"
)

// Writer drafts and rewrites blog content through an OpenAI-compatible
// chat-completions endpoint.
type Writer interface {
	Draft(ctx context.Context, topic string) (*DraftedPost, error)
	Rewrite(ctx context.Context, title, content string) (string, error)
}

// DraftedPost is a generated article.
type DraftedPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type openAIWriter struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewOpenAIWriter creates a writer against the given endpoint and model.
func NewOpenAIWriter(endpoint, apiKey, model string) Writer {
	return &openAIWriter{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

const draftSystemPrompt = "You are a gardening writer producing practical, " +
	"plainspoken blog posts for home growers. Write in Markdown. Start with a " +
	"single H1 title line."

const rewriteSystemPrompt = "You are an editor improving aggregated gardening " +
	"articles. Rewrite the text so it is clear and well structured without " +
	"changing its factual content. Reply with the rewritten article only."

func (w *openAIWriter) Draft(ctx context.Context, topic string) (*DraftedPost, error) {
	content, err := w.complete(ctx, draftSystemPrompt,
		fmt.Sprintf("Write a blog post about: %s", topic), 0.7)
	if err != nil {
		return nil, err
	}

	title, body := splitTitle(content, topic)
	return &DraftedPost{Title: title, Content: body}, nil
}

func (w *openAIWriter) Rewrite(ctx context.Context, title, content string) (string, error) {
	return w.complete(ctx, rewriteSystemPrompt,
		fmt.Sprintf("Title: %s\n\n%s", title, content), 0.3)
}

func (w *openAIWriter) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: w.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build chat request", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", apperrors.NewProviderError("text provider unreachable",
			apperrors.ProviderNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewProviderError(
			fmt.Sprintf("text provider returned status %d", resp.StatusCode),
			apperrors.ProviderErrorStatus, nil)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewProviderError("malformed chat response",
			apperrors.ProviderEmptyPayload, err)
	}
	if parsed.Error != nil {
		return "", apperrors.NewProviderError(parsed.Error.Message,
			apperrors.ProviderErrorStatus, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.NewProviderError("chat response had no choices",
			apperrors.ProviderEmptyPayload, nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", apperrors.NewProviderError("chat response was empty",
			apperrors.ProviderEmptyPayload, nil)
	}
	return content, nil
}

// splitTitle peels an H1 title off a Markdown draft, falling back to the
// topic when the model ignored the format.
func splitTitle(markdown, fallback string) (string, string) {
	lines := strings.SplitN(markdown, "\n", 2)
	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "# ") {
		title := strings.TrimSpace(strings.TrimPrefix(first, "# "))
		body := ""
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}
		return title, body
	}
	return fallback, markdown
}
