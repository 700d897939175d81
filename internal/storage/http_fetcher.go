package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"plant-care-api/internal/apperrors"
)

// ImageFetcher retrieves raw image bytes from a URL.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPImageFetcher fetches images over HTTP. Failures are not retried; the
// caller surfaces them to the client.
type HTTPImageFetcher struct {
	client  *http.Client
	maxSize int64
}

// NewHTTPImageFetcher creates an HTTP image fetcher with the given timeout and
// response size cap.
func NewHTTPImageFetcher(timeout time.Duration, maxSize int64) ImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxSize: maxSize,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "PlantCare-API/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("image fetch returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxSize))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read image body", err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewNetworkError("image response was empty", nil)
	}
	return data, nil
}
