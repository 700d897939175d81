package service

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"plant-care-api/internal/apperrors"
	"plant-care-api/internal/health"
	"plant-care-api/internal/identify"
	"plant-care-api/internal/logger"
	"plant-care-api/internal/repository"
	"plant-care-api/internal/storage"
)

// AnalysisService runs the identification pipeline: upload, cache check,
// provider chain, persist.
type AnalysisService interface {
	// AnalyzeUpload compresses and uploads the image, then analyzes the
	// resulting URL.
	AnalyzeUpload(ctx context.Context, r io.Reader) (*repository.AnalysisRecord, error)

	// AnalyzeURL returns the cached result for the URL when one exists;
	// otherwise it fetches the image, runs the provider chain and persists.
	AnalyzeURL(ctx context.Context, imageURL string) (*repository.AnalysisRecord, error)
}

type analysisService struct {
	blobs    storage.BlobStore // nil when uploads are not configured
	fetcher  storage.ImageFetcher
	analyses repository.AnalysisRepository
	chain    *identify.Chain
}

// NewAnalysisService wires the pipeline. blobs may be nil; the upload path
// then reports the feature as disabled.
func NewAnalysisService(
	blobs storage.BlobStore,
	fetcher storage.ImageFetcher,
	analyses repository.AnalysisRepository,
	chain *identify.Chain,
) AnalysisService {
	return &analysisService{
		blobs:    blobs,
		fetcher:  fetcher,
		analyses: analyses,
		chain:    chain,
	}
}

func (s *analysisService) AnalyzeUpload(ctx context.Context, r io.Reader) (*repository.AnalysisRecord, error) {
	if s.blobs == nil {
		return nil, apperrors.NewDisabledError("image upload storage is not configured")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded image", err)
	}

	compressed, err := storage.Compress(data)
	if err != nil {
		return nil, apperrors.NewValidationError("uploaded file is not a supported image", err)
	}

	uploaded, err := s.blobs.Upload(ctx, compressed)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store uploaded image", err)
	}

	// The blob name embeds a timestamp and random token, so this URL is
	// always fresh: the cache check below will miss and compute once.
	return s.analyze(ctx, uploaded.URL, identify.Input{
		Bytes: compressed.Data,
		Image: compressed.Image,
	})
}

func (s *analysisService) AnalyzeURL(ctx context.Context, imageURL string) (*repository.AnalysisRecord, error) {
	if err := validateImageURL(imageURL); err != nil {
		return nil, err
	}

	// Cache check before any fetch or provider call.
	if cached, err := s.analyses.FindByImageURL(ctx, imageURL); err != nil {
		return nil, apperrors.NewInternalError("analysis cache lookup failed", err)
	} else if cached != nil {
		logger.WithFields(logrus.Fields{"image_url": imageURL}).Debug("Analysis cache hit")
		return cached, nil
	}

	data, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	img, err := storage.Decode(data)
	if err != nil {
		return nil, apperrors.NewProcessingError("fetched data is not a supported image", err)
	}

	return s.analyze(ctx, imageURL, identify.Input{Bytes: data, Image: img})
}

// analyze runs the provider chain for a cache miss and persists the result.
// Nothing is cached when every provider fails.
func (s *analysisService) analyze(ctx context.Context, imageURL string, in identify.Input) (*repository.AnalysisRecord, error) {
	// A near-simultaneous analysis of the same URL may also reach this
	// point; the duplicate-work window is accepted, the unique index keeps
	// the store at one row.
	if cached, err := s.analyses.FindByImageURL(ctx, imageURL); err == nil && cached != nil {
		return cached, nil
	}

	result, err := s.chain.Identify(ctx, in)
	if err != nil {
		return nil, apperrors.NewProviderError("image identification failed",
			apperrors.ProviderEmptyPayload, err)
	}

	record := &repository.AnalysisRecord{
		ImageURL:  imageURL,
		Timestamp: time.Now().UTC(),
		Methods:   repository.StringList{result.Source},
	}
	if result.Source == "plant-id" {
		record.PlantID = result
	} else {
		record.Classifier = result
	}

	// Providers without their own health assessment get the pixel heuristic.
	if result.Health != nil {
		record.Health = result.Health
	} else if in.Image != nil {
		assessment := health.Assess(in.Image)
		record.Health = &assessment
	}

	if err := s.analyses.Save(ctx, record); err != nil {
		return nil, apperrors.NewInternalError("failed to persist analysis result", err)
	}

	logger.WithFields(logrus.Fields{
		"image_url": imageURL,
		"source":    result.Source,
		"name":      result.Name,
	}).Info("Image analysis completed")
	return record, nil
}

func validateImageURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("invalid image URL", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError("image URL must be http or https", nil)
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("image URL must have a host", nil)
	}
	return nil
}
