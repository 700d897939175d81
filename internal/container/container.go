package container

import (
	"fmt"
	"net/http"

	"plant-care-api/internal/ai"
	"plant-care-api/internal/config"
	"plant-care-api/internal/feed"
	"plant-care-api/internal/identify"
	"plant-care-api/internal/logger"
	"plant-care-api/internal/repository"
	"plant-care-api/internal/scheduler"
	"plant-care-api/internal/service"
	"plant-care-api/internal/storage"
	"plant-care-api/internal/transport"
)

// Container holds all application dependencies.
type Container struct {
	config    *config.Config
	handler   http.Handler
	scheduler *scheduler.Scheduler
}

// NewContainer builds the dependency graph. Optional integrations (blob
// storage, the primary identification provider, the text provider) are left
// nil when their credentials are absent; their endpoints then report the
// feature as disabled instead of failing startup.
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := repository.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	analyses := repository.NewAnalysisRepository(db)
	posts := repository.NewPostRepository(db)
	sources := repository.NewSourceRepository(db)

	var blobs storage.BlobStore
	if cfg.BlobEnabled() {
		blobs, err = storage.NewAzureBlobStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainerName)
		if err != nil {
			return nil, fmt.Errorf("failed to init blob storage: %w", err)
		}
	} else {
		logger.Warn("Blob storage not configured; image uploads disabled")
	}

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)

	// Provider order is fixed: the external API first, the local classifier
	// as fallback. The fallback is always present.
	var providers []identify.Provider
	if cfg.PlantIDEnabled() {
		providers = append(providers,
			identify.NewPlantIDProvider(cfg.PlantIDEndpoint, cfg.PlantIDAPIKey, cfg.ImageFetchTimeout))
	} else {
		logger.Warn("Plant.id not configured; identification uses the local classifier only")
	}
	providers = append(providers, identify.NewLocalClassifier())
	chain := identify.NewChain(providers...)

	var writer ai.Writer
	if cfg.WriterEnabled() {
		writer = ai.NewOpenAIWriter(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn("Text provider not configured; content generation disabled")
	}

	analysis := service.NewAnalysisService(blobs, fetcher, analyses, chain)
	content := service.NewContentService(posts, writer)

	aggregator := feed.NewAggregator(sources, posts, cfg.DraftRetention)
	processor := feed.NewProcessor(posts, rewriterFor(writer))

	handler := transport.NewHandler(analysis, content, aggregator, processor, cfg)
	sched := scheduler.New(aggregator, processor, content, cfg.ContentTopics)

	return &Container{
		config:    cfg,
		handler:   handler,
		scheduler: sched,
	}, nil
}

// rewriterFor adapts the writer to the processor's narrower interface while
// keeping a nil writer a nil rewriter.
func rewriterFor(writer ai.Writer) feed.Rewriter {
	if writer == nil {
		return nil
	}
	return writer
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Scheduler returns the job scheduler.
func (c *Container) Scheduler() *scheduler.Scheduler {
	return c.scheduler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
