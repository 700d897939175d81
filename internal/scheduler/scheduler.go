package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"plant-care-api/internal/feed"
	"plant-care-api/internal/logger"
	"plant-care-api/internal/service"
)

// Scheduler runs the recurring jobs: daily feed aggregation plus content
// processing, and weekly content planning.
type Scheduler struct {
	cron       *cron.Cron
	aggregator *feed.Aggregator
	processor  *feed.Processor
	content    service.ContentService
	topics     []string
	jobTimeout time.Duration
}

// New creates the scheduler. Jobs are registered by Start.
func New(aggregator *feed.Aggregator, processor *feed.Processor, content service.ContentService, topics []string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		aggregator: aggregator,
		processor:  processor,
		content:    content,
		topics:     topics,
		jobTimeout: 10 * time.Minute,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.runAggregation); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@weekly", s.runContentPlan); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) runAggregation() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if _, err := s.aggregator.Run(ctx); err != nil {
		logger.WithError(err).Error("Scheduled feed aggregation failed")
		return
	}
	processed, err := s.processor.ProcessPending(ctx)
	if err != nil {
		logger.WithError(err).Error("Scheduled content processing failed")
		return
	}
	logger.WithFields(logrus.Fields{"processed": processed}).Info("Scheduled aggregation run completed")
}

func (s *Scheduler) runContentPlan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	generated, err := s.content.PlanContent(ctx, s.topics)
	if err != nil {
		// The content feature may simply be unconfigured; keep it at warn.
		logger.WithError(err).Warn("Scheduled content plan skipped")
		return
	}
	logger.WithFields(logrus.Fields{"generated": generated}).Info("Scheduled content plan completed")
}
