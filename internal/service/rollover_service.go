package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/pkg/jobs"
)

// JobTypeRebaseYear re-bases nth events to the year carried in the payload.
const JobTypeRebaseYear = "rebase-year"

type yearRebaser interface {
	RebaseYear(ctx context.Context, req dto.RebaseYearRequest) (*dto.RebaseYearResult, error)
}

// RolloverConfig schedules the yearly re-base.
type RolloverConfig struct {
	Schedule   string
	Retries    int
	RetryDelay time.Duration
}

// RolloverService moves nth events to the current year on a cron schedule.
// Cron only enqueues; the re-base itself runs on a job queue with retries.
type RolloverService struct {
	rebaser  yearRebaser
	queue    *jobs.Queue
	cron     *cron.Cron
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewRolloverService validates the schedule and builds the service.
func NewRolloverService(rebaser yearRebaser, cfg RolloverConfig, logger *zap.Logger) (*RolloverService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 0 1 1 *"
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Second
	}

	svc := &RolloverService{
		rebaser:  rebaser,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: cfg.Schedule,
		logger:   logger,
		now:      time.Now,
	}
	svc.queue = jobs.NewQueue("rollover", nil, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: time.Minute,
		Logger:     logger,
	})
	svc.queue.Handle(JobTypeRebaseYear, svc.handleRebase)
	return svc, nil
}

// Start runs the queue and the cron scheduler until Stop.
func (s *RolloverService) Start(ctx context.Context) error {
	s.queue.Start(ctx)
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Trigger(); err != nil {
			s.logger.Error("failed to enqueue rollover", zap.Error(err))
		}
	}); err != nil {
		s.queue.Stop()
		return fmt.Errorf("schedule rollover: %w", err)
	}
	s.cron.Start()
	s.logger.Info("rollover scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop waits for a running cron callback, then drains the queue workers.
func (s *RolloverService) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

// Trigger enqueues a re-base to the current UTC year.
func (s *RolloverService) Trigger() error {
	year := s.now().UTC().Year()
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeRebaseYear,
		Payload: year,
	})
}

func (s *RolloverService) handleRebase(ctx context.Context, job jobs.Job) error {
	year, ok := job.Payload.(int)
	if !ok {
		return fmt.Errorf("rebase job %s: unexpected payload %T", job.ID, job.Payload)
	}
	result, err := s.rebaser.RebaseYear(ctx, dto.RebaseYearRequest{Year: year})
	if err != nil {
		return err
	}
	s.logger.Info("rollover completed", zap.String("job_id", job.ID), zap.Int("year", result.Year), zap.Int64("updated", result.Updated))
	return nil
}
