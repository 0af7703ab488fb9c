package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	defaultInterval    = 30 * time.Minute
	defaultStopTimeout = 30 * time.Second
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service schedules registered jobs with gocron and guards each run with a lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run schedules every job, runs each once immediately and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scheduler, err := gocron.NewScheduler(gocron.WithStopTimeout(defaultStopTimeout))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	for _, job := range s.registry.Jobs() {
		interval := s.intervalFor(job)
		_, err := scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(s.scheduled, ctx, job),
			gocron.WithName(job.Name()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return multierr.Append(fmt.Errorf("schedule %s: %w", job.Name(), err), scheduler.Shutdown())
		}
		jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "interval": interval.String()})
		s.logg.Info(jobCtx, "job scheduled")
	}

	scheduler.Start()
	s.logg.Info(ctx, "cron scheduler started")

	<-ctx.Done()
	s.logg.Info(ctx, "cron service context canceled")
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// RunOnce executes every registered job a single time. Failures do not stop later jobs.
func (s *Service) RunOnce(ctx context.Context) error {
	var errs error
	for _, job := range s.registry.Jobs() {
		errs = multierr.Append(errs, s.execute(ctx, job))
	}
	return errs
}

func (s *Service) scheduled(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	_ = s.execute(ctx, job)
}

func (s *Service) execute(ctx context.Context, job Job) error {
	name := job.Name()
	locked, err := s.lock.Acquire(ctx, name)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "job", name), "lock acquire failed", err)
		s.recordFailure(name)
		return fmt.Errorf("%s: lock acquire: %w", name, err)
	}
	if !locked {
		s.logg.Info(s.logg.WithField(ctx, "job", name), "another worker holds the job lock; skipping")
		s.recordSkipped(name)
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx, name); relErr != nil {
			s.logg.Error(s.logg.WithField(ctx, "job", name), "failed to release job lock", relErr)
		}
	}()
	return s.runJob(ctx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
	return nil
}

func (s *Service) intervalFor(job Job) time.Duration {
	if custom, ok := job.(IntervalJob); ok && custom.Interval() > 0 {
		return custom.Interval()
	}
	return s.interval
}

func (s *Service) recordFailure(job string) {
	s.metrics.IncFailure(job)
}

func (s *Service) recordSkipped(job string) {
	s.metrics.IncSkipped(job)
}
