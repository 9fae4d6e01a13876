package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/config"
)

const (
	pollTimeout     = 5 * time.Minute
	reportTimeout   = 10 * time.Minute
	snapshotTimeout = 10 * time.Minute
)

// AlertPoller re-evaluates every farmer's advisory and sends critical alerts.
type AlertPoller interface {
	PollAlerts(ctx context.Context) (int, error)
}

// Reporter produces the periodic farmer reports.
type Reporter interface {
	SendWeeklyReports(ctx context.Context) (int, error)
	SaveDailySnapshots(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	poller   AlertPoller
	reporter Reporter
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// Overlapping runs of the same job are skipped.
func NewScheduler(cfg config.ReportingConfig, poller AlertPoller, reporter Reporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		poller:   poller,
		reporter: reporter,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name     string
		schedule string
		fn       func()
	}{
		{"weather_poll", s.cfg.WeatherPollCron, s.pollWeather},
		{"weekly_report", s.cfg.CronSchedule, s.sendWeeklyReports},
		{"daily_snapshot", s.cfg.SnapshotCron, s.saveSnapshots},
	}

	for _, job := range jobs {
		if job.schedule == "" {
			s.logger.Info("job disabled", zap.String("job", job.name))
			continue
		}
		if _, err := s.cron.AddFunc(job.schedule, job.fn); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.schedule, err)
		}
		s.logger.Info("job scheduled", zap.String("job", job.name), zap.String("schedule", job.schedule))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pollWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	alerted, err := s.poller.PollAlerts(ctx)
	if err != nil {
		s.logger.Error("weather poll failed", zap.Error(err))
		return
	}
	s.logger.Info("weather poll finished", zap.Int("alerted", alerted))
}

func (s *Scheduler) sendWeeklyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	sent, err := s.reporter.SendWeeklyReports(ctx)
	if err != nil {
		s.logger.Error("failed to send weekly reports", zap.Error(err))
		return
	}
	s.logger.Info("weekly reports finished", zap.Int("sent", sent))
}

func (s *Scheduler) saveSnapshots() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	saved, err := s.reporter.SaveDailySnapshots(ctx)
	if err != nil {
		s.logger.Error("failed to save daily snapshots", zap.Error(err))
		return
	}
	s.logger.Info("daily snapshots saved", zap.Int("saved", saved))
}
