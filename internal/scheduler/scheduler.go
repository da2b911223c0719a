// Package scheduler runs the recurring-task batch generation on a cron
// schedule.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single scheduled generation run.
const DefaultRunTimeout = time.Minute

// ErrEmptySchedule is returned when no cron expression is configured.
var ErrEmptySchedule = errors.New("empty cron schedule")

// Generator is the part of the task service the scheduler drives.
type Generator interface {
	GenerateRecurring(ctx context.Context) (*service.GenerationReport, error)
}

// Scheduler triggers recurring-task generation on a cron schedule.
// Runs never overlap: a tick that fires while the previous run is still
// in progress is skipped.
type Scheduler struct {
	cron       *cron.Cron
	generator  Generator
	runTimeout time.Duration
	ctx        context.Context
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// New creates a Scheduler using loc for evaluating schedules.
// If loc is nil, UTC is used. If logger is nil, a default logger will be used.
func New(generator Generator, loc *time.Location, logger *slog.Logger) *Scheduler {
	if generator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("generator cannot be nil for Scheduler")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cronLogger := &slogCronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		generator:  generator,
		runTimeout: DefaultRunTimeout,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger,
	}
}

// ScheduleRecurrence registers the generation run under spec, a standard
// five-field cron expression or a descriptor such as "@hourly" or "@every 10m".
func (s *Scheduler) ScheduleRecurrence(spec string) (cron.EntryID, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, ErrEmptySchedule
	}

	id, err := s.cron.AddFunc(spec, s.RunOnce)
	if err != nil {
		return 0, err
	}

	s.logger.Info("recurring generation scheduled", slog.String("schedule", spec))
	return id, nil
}

// RunOnce performs one generation run and logs its outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.generator.GenerateRecurring(ctx)
	if err != nil {
		s.logger.Error("scheduled recurring generation failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}

	s.logger.Info("scheduled recurring generation completed",
		slog.Int("examined", report.Examined),
		slog.Int("generated", len(report.Generated)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)),
		slog.Duration("duration", time.Since(start)))
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule, cancels a run in progress and waits for it to return.
func (s *Scheduler) Stop() {
	stopped := s.cron.Stop()
	s.cancelFunc()
	<-stopped.Done()
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
