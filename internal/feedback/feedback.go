package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/console"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/operation"
	"github.com/slok/dashstatus/internal/presenter"
	"github.com/slok/dashstatus/internal/schedule"
)

// DefaultToastDuration is the time toasts stay visible.
const DefaultToastDuration = 3 * time.Second

// SystemConfig is the configuration of the feedback system.
type SystemConfig struct {
	Presenter presenter.Presenter
	// Clock drives the tracker durations, the console timestamps and the scheduled tasks.
	Clock clock.WithTicker
	// Scheduler runs the delayed and periodic tasks, optional. When missing
	// a new one is created using the clock.
	Scheduler      *schedule.Scheduler
	MaxLogEntries  int
	StatusDuration time.Duration
	ToastDuration  time.Duration
	Metrics        metrics.Recorder
	Logger         log.Logger
}

func (c *SystemConfig) defaults() error {
	if c.Presenter == nil {
		return fmt.Errorf("presenter is required")
	}

	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}

	if c.StatusDuration < 0 {
		return fmt.Errorf("status duration can't be negative")
	}
	if c.StatusDuration == 0 {
		c.StatusDuration = operation.DefaultStatusDuration
	}

	if c.ToastDuration < 0 {
		return fmt.Errorf("toast duration can't be negative")
	}
	if c.ToastDuration == 0 {
		c.ToastDuration = DefaultToastDuration
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// System is the dashboard feedback layer. It's built once and shared by every
// component that needs to tell the user what is happening.
type System struct {
	Presenter presenter.Presenter
	Console   *console.Console
	Tracker   *operation.Tracker
	Scheduler *schedule.Scheduler
	Clock     clock.WithTicker
	Metrics   metrics.Recorder

	statusDuration time.Duration
	toastDuration  time.Duration
	logger         log.Logger
}

// NewSystem returns a new feedback system.
func NewSystem(cfg SystemConfig) (*System, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cons, err := console.NewConsole(console.ConsoleConfig{
		Presenter:  cfg.Presenter,
		MaxEntries: cfg.MaxLogEntries,
		Clock:      cfg.Clock,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create console: %w", err)
	}

	tracker, err := operation.NewTracker(operation.TrackerConfig{
		Presenter:      cfg.Presenter,
		LogSink:        cons,
		StatusDuration: cfg.StatusDuration,
		Clock:          cfg.Clock,
		Metrics:        cfg.Metrics,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create operation tracker: %w", err)
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched, err = schedule.NewScheduler(schedule.SchedulerConfig{
			Clock:  cfg.Clock,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create scheduler: %w", err)
		}
	}

	return &System{
		Presenter:      cfg.Presenter,
		Console:        cons,
		Tracker:        tracker,
		Scheduler:      sched,
		Clock:          cfg.Clock,
		Metrics:        cfg.Metrics,
		statusDuration: cfg.StatusDuration,
		toastDuration:  cfg.ToastDuration,
		logger:         cfg.Logger.WithValues(log.Kv{"svc": "feedback.System"}),
	}, nil
}

// Log appends a message to the log console.
func (s *System) Log(ctx context.Context, level model.LogLevel, message string) {
	s.Console.Log(ctx, level, message)
}

// Status shows a status card that is dismissed after the default status duration.
func (s *System) Status(ctx context.Context, kind model.StatusKind, title, message string) model.StatusHandle {
	return s.Presenter.ShowStatus(ctx, model.StatusCard{
		Kind:     kind,
		Title:    title,
		Message:  message,
		Duration: s.statusDuration,
	})
}

// Toast shows a toast that is dismissed after the default toast duration.
func (s *System) Toast(ctx context.Context, kind model.StatusKind, message string) model.Toast {
	t := model.Toast{
		ID:       ulid.Make().String(),
		Kind:     kind,
		Message:  message,
		Duration: s.toastDuration,
	}
	s.Presenter.ShowToast(ctx, t)
	return t
}

// Busy marks a control as busy and returns the function that releases it.
func (s *System) Busy(ctx context.Context, c model.Control) func() {
	s.Presenter.SetControlBusy(ctx, c, true)
	return func() { s.Presenter.SetControlBusy(ctx, c, false) }
}

// Stop stops every scheduled task.
func (s *System) Stop() {
	s.Scheduler.Stop()
}
