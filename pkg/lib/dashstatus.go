package lib

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/slok/dashstatus/internal/app/notify"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
	"github.com/slok/dashstatus/internal/presenter/fake"
	"github.com/slok/dashstatus/internal/presenter/terminal"
)

// Config configures the SDK feedback client.
//
// All fields are optional and have sensible defaults. An empty Config{} renders
// the feedback on stderr.
type Config struct {
	// Presenter selects where the feedback is rendered.
	// Default: [PresenterTerminal].
	Presenter PresenterType

	// Output is where the terminal presenter writes.
	// Default: os.Stderr.
	Output io.Writer

	// NoColor disables the terminal colors.
	NoColor bool

	// ShowLogs renders the log console lines on the terminal.
	ShowLogs bool

	// MaxLogEntries is the number of log console entries kept.
	// Default: 200.
	MaxLogEntries int

	// StatusDuration is the time the status cards stay visible.
	// Default: 5s.
	StatusDuration time.Duration

	// ToastDuration is the time the toasts stay visible.
	// Default: 3s.
	ToastDuration time.Duration

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Presenter == "" {
		c.Presenter = PresenterTerminal
	}

	if c.Output == nil {
		c.Output = os.Stderr
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Feedback is the main SDK entry point to give feedback to the user.
//
// Create it with [New] and release its resources with [Feedback.Close].
// A Feedback is safe for concurrent use.
type Feedback struct {
	fb     *feedback.System
	notify *notify.Service
}

// New creates a new SDK feedback client.
//
// The caller must call [Feedback.Close] when done to stop the pending timers.
func New(cfg Config) (*Feedback, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var p presenter.Presenter
	switch cfg.Presenter {
	case PresenterTerminal:
		tp, err := terminal.NewPresenter(terminal.PresenterConfig{
			Out:         cfg.Output,
			NoColor:     cfg.NoColor,
			HideConsole: !cfg.ShowLogs,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create presenter: %w", err)
		}
		p = tp
	case PresenterFake:
		p = fake.NewPresenter()
	default:
		return nil, fmt.Errorf("unsupported presenter type: %s: %w", cfg.Presenter, ErrNotValid)
	}

	fb, err := feedback.NewSystem(feedback.SystemConfig{
		Presenter:      p,
		MaxLogEntries:  cfg.MaxLogEntries,
		StatusDuration: cfg.StatusDuration,
		ToastDuration:  cfg.ToastDuration,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w: %w", err, model.ErrNotValid))
	}

	svc, err := notify.NewService(notify.ServiceConfig{Feedback: fb, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create notify service: %w", err)
	}

	return &Feedback{fb: fb, notify: svc}, nil
}

// Close stops every pending timer. After Close returns, the client must not be used.
func (f *Feedback) Close() error {
	f.fb.Stop()
	return nil
}

// StartOperation starts tracking an operation and shows its progress card at 0%.
//
// Starting an operation with the ID of an active one replaces it.
func (f *Feedback) StartOperation(ctx context.Context, id, title, message string) (*Operation, error) {
	op, err := f.fb.Tracker.Start(ctx, id, title, message)
	if err != nil {
		return nil, mapError(err)
	}

	o := fromInternalOperation(*op)
	return &o, nil
}

// UpdateOperation updates the progress (0-100) and, when not empty, the message
// of an active operation. Unknown operations are ignored.
func (f *Feedback) UpdateOperation(ctx context.Context, id string, progress float64, message string) {
	f.fb.Tracker.Update(ctx, id, progress, message)
}

// CompleteOperation finishes an active operation showing a success or error card.
// Unknown operations are ignored.
func (f *Feedback) CompleteOperation(ctx context.Context, id string, success bool, message string) {
	f.fb.Tracker.Complete(ctx, id, success, message)
}

// GetOperation returns an active operation.
func (f *Feedback) GetOperation(id string) (*Operation, error) {
	op, ok := f.fb.Tracker.Get(id)
	if !ok {
		return nil, fmt.Errorf("operation %q: %w", id, ErrNotFound)
	}

	o := fromInternalOperation(op)
	return &o, nil
}

// ActiveOperations returns the active operations sorted by start time.
func (f *Feedback) ActiveOperations() []Operation {
	ops := f.fb.Tracker.Active()
	res := make([]Operation, 0, len(ops))
	for _, op := range ops {
		res = append(res, fromInternalOperation(op))
	}
	return res
}

// Status shows a timed status card.
func (f *Feedback) Status(ctx context.Context, kind Kind, title, message string) error {
	return f.run(ctx, notify.Request{Target: notify.TargetStatus, Kind: string(kind), Title: title, Message: message})
}

// Toast shows a toast, loading toasts are not valid.
func (f *Feedback) Toast(ctx context.Context, kind Kind, message string) error {
	return f.run(ctx, notify.Request{Target: notify.TargetToast, Kind: string(kind), Message: message})
}

// Log appends a message to the log console.
func (f *Feedback) Log(ctx context.Context, level Level, message string) error {
	return f.run(ctx, notify.Request{Target: notify.TargetLog, Kind: string(level), Message: message})
}

// Logs returns the log console entries from oldest to newest.
func (f *Feedback) Logs() []LogEntry {
	return fromInternalLogEntries(f.fb.Console.Entries())
}

func (f *Feedback) run(ctx context.Context, req notify.Request) error {
	return mapError(f.notify.Run(ctx, req))
}
