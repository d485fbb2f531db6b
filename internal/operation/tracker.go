package operation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
)

const (
	// DefaultStatusDuration is the time terminal status cards stay visible.
	DefaultStatusDuration = 5 * time.Second

	titleSuccessSuffix = " - Concluído!"
	titleErrorSuffix   = " - Erro!"
)

// LogSink receives the user facing log lines of the operations.
type LogSink interface {
	Log(ctx context.Context, level model.LogLevel, message string)
}

// TrackerConfig is the configuration for the operation tracker.
type TrackerConfig struct {
	Presenter presenter.StatusPresenter
	LogSink   LogSink
	// StatusDuration is how long the terminal cards stay visible.
	StatusDuration time.Duration
	Clock          clock.PassiveClock
	Metrics        metrics.Recorder
	Logger         log.Logger
}

func (c *TrackerConfig) defaults() error {
	if c.Presenter == nil {
		return fmt.Errorf("presenter is required")
	}

	if c.LogSink == nil {
		return fmt.Errorf("log sink is required")
	}

	if c.StatusDuration == 0 {
		c.StatusDuration = DefaultStatusDuration
	}

	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "operation.Tracker"})

	return nil
}

// Tracker tracks named long-running actions and coordinates their status cards
// without owning the rendering.
//
// Lifecycle calls on unknown operations are ignored, this makes late updates
// (e.g. a timer firing after the request finished) harmless.
type Tracker struct {
	presenter      presenter.StatusPresenter
	sink           LogSink
	statusDuration time.Duration
	clock          clock.PassiveClock
	metrics        metrics.Recorder
	logger         log.Logger

	mu     sync.Mutex
	active map[string]*model.Operation
}

// NewTracker returns a new operation tracker.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Tracker{
		presenter:      cfg.Presenter,
		sink:           cfg.LogSink,
		statusDuration: cfg.StatusDuration,
		clock:          cfg.Clock,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		active:         map[string]*model.Operation{},
	}, nil
}

// Start starts tracking an operation, showing a progress card at 0%.
//
// Starting an ID that is already active replaces the tracked entry, the previous
// progress card is left as is and never referenced again by the tracker.
func (t *Tracker) Start(ctx context.Context, id, title, message string) (*model.Operation, error) {
	op := &model.Operation{ID: id, Title: title, Message: message}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.active[id]; ok {
		t.logger.Warningf("Operation %q started while active, status card %s is orphaned", id, prev.Handle)
	}

	zero := 0.0
	op.Handle = t.presenter.ShowStatus(ctx, model.StatusCard{
		Kind:     model.StatusKindLoading,
		Title:    title,
		Message:  message,
		Progress: &zero,
	})
	op.StartedAt = t.clock.Now()
	t.active[id] = op

	t.sink.Log(ctx, model.LogLevelInfo, fmt.Sprintf("Iniciando operação: %s", title))
	t.metrics.OperationStarted(ctx, id)
	t.logger.Debugf("Operation %q started", id)

	return op, nil
}

// Update updates the progress, and optionally the message, of the operation card.
// The operation stored message is not modified.
func (t *Tracker) Update(ctx context.Context, id string, progress float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.active[id]
	if !ok {
		t.logger.Debugf("Ignoring update of unknown operation %q", id)
		return
	}

	t.presenter.UpdateProgress(ctx, op.Handle, progress, message)

	logMsg := message
	if logMsg == "" {
		logMsg = op.Message
	}
	t.sink.Log(ctx, model.LogLevelInfo, fmt.Sprintf("%s: %s%% - %s", op.Title, formatProgress(progress), logMsg))
}

// Complete finishes an operation: it removes its progress card, renders the
// terminal success or error card and stops tracking it.
func (t *Tracker) Complete(ctx context.Context, id string, success bool, finalMessage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.active[id]
	if !ok {
		t.logger.Debugf("Ignoring completion of unknown operation %q", id)
		return
	}

	elapsed := t.clock.Since(op.StartedAt)
	elapsedTxt := model.FormatElapsed(elapsed)

	if op.Handle != "" {
		t.presenter.RemoveStatus(ctx, op.Handle)
	}

	card := model.StatusCard{Duration: t.statusDuration, Message: finalMessage}
	var level model.LogLevel
	var logMsg string
	if success {
		card.Kind = model.StatusKindSuccess
		card.Title = op.Title + titleSuccessSuffix
		if card.Message == "" {
			card.Message = fmt.Sprintf("Operação finalizada em %s", elapsedTxt)
		}
		level = model.LogLevelSuccess
		logMsg = fmt.Sprintf("%s concluída em %s", op.Title, elapsedTxt)
	} else {
		card.Kind = model.StatusKindError
		card.Title = op.Title + titleErrorSuffix
		if card.Message == "" {
			card.Message = fmt.Sprintf("Operação falhou após %s", elapsedTxt)
		}
		level = model.LogLevelError
		logMsg = fmt.Sprintf("%s falhou após %s", op.Title, elapsedTxt)
	}

	t.presenter.ShowStatus(ctx, card)
	t.sink.Log(ctx, level, logMsg)
	delete(t.active, id)

	t.metrics.OperationCompleted(ctx, id, success, elapsed)
	t.logger.Debugf("Operation %q completed (success: %t, elapsed: %s)", id, success, elapsedTxt)
}

// Get returns a copy of an active operation.
func (t *Tracker) Get(id string) (model.Operation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.active[id]
	if !ok {
		return model.Operation{}, false
	}
	return *op, true
}

// Active returns a copy of the active operations sorted by start time.
func (t *Tracker) Active() []model.Operation {
	t.mu.Lock()
	defer t.mu.Unlock()

	ops := make([]model.Operation, 0, len(t.active))
	for _, op := range t.active {
		ops = append(ops, *op)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].StartedAt.Equal(ops[j].StartedAt) {
			return ops[i].ID < ops[j].ID
		}
		return ops[i].StartedAt.Before(ops[j].StartedAt)
	})

	return ops
}

// formatProgress formats the progress without trailing zeros (50 instead of 50.000000).
func formatProgress(p float64) string {
	return fmt.Sprintf("%g", p)
}
