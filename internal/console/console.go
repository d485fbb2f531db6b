package console

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
)

// DefaultMaxEntries is the default number of entries kept by the console.
const DefaultMaxEntries = 200

// ConsoleConfig is the configuration for the log console.
type ConsoleConfig struct {
	// Presenter receives every appended entry, optional.
	Presenter  presenter.ConsolePresenter
	MaxEntries int
	Clock      clock.PassiveClock
	Logger     log.Logger
}

func (c *ConsoleConfig) defaults() error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries can't be negative")
	}

	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}

	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "console.Console"})

	return nil
}

// Console is the append-only timestamped log feed shown to the user. Only the
// latest entries are kept, older ones are discarded.
type Console struct {
	presenter presenter.ConsolePresenter
	clock     clock.PassiveClock
	logger    log.Logger

	mu      sync.Mutex
	entries []model.LogEntry
	next    int
	full    bool
	seq     uint64
}

// NewConsole returns a new log console.
func NewConsole(cfg ConsoleConfig) (*Console, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Console{
		presenter: cfg.Presenter,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		entries:   make([]model.LogEntry, cfg.MaxEntries),
	}, nil
}

// Log appends a new entry to the console.
func (c *Console) Log(ctx context.Context, level model.LogLevel, message string) {
	c.mu.Lock()
	c.seq++
	e := model.LogEntry{
		Sequence:  c.seq,
		Level:     level,
		Message:   message,
		Timestamp: c.clock.Now(),
	}
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	if c.next == 0 {
		c.full = true
	}
	c.mu.Unlock()

	c.logger.Debugf("[%s] %s", level, message)

	if c.presenter != nil {
		c.presenter.AppendLog(ctx, e)
	}
}

// Toggle toggles the console visibility.
func (c *Console) Toggle(ctx context.Context) {
	if c.presenter != nil {
		c.presenter.ToggleConsole(ctx)
	}
}

// Entries returns the kept entries from oldest to newest.
func (c *Console) Entries() []model.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.full {
		return append([]model.LogEntry{}, c.entries[:c.next]...)
	}

	entries := make([]model.LogEntry, 0, len(c.entries))
	entries = append(entries, c.entries[c.next:]...)
	entries = append(entries, c.entries[:c.next]...)
	return entries
}
