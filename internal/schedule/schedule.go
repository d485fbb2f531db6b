package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/log"
)

// Func is a scheduled task function.
type Func func(ctx context.Context)

// CancelFunc cancels a scheduled task, calling it more than once is safe.
type CancelFunc func()

// SchedulerConfig is the configuration for the scheduler.
type SchedulerConfig struct {
	Clock  clock.WithTicker
	Logger log.Logger
}

func (c *SchedulerConfig) defaults() error {
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "schedule.Scheduler"})

	return nil
}

// Scheduler runs delayed and periodic tasks. Every task can be cancelled
// independently, and stopping the scheduler cancels all of them.
//
// Tasks are driven by the configured clock so tests can use a fake clock
// and control the time.
type Scheduler struct {
	clock  clock.WithTicker
	logger log.Logger

	mu      sync.Mutex
	stopped bool
	nextID  int
	cancels map[int]context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler returns a new scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		cancels: map[int]context.CancelFunc{},
	}, nil
}

// Every runs f every interval until the returned cancel function is called,
// the context is done or the scheduler is stopped. The first run happens
// after the first interval.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, f Func) (CancelFunc, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	ctx, id, cancel, err := s.register(ctx)
	if err != nil {
		return nil, err
	}

	// Create the ticker before returning so the task is registered on the clock.
	ticker := s.clock.NewTicker(interval)
	s.logger.Debugf("Task %q scheduled every %s", name, interval)

	go func() {
		defer s.unregister(id)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Debugf("Task %q stopped", name)
				return
			case <-ticker.C():
				f(ctx)
			}
		}
	}()

	return CancelFunc(cancel), nil
}

// After runs f once after the delay, unless it's cancelled before.
func (s *Scheduler) After(ctx context.Context, name string, delay time.Duration, f Func) (CancelFunc, error) {
	ctx, id, cancel, err := s.register(ctx)
	if err != nil {
		return nil, err
	}

	timer := s.clock.NewTimer(delay)
	s.logger.Debugf("Task %q scheduled after %s", name, delay)

	go func() {
		defer s.unregister(id)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C():
			f(ctx)
		}
	}()

	return CancelFunc(cancel), nil
}

// Stop cancels all the tasks and waits until they have finished.
// Once stopped, the scheduler doesn't accept new tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Run blocks until the context is done and then stops the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	<-ctx.Done()
	s.Stop()
	return nil
}

// Pending returns the number of tasks that are still scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

func (s *Scheduler) register(parent context.Context) (context.Context, int, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, 0, nil, fmt.Errorf("scheduler is stopped")
	}

	ctx, cancel := context.WithCancel(parent)
	s.nextID++
	id := s.nextID
	s.cancels[id] = cancel
	s.wg.Add(1)

	return ctx, id, cancel, nil
}

func (s *Scheduler) unregister(id int) {
	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Done()
}
