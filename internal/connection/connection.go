package connection

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// DefaultCheckInterval is the default interval between connection checks.
	DefaultCheckInterval = 30 * time.Second
	// DefaultHeartbeatInterval is the default interval between heartbeat log lines.
	DefaultHeartbeatInterval = 60 * time.Second
)

// DefaultHeartbeatMessages are the messages randomly logged by the heartbeat.
var DefaultHeartbeatMessages = []string{
	"Sistema funcionando normalmente",
	"Verificando conexão com GA4",
	"Monitorando métricas em tempo real",
	"Cache atualizado automaticamente",
}

// Prober probes the backend connectivity.
type Prober interface {
	// TestConnection returns false when the backend answers with a failure and an error
	// when it can't be reached.
	TestConnection(ctx context.Context) (bool, error)
}

// MonitorConfig is the configuration of the connection monitor.
type MonitorConfig struct {
	Feedback          *feedback.System
	Prober            Prober
	CheckInterval     time.Duration
	HeartbeatInterval time.Duration
	HeartbeatMessages []string
	// RandIntN returns a random number in [0, n), used to pick the heartbeat messages.
	RandIntN func(n int) int
	Logger   log.Logger
}

func (c *MonitorConfig) defaults() error {
	if c.Feedback == nil {
		return fmt.Errorf("feedback system is required")
	}

	if c.Prober == nil {
		return fmt.Errorf("prober is required")
	}

	if c.CheckInterval < 0 || c.HeartbeatInterval < 0 {
		return fmt.Errorf("intervals can't be negative")
	}
	if c.CheckInterval == 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}

	if len(c.HeartbeatMessages) == 0 {
		c.HeartbeatMessages = DefaultHeartbeatMessages
	}

	if c.RandIntN == nil {
		c.RandIntN = rand.Intn
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "connection.Monitor"})

	return nil
}

// Monitor checks periodically the backend connectivity and keeps the connection
// indicator up to date.
type Monitor struct {
	fb                *feedback.System
	prober            Prober
	checkInterval     time.Duration
	heartbeatInterval time.Duration
	heartbeatMessages []string
	randIntN          func(n int) int
	logger            log.Logger

	mu   sync.Mutex
	last model.ConnectionStatus
}

// NewMonitor returns a new connection monitor.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Monitor{
		fb:                cfg.Feedback,
		prober:            cfg.Prober,
		checkInterval:     cfg.CheckInterval,
		heartbeatInterval: cfg.HeartbeatInterval,
		heartbeatMessages: cfg.HeartbeatMessages,
		randIntN:          cfg.RandIntN,
		logger:            cfg.Logger,
	}, nil
}

// Check probes the backend once, updates the indicator and shows the result card.
func (m *Monitor) Check(ctx context.Context) model.ConnectionStatus {
	m.fb.Status(ctx, model.StatusKindLoading, "Testando Conexão", "Verificando conectividade...")

	start := m.fb.Clock.Now()
	ok, err := m.prober.TestConnection(ctx)
	dur := m.fb.Clock.Since(start)

	status := model.ConnectionStatus{CheckedAt: m.fb.Clock.Now()}
	switch {
	case err != nil:
		m.logger.Warningf("Connection check failed: %s", err)
		status.State = model.ConnectionStateOffline
		status.Text = "Servidor indisponível"
		m.fb.Presenter.SetConnection(ctx, status)
		m.fb.Status(ctx, model.StatusKindError, "Servidor Indisponível", "Não foi possível conectar ao servidor")
	case !ok:
		status.State = model.ConnectionStateOffline
		status.Text = "Erro de conexão"
		m.fb.Presenter.SetConnection(ctx, status)
		m.fb.Status(ctx, model.StatusKindError, "Erro de Conexão", "Servidor não está respondendo corretamente")
	default:
		status.State = model.ConnectionStateOnline
		status.Text = "Conectado"
		m.fb.Presenter.SetConnection(ctx, status)
		m.fb.Status(ctx, model.StatusKindSuccess, "Conexão OK", "Servidor respondendo normalmente!")
	}
	m.fb.Metrics.ConnectionChecked(ctx, status.State == model.ConnectionStateOnline, dur)

	m.mu.Lock()
	prev := m.last.State
	m.last = status
	m.mu.Unlock()

	switch {
	case prev == model.ConnectionStateOffline && status.State == model.ConnectionStateOnline:
		m.fb.Log(ctx, model.LogLevelSuccess, "Conexão restaurada")
	case prev == model.ConnectionStateOnline && status.State == model.ConnectionStateOffline:
		m.fb.Log(ctx, model.LogLevelError, "Conexão perdida")
	}

	return status
}

// Heartbeat logs a random system message on the console.
func (m *Monitor) Heartbeat(ctx context.Context) {
	msg := m.heartbeatMessages[m.randIntN(len(m.heartbeatMessages))]
	m.fb.Log(ctx, model.LogLevelInfo, msg)
}

// Status returns the last checked connection status.
func (m *Monitor) Status() model.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Run checks the connection right away and then periodically, it also runs the
// heartbeat. It blocks until the context is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.fb.Presenter.SetConnection(ctx, model.ConnectionStatus{
		State: model.ConnectionStateLoading,
		Text:  "Verificando conexão...",
	})
	m.Check(ctx)

	stopCheck, err := m.fb.Scheduler.Every(ctx, "connection-check", m.checkInterval, func(ctx context.Context) { m.Check(ctx) })
	if err != nil {
		return fmt.Errorf("could not schedule connection checks: %w", err)
	}
	defer stopCheck()

	stopHeartbeat, err := m.fb.Scheduler.Every(ctx, "heartbeat", m.heartbeatInterval, m.Heartbeat)
	if err != nil {
		return fmt.Errorf("could not schedule heartbeat: %w", err)
	}
	defer stopHeartbeat()

	m.logger.Infof("Connection monitor running (check every %s, heartbeat every %s)", m.checkInterval, m.heartbeatInterval)
	<-ctx.Done()

	return nil
}
