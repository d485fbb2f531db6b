package connection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/slok/dashstatus/internal/backend/backendmock"
	"github.com/slok/dashstatus/internal/connection"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/fake"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newSystem(t *testing.T) (*feedback.System, *fake.Presenter, *clocktesting.FakeClock) {
	t.Helper()
	p := fake.NewPresenter()
	clk := clocktesting.NewFakeClock(t0)
	sys, err := feedback.NewSystem(feedback.SystemConfig{Presenter: p, Clock: clk})
	require.NoError(t, err)
	t.Cleanup(sys.Stop)
	return sys, p, clk
}

func logMessages(sys *feedback.System) []string {
	msgs := []string{}
	for _, e := range sys.Console.Entries() {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

func TestMonitorCheck(t *testing.T) {
	tests := map[string]struct {
		mock     func(m *backendmock.MockClient)
		expConn  model.ConnectionStatus
		expCards []fake.Card
	}{
		"A healthy backend should set the indicator online.": {
			mock: func(m *backendmock.MockClient) {
				m.On("TestConnection", mock.Anything).Once().Return(true, nil)
			},
			expConn: model.ConnectionStatus{State: model.ConnectionStateOnline, Text: "Conectado", CheckedAt: t0},
			expCards: []fake.Card{
				{Handle: "status-1", Kind: model.StatusKindLoading, Title: "Testando Conexão", Message: "Verificando conectividade..."},
				{Handle: "status-2", Kind: model.StatusKindSuccess, Title: "Conexão OK", Message: "Servidor respondendo normalmente!"},
			},
		},

		"A backend answering with a failure should set the indicator offline.": {
			mock: func(m *backendmock.MockClient) {
				m.On("TestConnection", mock.Anything).Once().Return(false, nil)
			},
			expConn: model.ConnectionStatus{State: model.ConnectionStateOffline, Text: "Erro de conexão", CheckedAt: t0},
			expCards: []fake.Card{
				{Handle: "status-1", Kind: model.StatusKindLoading, Title: "Testando Conexão", Message: "Verificando conectividade..."},
				{Handle: "status-2", Kind: model.StatusKindError, Title: "Erro de Conexão", Message: "Servidor não está respondendo corretamente"},
			},
		},

		"An unreachable backend should set the indicator offline as unavailable.": {
			mock: func(m *backendmock.MockClient) {
				m.On("TestConnection", mock.Anything).Once().Return(false, errors.New("connection refused"))
			},
			expConn: model.ConnectionStatus{State: model.ConnectionStateOffline, Text: "Servidor indisponível", CheckedAt: t0},
			expCards: []fake.Card{
				{Handle: "status-1", Kind: model.StatusKindLoading, Title: "Testando Conexão", Message: "Verificando conectividade..."},
				{Handle: "status-2", Kind: model.StatusKindError, Title: "Servidor Indisponível", Message: "Não foi possível conectar ao servidor"},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			sys, p, _ := newSystem(t)
			mc := backendmock.NewMockClient(t)
			test.mock(mc)

			m, err := connection.NewMonitor(connection.MonitorConfig{Feedback: sys, Prober: mc})
			require.NoError(err)

			got := m.Check(context.TODO())
			assert.Equal(test.expConn, got)
			assert.Equal(test.expConn, p.Connection())
			assert.Equal(test.expConn, m.Status())
			assert.Equal(test.expCards, p.Cards())

			// First check never logs a transition.
			assert.Empty(logMessages(sys))
		})
	}
}

func TestMonitorCheckTransitions(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sys, _, _ := newSystem(t)
	mc := backendmock.NewMockClient(t)
	mc.On("TestConnection", mock.Anything).Once().Return(true, nil)
	mc.On("TestConnection", mock.Anything).Once().Return(true, nil)
	mc.On("TestConnection", mock.Anything).Once().Return(false, errors.New("timeout"))
	mc.On("TestConnection", mock.Anything).Once().Return(false, nil)
	mc.On("TestConnection", mock.Anything).Once().Return(true, nil)

	m, err := connection.NewMonitor(connection.MonitorConfig{Feedback: sys, Prober: mc})
	require.NoError(err)

	for i := 0; i < 5; i++ {
		m.Check(context.TODO())
	}

	entries := sys.Console.Entries()
	require.Len(entries, 2)
	assert.Equal(model.LogLevelError, entries[0].Level)
	assert.Equal("Conexão perdida", entries[0].Message)
	assert.Equal(model.LogLevelSuccess, entries[1].Level)
	assert.Equal("Conexão restaurada", entries[1].Message)
}

func TestMonitorHeartbeat(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sys, _, _ := newSystem(t)
	picks := []int{2, 0}
	m, err := connection.NewMonitor(connection.MonitorConfig{
		Feedback: sys,
		Prober:   backendmock.NewMockClient(t),
		RandIntN: func(n int) int {
			assert.Equal(4, n)
			p := picks[0]
			picks = picks[1:]
			return p
		},
	})
	require.NoError(err)

	m.Heartbeat(context.TODO())
	m.Heartbeat(context.TODO())

	assert.Equal([]string{"Monitorando métricas em tempo real", "Sistema funcionando normalmente"}, logMessages(sys))
}

func TestMonitorRun(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sys, p, clk := newSystem(t)
	mc := backendmock.NewMockClient(t)
	mc.On("TestConnection", mock.Anything).Return(true, nil)

	m, err := connection.NewMonitor(connection.MonitorConfig{
		Feedback:          sys,
		Prober:            mc,
		CheckInterval:     30 * time.Second,
		HeartbeatInterval: 60 * time.Second,
		RandIntN:          func(int) int { return 1 },
	})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- m.Run(ctx) }()

	// Initial check and both tasks registered.
	assert.Eventually(func() bool { return sys.Scheduler.Pending() == 2 }, time.Second, 5*time.Millisecond)
	conns := p.CallsOf(fake.MethodSetConnection)
	require.Len(conns, 2)
	assert.Equal(model.ConnectionStateLoading, conns[0].Conn.State)
	assert.Equal(model.ConnectionStateOnline, conns[1].Conn.State)

	clk.Step(30 * time.Second)
	assert.Eventually(func() bool { return len(p.CallsOf(fake.MethodSetConnection)) == 3 }, time.Second, 5*time.Millisecond)

	clk.Step(30 * time.Second)
	assert.Eventually(func() bool {
		msgs := logMessages(sys)
		return len(p.CallsOf(fake.MethodSetConnection)) == 4 && len(msgs) == 1 && msgs[0] == "Verificando conexão com GA4"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("monitor didn't stop")
	}
	assert.Eventually(func() bool { return sys.Scheduler.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewMonitorInvalidConfig(t *testing.T) {
	sys, _, _ := newSystem(t)

	_, err := connection.NewMonitor(connection.MonitorConfig{Feedback: sys})
	assert.Error(t, err)

	_, err = connection.NewMonitor(connection.MonitorConfig{Prober: backendmock.NewMockClient(t)})
	assert.Error(t, err)
}
