package feedback_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/fake"
)

func TestNewSystem(t *testing.T) {
	tests := map[string]struct {
		config feedback.SystemConfig
		expErr bool
	}{
		"A valid config should create the system.": {
			config: feedback.SystemConfig{Presenter: fake.NewPresenter()},
		},

		"A missing presenter should fail.": {
			config: feedback.SystemConfig{},
			expErr: true,
		},

		"A negative toast duration should fail.": {
			config: feedback.SystemConfig{Presenter: fake.NewPresenter(), ToastDuration: -1},
			expErr: true,
		},

		"A negative console size should fail.": {
			config: feedback.SystemConfig{Presenter: fake.NewPresenter(), MaxLogEntries: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			sys, err := feedback.NewSystem(test.config)
			if test.expErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.NotNil(sys.Tracker)
			require.NotNil(sys.Console)
			require.NotNil(sys.Scheduler)
		})
	}
}

func TestSystemDirectCalls(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p := fake.NewPresenter()
	clk := clocktesting.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	sys, err := feedback.NewSystem(feedback.SystemConfig{
		Presenter:      p,
		Clock:          clk,
		StatusDuration: 2 * time.Second,
	})
	require.NoError(err)
	ctx := context.TODO()

	h := sys.Status(ctx, model.StatusKindWarning, "Cache", "Cache expirado")
	assert.Equal(model.StatusHandle("status-1"), h)
	calls := p.CallsOf(fake.MethodShowStatus)
	require.Len(calls, 1)
	assert.Equal(model.StatusCard{Kind: model.StatusKindWarning, Title: "Cache", Message: "Cache expirado", Duration: 2 * time.Second}, calls[0].Card)

	toast := sys.Toast(ctx, model.StatusKindSuccess, "Pronto")
	assert.NotEmpty(toast.ID)
	assert.Equal(feedback.DefaultToastDuration, toast.Duration)
	require.Len(p.CallsOf(fake.MethodShowToast), 1)
	assert.Equal(toast, p.CallsOf(fake.MethodShowToast)[0].Toast)

	release := sys.Busy(ctx, model.ControlRefreshCSV)
	assert.True(p.Busy(model.ControlRefreshCSV))
	release()
	assert.False(p.Busy(model.ControlRefreshCSV))

	sys.Log(ctx, model.LogLevelWarning, "Atenção")
	entries := sys.Console.Entries()
	require.Len(entries, 1)
	assert.Equal(model.LogEntry{Sequence: 1, Level: model.LogLevelWarning, Message: "Atenção", Timestamp: clk.Now()}, entries[0])
	assert.Len(p.CallsOf(fake.MethodAppendLog), 1)
}

func TestSystemOperationLogsGoToConsole(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p := fake.NewPresenter()
	sys, err := feedback.NewSystem(feedback.SystemConfig{Presenter: p})
	require.NoError(err)

	_, err = sys.Tracker.Start(context.TODO(), "op", "Op", "Msg")
	require.NoError(err)

	entries := sys.Console.Entries()
	require.Len(entries, 1)
	assert.Equal("Iniciando operação: Op", entries[0].Message)
}
