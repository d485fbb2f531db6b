package console_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/slok/dashstatus/internal/console"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/fake"
)

func TestConsoleLog(t *testing.T) {
	t0 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		maxEntries int
		logs       []string
		expEntries []string
	}{
		"Without logs the console should be empty.": {
			maxEntries: 3,
			expEntries: []string{},
		},
		"Logs below the limit should be kept in order.": {
			maxEntries: 3,
			logs:       []string{"a", "b"},
			expEntries: []string{"a", "b"},
		},
		"Logs on the limit should be kept in order.": {
			maxEntries: 3,
			logs:       []string{"a", "b", "c"},
			expEntries: []string{"a", "b", "c"},
		},
		"Logs above the limit should discard the oldest ones.": {
			maxEntries: 3,
			logs:       []string{"a", "b", "c", "d", "e"},
			expEntries: []string{"c", "d", "e"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			clk := testingclock.NewFakeClock(t0)
			p := fake.NewPresenter()
			c, err := console.NewConsole(console.ConsoleConfig{
				Presenter:  p,
				MaxEntries: test.maxEntries,
				Clock:      clk,
			})
			require.NoError(err)

			for _, l := range test.logs {
				c.Log(context.Background(), model.LogLevelInfo, l)
				clk.Step(time.Second)
			}

			gotMsgs := []string{}
			for _, e := range c.Entries() {
				gotMsgs = append(gotMsgs, e.Message)
			}
			assert.Equal(test.expEntries, gotMsgs)

			// Every entry reaches the presenter even if discarded later.
			assert.Len(p.CallsOf(fake.MethodAppendLog), len(test.logs))
		})
	}
}

func TestConsoleEntryData(t *testing.T) {
	t0 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	clk := testingclock.NewFakeClock(t0)
	c, err := console.NewConsole(console.ConsoleConfig{Clock: clk})
	require.NoError(t, err)

	c.Log(context.Background(), model.LogLevelError, "Conexão perdida")

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.LogEntry{
		Sequence:  1,
		Level:     model.LogLevelError,
		Message:   "Conexão perdida",
		Timestamp: t0,
	}, entries[0])
}

func TestConsoleToggle(t *testing.T) {
	p := fake.NewPresenter()
	c, err := console.NewConsole(console.ConsoleConfig{Presenter: p})
	require.NoError(t, err)

	c.Toggle(context.Background())
	assert.True(t, p.ConsoleVisible())
	c.Toggle(context.Background())
	assert.False(t, p.ConsoleVisible())
}

func TestConsoleInvalidConfig(t *testing.T) {
	_, err := console.NewConsole(console.ConsoleConfig{MaxEntries: -1})
	assert.Error(t, err)
}
