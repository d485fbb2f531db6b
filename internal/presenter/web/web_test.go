package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/web"
	"github.com/slok/dashstatus/internal/schedule"
)

func newPresenter(t *testing.T) (*web.Presenter, *clocktesting.FakeClock) {
	t.Helper()

	clk := clocktesting.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	sched, err := schedule.NewScheduler(schedule.SchedulerConfig{Clock: clk})
	require.NoError(t, err)
	t.Cleanup(sched.Stop)

	p, err := web.NewPresenter(web.PresenterConfig{
		Scheduler:     sched,
		ConsoleReplay: 2,
		CheckOrigin:   func(*http.Request) bool { return true },
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p, clk
}

func dial(t *testing.T, p *web.Presenter) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) web.Event {
	t.Helper()

	var e web.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func readTypes(t *testing.T, conn *websocket.Conn, n int) []string {
	t.Helper()

	types := []string{}
	for i := 0; i < n; i++ {
		types = append(types, readEvent(t, conn).Type)
	}
	return types
}

func TestPresenterSnapshotReplay(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p, _ := newPresenter(t)
	ctx := context.TODO()

	zero := 0.0
	h := p.ShowStatus(ctx, model.StatusCard{Kind: model.StatusKindLoading, Title: "Gerando CSVs", Message: "Conectando ao GA4...", Progress: &zero})
	p.UpdateProgress(ctx, h, 50, "Metade")
	removed := p.ShowStatus(ctx, model.StatusCard{Kind: model.StatusKindInfo, Title: "Removed", Message: "x"})
	p.RemoveStatus(ctx, removed)
	p.SetConnection(ctx, model.ConnectionStatus{State: model.ConnectionStateOnline, Text: "Conectado"})
	p.SetControlBusy(ctx, model.ControlRefreshCSV, true)
	p.SetControlBusy(ctx, model.ControlSendReport, false)
	p.ShowGlobalProgress(ctx, true)
	for i := 1; i <= 3; i++ {
		p.AppendLog(ctx, model.LogEntry{Sequence: uint64(i), Level: model.LogLevelInfo, Message: "line"})
	}
	p.ToggleConsole(ctx)

	conn := dial(t, p)

	assert.Equal([]string{
		web.EventConnectionUpdate,
		web.EventProgressGlobal,
		web.EventControlBusy,
	}, readTypes(t, conn, 3))

	card := readEvent(t, conn)
	require.Equal(web.EventStatusShow, card.Type)
	require.NotNil(card.Card)
	assert.Equal(string(h), card.Card.Handle)
	assert.Equal("Metade", card.Card.Message)
	require.NotNil(card.Card.Progress)
	assert.Equal(50.0, *card.Card.Progress)

	// Only the latest entries are replayed.
	e1, e2 := readEvent(t, conn), readEvent(t, conn)
	assert.Equal(uint64(2), e1.Entry.Sequence)
	assert.Equal(uint64(3), e2.Entry.Sequence)

	toggle := readEvent(t, conn)
	assert.Equal(web.EventConsoleToggle, toggle.Type)
	assert.True(*toggle.Visible)

	// Live events after the replay.
	p.RemoveStatus(ctx, h)
	e := readEvent(t, conn)
	assert.Equal(web.EventStatusRemove, e.Type)
	assert.Equal(string(h), e.Handle)
	assert.Equal(1, p.Clients())
}

func TestPresenterLiveEvents(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p, _ := newPresenter(t)
	ctx := context.TODO()
	conn := dial(t, p)
	require.Eventually(func() bool { return p.Clients() == 1 }, time.Second, time.Millisecond)

	// Initial state.
	assert.Equal([]string{web.EventProgressGlobal, web.EventConsoleToggle}, readTypes(t, conn, 2))

	zero := 0.0
	h := p.ShowStatus(ctx, model.StatusCard{Kind: model.StatusKindLoading, Title: "Op", Message: "Msg", Progress: &zero})
	e := readEvent(t, conn)
	require.Equal(web.EventStatusShow, e.Type)
	assert.Equal("Op", e.Card.Title)
	assert.Equal("loading", e.Card.Kind)

	p.UpdateProgress(ctx, h, 33, "")
	e = readEvent(t, conn)
	require.Equal(web.EventStatusUpdate, e.Type)
	assert.Equal(33.0, *e.Progress)
	assert.Empty(e.Message)

	// Unknown handles are ignored.
	p.UpdateProgress(ctx, "unknown", 10, "x")
	p.RemoveStatus(ctx, "unknown")

	p.ShowToast(ctx, model.Toast{ID: "t1", Kind: model.StatusKindSuccess, Message: "Pronto", Duration: 3 * time.Second})
	e = readEvent(t, conn)
	require.Equal(web.EventToastShow, e.Type)
	assert.Equal("t1", e.Toast.ID)
	assert.Equal(int64(3000), e.Toast.DurationMS)

	p.SetControlBusy(ctx, model.ControlLoadFromCSV, true)
	e = readEvent(t, conn)
	require.Equal(web.EventControlBusy, e.Type)
	assert.Equal("load-from-csv", e.Control)
	assert.True(*e.Busy)
}

func TestPresenterTimedExpiration(t *testing.T) {
	assert := assert.New(t)

	p, clk := newPresenter(t)
	ctx := context.TODO()

	p.ShowStatus(ctx, model.StatusCard{Kind: model.StatusKindSuccess, Title: "Done", Message: "ok", Duration: 5 * time.Second})
	p.ShowToast(ctx, model.Toast{ID: "t1", Kind: model.StatusKindInfo, Message: "hi", Duration: 3 * time.Second})
	sticky := p.ShowStatus(ctx, model.StatusCard{Kind: model.StatusKindLoading, Title: "Sticky", Message: "..."})

	countType := func(typ string) int {
		n := 0
		for _, e := range p.Snapshot() {
			if e.Type == typ {
				n++
			}
		}
		return n
	}
	assert.Equal(2, countType(web.EventStatusShow))
	assert.Equal(1, countType(web.EventToastShow))

	assert.Eventually(func() bool { return clk.HasWaiters() }, time.Second, time.Millisecond)
	clk.Step(3 * time.Second)
	assert.Eventually(func() bool { return countType(web.EventToastShow) == 0 }, time.Second, time.Millisecond)
	assert.Equal(2, countType(web.EventStatusShow))

	clk.Step(2 * time.Second)
	assert.Eventually(func() bool { return countType(web.EventStatusShow) == 1 }, time.Second, time.Millisecond)

	for _, e := range p.Snapshot() {
		if e.Type == web.EventStatusShow {
			assert.Equal(string(sticky), e.Card.Handle)
		}
	}
}

func TestPresenterClientDisconnect(t *testing.T) {
	p, _ := newPresenter(t)
	conn := dial(t, p)
	assert.Eventually(t, func() bool { return p.Clients() == 1 }, time.Second, time.Millisecond)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return p.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestStaticHandler(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(web.StaticHandler())
	defer srv.Close()

	for _, path := range []string{"/", "/status.js", "/status.css"} {
		resp, err := http.Get(srv.URL + path)
		if assert.NoError(err) {
			assert.Equal(http.StatusOK, resp.StatusCode, path)
			resp.Body.Close()
		}
	}
}

func TestNewPresenterInvalidConfig(t *testing.T) {
	_, err := web.NewPresenter(web.PresenterConfig{})
	assert.Error(t, err)
}
