package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
	"github.com/slok/dashstatus/internal/schedule"
)

const (
	defaultConsoleReplay = 100
	defaultSendBuffer    = 64
	defaultWriteTimeout  = 10 * time.Second
)

// Scheduler schedules the expiration of timed cards and toasts.
type Scheduler interface {
	After(ctx context.Context, name string, delay time.Duration, f schedule.Func) (schedule.CancelFunc, error)
}

// PresenterConfig is the configuration of the web presenter.
type PresenterConfig struct {
	Scheduler Scheduler
	// ConsoleReplay is the number of console entries replayed to new browsers.
	ConsoleReplay int
	// SendBuffer is the number of events queued per browser, slow browsers
	// that fill it are disconnected.
	SendBuffer   int
	WriteTimeout time.Duration
	// CheckOrigin checks the websocket upgrade origin, same origin by default.
	CheckOrigin func(r *http.Request) bool
	Logger      log.Logger
}

func (c *PresenterConfig) defaults() error {
	if c.Scheduler == nil {
		return fmt.Errorf("scheduler is required")
	}

	if c.ConsoleReplay < 0 || c.SendBuffer < 0 {
		return fmt.Errorf("console replay and send buffer can't be negative")
	}
	if c.ConsoleReplay == 0 {
		c.ConsoleReplay = defaultConsoleReplay
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = defaultSendBuffer
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultWriteTimeout
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "web.Presenter"})

	return nil
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type cardState struct {
	handle model.StatusHandle
	card   model.StatusCard
	expire schedule.CancelFunc
}

type toastState struct {
	toast  model.Toast
	expire schedule.CancelFunc
}

// Presenter pushes the dashboard feedback to the connected browsers over websockets.
//
// It keeps the visible state (cards, toasts, indicators and the latest console
// entries) so browsers connecting later receive it before any new event.
type Presenter struct {
	sched         Scheduler
	consoleReplay int
	sendBuffer    int
	writeTimeout  time.Duration
	upgrader      websocket.Upgrader
	logger        log.Logger
	// ctx is used for the expiration tasks, these must outlive the calls that schedule them.
	ctx context.Context

	mu             sync.Mutex
	clients        map[*client]struct{}
	cards          []*cardState
	toasts         []*toastState
	connection     *model.ConnectionStatus
	globalVisible  bool
	globalProgress float64
	busy           map[model.Control]bool
	console        []model.LogEntry
	consoleVisible bool
}

var _ presenter.Presenter = &Presenter{}

// NewPresenter returns a new web presenter.
func NewPresenter(cfg PresenterConfig) (*Presenter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Presenter{
		sched:         cfg.Scheduler,
		consoleReplay: cfg.ConsoleReplay,
		sendBuffer:    cfg.SendBuffer,
		writeTimeout:  cfg.WriteTimeout,
		upgrader:      websocket.Upgrader{CheckOrigin: cfg.CheckOrigin},
		logger:        cfg.Logger,
		ctx:           context.Background(),
		clients:       map[*client]struct{}{},
		busy:          map[model.Control]bool{},
	}, nil
}

func (p *Presenter) ShowStatus(_ context.Context, c model.StatusCard) model.StatusHandle {
	h := model.StatusHandle(ulid.Make().String())

	p.mu.Lock()
	defer p.mu.Unlock()

	st := &cardState{handle: h, card: c}
	if c.Progress != nil {
		progress := *c.Progress
		st.card.Progress = &progress
	}
	p.cards = append(p.cards, st)
	p.broadcast(Event{Type: EventStatusShow, Card: mapCardToJSON(h, st.card)})

	if c.Duration > 0 {
		cancel, err := p.sched.After(p.ctx, "status-expire", c.Duration, func(ctx context.Context) { p.RemoveStatus(ctx, h) })
		if err != nil {
			p.logger.Warningf("Could not schedule status card %s expiration: %s", h, err)
		}
		st.expire = cancel
	}

	return h
}

func (p *Presenter) UpdateProgress(_ context.Context, h model.StatusHandle, progress float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.findCard(h)
	if st == nil {
		return
	}

	st.card.Progress = &progress
	if message != "" {
		st.card.Message = message
	}
	p.broadcast(Event{Type: EventStatusUpdate, Handle: string(h), Progress: floatPtr(progress), Message: message})
}

func (p *Presenter) RemoveStatus(_ context.Context, h model.StatusHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, st := range p.cards {
		if st.handle != h {
			continue
		}
		if st.expire != nil {
			st.expire()
		}
		p.cards = append(p.cards[:i], p.cards[i+1:]...)
		p.broadcast(Event{Type: EventStatusRemove, Handle: string(h)})
		return
	}
}

func (p *Presenter) ShowToast(_ context.Context, t model.Toast) {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	st := &toastState{toast: t}
	p.toasts = append(p.toasts, st)
	p.broadcast(Event{Type: EventToastShow, Toast: mapToastToJSON(t)})

	if t.Duration > 0 {
		cancel, err := p.sched.After(p.ctx, "toast-expire", t.Duration, func(context.Context) { p.removeToast(t.ID) })
		if err != nil {
			p.logger.Warningf("Could not schedule toast %s expiration: %s", t.ID, err)
		}
		st.expire = cancel
	}
}

func (p *Presenter) removeToast(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, st := range p.toasts {
		if st.toast.ID == id {
			p.toasts = append(p.toasts[:i], p.toasts[i+1:]...)
			p.broadcast(Event{Type: EventToastRemove, Toast: mapToastToJSON(st.toast)})
			return
		}
	}
}

func (p *Presenter) SetConnection(_ context.Context, s model.ConnectionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connection = &s
	p.broadcast(Event{Type: EventConnectionUpdate, Connection: mapConnectionToJSON(s)})
}

func (p *Presenter) ShowGlobalProgress(_ context.Context, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.globalVisible = visible
	p.broadcast(p.globalProgressEvent())
}

func (p *Presenter) UpdateGlobalProgress(_ context.Context, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.globalProgress = progress
	p.broadcast(p.globalProgressEvent())
}

func (p *Presenter) SetControlBusy(_ context.Context, c model.Control, busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.busy[c] = busy
	p.broadcast(Event{Type: EventControlBusy, Control: string(c), Busy: boolPtr(busy)})
}

func (p *Presenter) AppendLog(_ context.Context, e model.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.console = append(p.console, e)
	if len(p.console) > p.consoleReplay {
		p.console = append([]model.LogEntry{}, p.console[len(p.console)-p.consoleReplay:]...)
	}
	p.broadcast(Event{Type: EventConsoleAppend, Entry: mapLogEntryToJSON(e)})
}

func (p *Presenter) ToggleConsole(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.consoleVisible = !p.consoleVisible
	p.broadcast(Event{Type: EventConsoleToggle, Visible: boolPtr(p.consoleVisible)})
}

// Snapshot returns the events that rebuild the current visible state.
func (p *Presenter) Snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Clients returns the number of connected browsers.
func (p *Presenter) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// ServeHTTP upgrades the request to a websocket and streams the events until
// the browser disconnects.
func (p *Presenter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warningf("Could not upgrade websocket: %s", err)
		return
	}

	p.mu.Lock()
	snapshot := p.snapshot()
	c := &client{conn: conn, send: make(chan []byte, len(snapshot)+p.sendBuffer)}
	for _, e := range snapshot {
		msg, err := json.Marshal(e)
		if err != nil {
			p.logger.Errorf("Could not marshal event: %s", err)
			continue
		}
		c.send <- msg
	}
	p.clients[c] = struct{}{}
	p.mu.Unlock()

	p.logger.Debugf("Browser %s connected", r.RemoteAddr)

	go p.writeLoop(c)
	p.readLoop(c)

	p.logger.Debugf("Browser %s disconnected", r.RemoteAddr)
}

// Close disconnects every browser.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		p.dropClient(c)
	}
}

// readLoop discards everything the browser sends, it's only used to detect the disconnection.
func (p *Presenter) readLoop(c *client) {
	defer func() {
		p.mu.Lock()
		p.dropClient(c)
		p.mu.Unlock()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Debugf("Websocket read error: %s", err)
			}
			return
		}
	}
}

func (p *Presenter) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			p.logger.Debugf("Websocket write error: %s", err)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// broadcast sends the event to every browser, must be called with the lock held.
func (p *Presenter) broadcast(e Event) {
	if len(p.clients) == 0 {
		return
	}

	msg, err := json.Marshal(e)
	if err != nil {
		p.logger.Errorf("Could not marshal event: %s", err)
		return
	}

	for c := range p.clients {
		select {
		case c.send <- msg:
		default:
			p.logger.Warningf("Browser too slow, disconnecting")
			p.dropClient(c)
		}
	}
}

// dropClient must be called with the lock held.
func (p *Presenter) dropClient(c *client) {
	if _, ok := p.clients[c]; !ok {
		return
	}
	delete(p.clients, c)
	close(c.send)
}

func (p *Presenter) findCard(h model.StatusHandle) *cardState {
	for _, st := range p.cards {
		if st.handle == h {
			return st
		}
	}
	return nil
}

func (p *Presenter) globalProgressEvent() Event {
	return Event{Type: EventProgressGlobal, Visible: boolPtr(p.globalVisible), Progress: floatPtr(p.globalProgress)}
}

// snapshot must be called with the lock held.
func (p *Presenter) snapshot() []Event {
	events := []Event{}

	if p.connection != nil {
		events = append(events, Event{Type: EventConnectionUpdate, Connection: mapConnectionToJSON(*p.connection)})
	}
	events = append(events, p.globalProgressEvent())

	controls := make([]string, 0, len(p.busy))
	for c, busy := range p.busy {
		if busy {
			controls = append(controls, string(c))
		}
	}
	sort.Strings(controls)
	for _, c := range controls {
		events = append(events, Event{Type: EventControlBusy, Control: c, Busy: boolPtr(true)})
	}

	for _, st := range p.cards {
		events = append(events, Event{Type: EventStatusShow, Card: mapCardToJSON(st.handle, st.card)})
	}
	for _, st := range p.toasts {
		events = append(events, Event{Type: EventToastShow, Toast: mapToastToJSON(st.toast)})
	}
	for _, e := range p.console {
		events = append(events, Event{Type: EventConsoleAppend, Entry: mapLogEntryToJSON(e)})
	}
	events = append(events, Event{Type: EventConsoleToggle, Visible: boolPtr(p.consoleVisible)})

	return events
}
