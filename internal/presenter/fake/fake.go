package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
)

var _ presenter.Presenter = &Presenter{}

// Method names recorded by the fake presenter.
const (
	MethodShowStatus           = "ShowStatus"
	MethodUpdateProgress       = "UpdateProgress"
	MethodRemoveStatus         = "RemoveStatus"
	MethodShowToast            = "ShowToast"
	MethodSetConnection        = "SetConnection"
	MethodShowGlobalProgress   = "ShowGlobalProgress"
	MethodUpdateGlobalProgress = "UpdateGlobalProgress"
	MethodSetControlBusy       = "SetControlBusy"
	MethodAppendLog            = "AppendLog"
	MethodToggleConsole        = "ToggleConsole"
)

// Call is a recorded presenter call.
type Call struct {
	Method   string
	Handle   model.StatusHandle
	Card     model.StatusCard
	Progress float64
	Message  string
	Toast    model.Toast
	Conn     model.ConnectionStatus
	Control  model.Control
	Flag     bool
	Entry    model.LogEntry
}

// Card is a card rendered by the fake presenter.
type Card struct {
	Handle   model.StatusHandle
	Kind     model.StatusKind
	Title    string
	Message  string
	Progress *float64
	Removed  bool
}

// Presenter is a fake presenter that records everything it renders.
// Handles are sequential ("status-1", "status-2"...) so tests can predict them.
type Presenter struct {
	mu             sync.Mutex
	seq            int
	calls          []Call
	cards          []*Card
	cardsByHandle  map[model.StatusHandle]*Card
	connection     model.ConnectionStatus
	globalVisible  bool
	globalProgress float64
	busy           map[model.Control]bool
	consoleVisible bool
}

// NewPresenter returns a new fake presenter.
func NewPresenter() *Presenter {
	return &Presenter{
		cardsByHandle: map[model.StatusHandle]*Card{},
		busy:          map[model.Control]bool{},
	}
}

func (p *Presenter) ShowStatus(_ context.Context, card model.StatusCard) model.StatusHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	h := model.StatusHandle(fmt.Sprintf("status-%d", p.seq))
	c := &Card{
		Handle:  h,
		Kind:    card.Kind,
		Title:   card.Title,
		Message: card.Message,
	}
	if card.Progress != nil {
		progress := *card.Progress
		c.Progress = &progress
	}
	p.cards = append(p.cards, c)
	p.cardsByHandle[h] = c
	p.calls = append(p.calls, Call{Method: MethodShowStatus, Handle: h, Card: card})

	return h
}

func (p *Presenter) UpdateProgress(_ context.Context, h model.StatusHandle, progress float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Method: MethodUpdateProgress, Handle: h, Progress: progress, Message: message})
	c, ok := p.cardsByHandle[h]
	if !ok || c.Removed {
		return
	}
	if c.Progress != nil {
		c.Progress = &progress
	}
	if message != "" {
		c.Message = message
	}
}

func (p *Presenter) RemoveStatus(_ context.Context, h model.StatusHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Method: MethodRemoveStatus, Handle: h})
	if c, ok := p.cardsByHandle[h]; ok {
		c.Removed = true
	}
}

func (p *Presenter) ShowToast(_ context.Context, t model.Toast) {
	p.record(Call{Method: MethodShowToast, Toast: t})
}

func (p *Presenter) SetConnection(_ context.Context, s model.ConnectionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connection = s
	p.calls = append(p.calls, Call{Method: MethodSetConnection, Conn: s})
}

func (p *Presenter) ShowGlobalProgress(_ context.Context, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.globalVisible = visible
	p.calls = append(p.calls, Call{Method: MethodShowGlobalProgress, Flag: visible})
}

func (p *Presenter) UpdateGlobalProgress(_ context.Context, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.globalProgress = progress
	p.calls = append(p.calls, Call{Method: MethodUpdateGlobalProgress, Progress: progress})
}

func (p *Presenter) SetControlBusy(_ context.Context, c model.Control, busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy[c] = busy
	p.calls = append(p.calls, Call{Method: MethodSetControlBusy, Control: c, Flag: busy})
}

func (p *Presenter) AppendLog(_ context.Context, e model.LogEntry) {
	p.record(Call{Method: MethodAppendLog, Entry: e})
}

func (p *Presenter) ToggleConsole(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consoleVisible = !p.consoleVisible
	p.calls = append(p.calls, Call{Method: MethodToggleConsole, Flag: p.consoleVisible})
}

func (p *Presenter) record(c Call) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

// Calls returns all the recorded calls in order.
func (p *Presenter) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call{}, p.calls...)
}

// CallsOf returns the recorded calls of a method in order.
func (p *Presenter) CallsOf(method string) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	var calls []Call
	for _, c := range p.calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// Cards returns a copy of every card rendered, including removed ones.
func (p *Presenter) Cards() []Card {
	p.mu.Lock()
	defer p.mu.Unlock()

	cards := make([]Card, 0, len(p.cards))
	for _, c := range p.cards {
		cards = append(cards, *c)
	}
	return cards
}

// VisibleCards returns a copy of the cards that have not been removed.
func (p *Presenter) VisibleCards() []Card {
	var visible []Card
	for _, c := range p.Cards() {
		if !c.Removed {
			visible = append(visible, c)
		}
	}
	return visible
}

// Connection returns the last connection indicator status.
func (p *Presenter) Connection() model.ConnectionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connection
}

// GlobalProgress returns the global progress bar visibility and value.
func (p *Presenter) GlobalProgress() (visible bool, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.globalVisible, p.globalProgress
}

// Busy returns if a control is marked as busy.
func (p *Presenter) Busy(c model.Control) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy[c]
}

// ConsoleVisible returns the console visibility.
func (p *Presenter) ConsoleVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consoleVisible
}
