package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/oklog/ulid/v2"

	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter"
)

const defaultBarWidth = 30

// PresenterConfig is the configuration of the terminal presenter.
type PresenterConfig struct {
	// Out is where everything is rendered, stderr by default.
	Out      io.Writer
	NoColor  bool
	BarWidth int
	// HideConsole starts with the log console hidden.
	HideConsole bool
}

func (c *PresenterConfig) defaults() error {
	if c.Out == nil {
		c.Out = os.Stderr
	}

	if c.BarWidth < 0 {
		return fmt.Errorf("bar width can't be negative")
	}
	if c.BarWidth == 0 {
		c.BarWidth = defaultBarWidth
	}

	return nil
}

type card struct {
	kind  model.StatusKind
	title string
}

// Presenter renders the dashboard feedback as lines on a terminal.
// Cards are printed when shown and on every progress update, timed cards
// and toasts are printed once.
type Presenter struct {
	out      io.Writer
	styles   styles
	barWidth int

	mu             sync.Mutex
	cards          map[model.StatusHandle]card
	consoleVisible bool
	globalVisible  bool
}

var _ presenter.Presenter = &Presenter{}

// NewPresenter returns a new terminal presenter.
func NewPresenter(cfg PresenterConfig) (*Presenter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := lipgloss.NewRenderer(cfg.Out)
	if cfg.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Presenter{
		out:            cfg.Out,
		styles:         newStyles(r),
		barWidth:       cfg.BarWidth,
		cards:          map[model.StatusHandle]card{},
		consoleVisible: !cfg.HideConsole,
	}, nil
}

func (p *Presenter) ShowStatus(_ context.Context, c model.StatusCard) model.StatusHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := model.StatusHandle(ulid.Make().String())
	line := p.cardHeader(c.Kind, c.Title) + " " + c.Message
	if c.HasProgress() {
		// Only progress cards can be updated later.
		p.cards[h] = card{kind: c.Kind, title: c.Title}
		line += " " + p.renderBar(*c.Progress)
	}
	p.println(line)

	return h
}

func (p *Presenter) UpdateProgress(_ context.Context, h model.StatusHandle, progress float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.cards[h]
	if !ok {
		return
	}

	line := p.cardHeader(c.kind, c.title) + " " + p.renderBar(progress)
	if message != "" {
		line += " " + message
	}
	p.println(line)
}

func (p *Presenter) RemoveStatus(_ context.Context, h model.StatusHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cards, h)
}

func (p *Presenter) ShowToast(_ context.Context, t model.Toast) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.styles.kind(t.Kind).Render("»") + " " + t.Message)
}

func (p *Presenter) SetConnection(_ context.Context, s model.ConnectionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.styles.checking
	switch s.State {
	case model.ConnectionStateOnline:
		st = p.styles.online
	case model.ConnectionStateOffline:
		st = p.styles.offline
	}
	p.println(st.Render("●") + " " + s.Text)
}

func (p *Presenter) ShowGlobalProgress(_ context.Context, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.globalVisible = visible
}

func (p *Presenter) UpdateGlobalProgress(_ context.Context, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.globalVisible {
		return
	}
	p.println(p.renderBar(progress))
}

// SetControlBusy is a no-op, the terminal doesn't have controls.
func (p *Presenter) SetControlBusy(context.Context, model.Control, bool) {}

func (p *Presenter) AppendLog(_ context.Context, e model.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.consoleVisible {
		return
	}

	ts := p.styles.timestamp.Render("[" + e.Timestamp.Format("15:04:05") + "]")
	p.println(ts + " " + p.styles.level(e.Level).Render(e.Message))
}

func (p *Presenter) ToggleConsole(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consoleVisible = !p.consoleVisible
}

func (p *Presenter) cardHeader(kind model.StatusKind, title string) string {
	st := p.styles.kind(kind)
	icon := kindIcons[kind]
	if icon == "" {
		icon = kindIcons[model.StatusKindInfo]
	}
	return st.Render(icon) + " " + p.styles.title.Render(title+":")
}

// renderBar renders a progress bar like `[=====     ]  50%`.
func (p *Presenter) renderBar(progress float64) string {
	pct := progress
	if pct < 0 {
		pct = 0
	}
	filled := int(pct / 100 * float64(p.barWidth))
	if filled > p.barWidth {
		filled = p.barWidth
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", p.barWidth-filled)
	return p.styles.bar.Render("["+bar+"]") + fmt.Sprintf(" %3.0f%%", progress)
}

func (p *Presenter) println(line string) {
	fmt.Fprintln(p.out, line)
}
