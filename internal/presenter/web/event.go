package web

import (
	"time"

	"github.com/slok/dashstatus/internal/model"
)

// Event types sent to the browsers.
const (
	EventStatusShow       = "status.show"
	EventStatusUpdate     = "status.update"
	EventStatusRemove     = "status.remove"
	EventToastShow        = "toast.show"
	EventToastRemove      = "toast.remove"
	EventConnectionUpdate = "connection.update"
	EventProgressGlobal   = "progress.global"
	EventControlBusy      = "control.busy"
	EventConsoleAppend    = "console.append"
	EventConsoleToggle    = "console.toggle"
)

// Event is a message pushed to the browsers.
type Event struct {
	Type       string          `json:"type"`
	Card       *CardJSON       `json:"card,omitempty"`
	Handle     string          `json:"handle,omitempty"`
	Progress   *float64        `json:"progress,omitempty"`
	Message    string          `json:"message,omitempty"`
	Toast      *ToastJSON      `json:"toast,omitempty"`
	Connection *ConnectionJSON `json:"connection,omitempty"`
	Control    string          `json:"control,omitempty"`
	Visible    *bool           `json:"visible,omitempty"`
	Busy       *bool           `json:"busy,omitempty"`
	Entry      *LogEntryJSON   `json:"entry,omitempty"`
}

type CardJSON struct {
	Handle     string   `json:"handle"`
	Kind       string   `json:"kind"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	DurationMS int64    `json:"duration_ms"`
	Progress   *float64 `json:"progress,omitempty"`
}

type ToastJSON struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	DurationMS int64  `json:"duration_ms"`
}

type ConnectionJSON struct {
	State     string     `json:"state"`
	Text      string     `json:"text"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

type LogEntryJSON struct {
	Sequence  uint64    `json:"seq"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func mapCardToJSON(h model.StatusHandle, c model.StatusCard) *CardJSON {
	cj := &CardJSON{
		Handle:     string(h),
		Kind:       string(c.Kind),
		Title:      c.Title,
		Message:    c.Message,
		DurationMS: c.Duration.Milliseconds(),
	}
	if c.Progress != nil {
		p := *c.Progress
		cj.Progress = &p
	}
	return cj
}

func mapToastToJSON(t model.Toast) *ToastJSON {
	return &ToastJSON{
		ID:         t.ID,
		Kind:       string(t.Kind),
		Message:    t.Message,
		DurationMS: t.Duration.Milliseconds(),
	}
}

func mapConnectionToJSON(s model.ConnectionStatus) *ConnectionJSON {
	cj := &ConnectionJSON{State: string(s.State), Text: s.Text}
	if !s.CheckedAt.IsZero() {
		t := s.CheckedAt
		cj.CheckedAt = &t
	}
	return cj
}

func mapLogEntryToJSON(e model.LogEntry) *LogEntryJSON {
	return &LogEntryJSON{
		Sequence:  e.Sequence,
		Level:     string(e.Level),
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
