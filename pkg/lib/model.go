package lib

import (
	"errors"
	"time"

	"github.com/slok/dashstatus/internal/model"
)

// PresenterType identifies where the feedback is rendered.
type PresenterType string

const (
	// PresenterTerminal renders the feedback as lines on a terminal.
	PresenterTerminal PresenterType = "terminal"

	// PresenterFake renders nothing.
	// Use this for unit testing.
	PresenterFake PresenterType = "fake"
)

// Kind is the visual kind of status cards and toasts.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	// KindLoading is only valid for status cards.
	KindLoading Kind = "loading"
)

// Level is the level of a log console entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Operation is a tracked operation returned by the SDK.
type Operation struct {
	// ID is the caller chosen identifier.
	ID string
	// Title is shown on the progress card and the log console.
	Title string
	// Message is the initial message of the progress card.
	Message string
	// StartedAt is when the operation was started.
	StartedAt time.Time
}

// LogEntry is an entry of the log console.
type LogEntry struct {
	// Sequence is the append order, starting at 1.
	Sequence  uint64
	Level     Level
	Message   string
	Timestamp time.Time
}

// Error sentinel values that can be checked with [errors.Is].
var (
	// ErrNotValid is returned when the input is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
)

func fromInternalOperation(op model.Operation) Operation {
	return Operation{
		ID:        op.ID,
		Title:     op.Title,
		Message:   op.Message,
		StartedAt: op.StartedAt,
	}
}

func fromInternalLogEntries(es []model.LogEntry) []LogEntry {
	entries := make([]LogEntry, 0, len(es))
	for _, e := range es {
		entries = append(entries, LogEntry{
			Sequence:  e.Sequence,
			Level:     Level(e.Level),
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}
	return entries
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
