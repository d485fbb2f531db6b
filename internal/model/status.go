package model

import "time"

// StatusKind is the visual kind of a status card or toast.
type StatusKind string

const (
	StatusKindSuccess StatusKind = "success"
	StatusKindError   StatusKind = "error"
	StatusKindWarning StatusKind = "warning"
	StatusKindInfo    StatusKind = "info"
	StatusKindLoading StatusKind = "loading"
)

// Valid returns true if the kind is a known one.
func (k StatusKind) Valid() bool {
	switch k {
	case StatusKindSuccess, StatusKindError, StatusKindWarning, StatusKindInfo, StatusKindLoading:
		return true
	}
	return false
}

// StatusHandle is an opaque reference to a rendered status card.
type StatusHandle string

// StatusCard is a dismissible visual unit representing one point-in-time notification.
type StatusCard struct {
	Kind    StatusKind
	Title   string
	Message string
	// Duration is the time the card stays visible, zero means it stays until removed.
	Duration time.Duration
	// Progress is the progress bar value (0-100), nil cards don't have a progress bar.
	Progress *float64
}

// HasProgress returns true if the card renders a progress bar.
func (s StatusCard) HasProgress() bool { return s.Progress != nil }

// Toast is a short lived floating message.
type Toast struct {
	ID       string
	Kind     StatusKind
	Message  string
	Duration time.Duration
}

// Control identifies a UI control (e.g. a button) that can be marked as busy.
type Control string

const (
	ControlRefreshCSV  Control = "refresh-csv"
	ControlLoadFromCSV Control = "load-from-csv"
	ControlSendReport  Control = "btnSendReport"
)
