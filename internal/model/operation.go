package model

import (
	"fmt"
	"time"
)

// Operation is a tracked, named unit of asynchronous work with a visible
// progress/status lifecycle.
type Operation struct {
	ID        string
	Title     string
	Message   string
	StartedAt time.Time
	// Handle references the progress status card owned by the operation.
	Handle StatusHandle
}

// Validate validates the operation identity fields.
func (o Operation) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("operation id is required: %w", ErrNotValid)
	}

	return nil
}

// Outcome is the terminal result of an operation as seen by the user.
type Outcome struct {
	OperationID string
	Success     bool
	Message     string
	Files       []string
	Duration    time.Duration
}

// FormatElapsed formats an elapsed duration in seconds with one decimal (e.g. "2.5s").
// Negative durations are reported as zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
