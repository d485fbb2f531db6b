package presenter

import (
	"context"

	"github.com/slok/dashstatus/internal/model"
)

// StatusPresenter renders status cards.
type StatusPresenter interface {
	// ShowStatus renders a new status card and returns the handle to reference it later.
	ShowStatus(ctx context.Context, card model.StatusCard) model.StatusHandle
	// UpdateProgress updates in place the progress bar of a card, and its message
	// when message is not empty.
	UpdateProgress(ctx context.Context, h model.StatusHandle, progress float64, message string)
	// RemoveStatus removes a card, unknown or already removed handles are ignored.
	RemoveStatus(ctx context.Context, h model.StatusHandle)
}

// ToastPresenter renders toasts.
type ToastPresenter interface {
	ShowToast(ctx context.Context, t model.Toast)
}

// IndicatorPresenter renders the page wide indicators: connection, global
// progress bar and busy controls.
type IndicatorPresenter interface {
	SetConnection(ctx context.Context, s model.ConnectionStatus)
	ShowGlobalProgress(ctx context.Context, visible bool)
	UpdateGlobalProgress(ctx context.Context, progress float64)
	SetControlBusy(ctx context.Context, c model.Control, busy bool)
}

// ConsolePresenter renders the log console.
type ConsolePresenter interface {
	AppendLog(ctx context.Context, e model.LogEntry)
	ToggleConsole(ctx context.Context)
}

// Presenter is the full visual layer of the dashboard.
type Presenter interface {
	StatusPresenter
	ToastPresenter
	IndicatorPresenter
	ConsolePresenter
}
