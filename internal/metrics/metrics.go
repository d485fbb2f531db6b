package metrics

import (
	"context"
	"time"
)

// Recorder knows how to record the dashboard feedback metrics.
type Recorder interface {
	OperationStarted(ctx context.Context, operationID string)
	OperationCompleted(ctx context.Context, operationID string, success bool, duration time.Duration)
	ConnectionChecked(ctx context.Context, online bool, duration time.Duration)
	BackendRequest(ctx context.Context, path string, failed bool, duration time.Duration)
}

// Noop is a recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) OperationStarted(context.Context, string)                        {}
func (noop) OperationCompleted(context.Context, string, bool, time.Duration) {}
func (noop) ConnectionChecked(context.Context, bool, time.Duration)          {}
func (noop) BackendRequest(context.Context, string, bool, time.Duration)     {}
