package songsync

import (
	"context"
	"time"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// EventHandled does nothing
func (n *NoopEventSink) EventHandled(ctx context.Context, record NotificationRecord, outcome Outcome) {}

// NotifyCompleted does nothing
func (n *NoopEventSink) NotifyCompleted(ctx context.Context, method string, elapsed time.Duration, err error) {
}
