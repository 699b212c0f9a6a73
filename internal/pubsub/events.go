// Package pubsub fans highlighter and logger events out to the viewer.
// Publishers never block; each subscriber picks the event types it wants.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// HighlightedEvent is published after a line has been classified.
	HighlightedEvent EventType = "highlighted"
	// ThemeChangedEvent is published once per theme switch, before the
	// rehighlight pass.
	ThemeChangedEvent EventType = "theme-changed"
	// LoggedEvent carries one formatted log entry.
	LoggedEvent EventType = "logged"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels. With no types every event is
// delivered; otherwise only events of the listed types.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher publishes typed payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
