// Package audit keeps an optional append-only trail of inquiry channel
// lifecycle events in Postgres. The trail is write-mostly: nothing reads it
// back into the in-memory registry, so a restart always begins with no
// tracked channels.
package audit

import (
	"context"
	"time"
)

// Kind classifies an audit event.
type Kind string

const (
	KindOpened      Kind = "opened"
	KindOpenFailed  Kind = "open_failed"
	KindClosed      Kind = "closed"
	KindCloseFailed Kind = "close_failed"
)

// Event is one lifecycle transition (or failed attempt) for a user.
type Event struct {
	Kind          Kind      `json:"kind"`
	GuildID       string    `json:"guild_id,omitempty"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	ChannelID     string    `json:"channel_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Nop discards every event. Used when DB_DSN is unset.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
