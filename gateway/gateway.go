// Package gateway abstracts the chat platform the bot talks to.
//
// EventSource delivers typed events (ready, reaction added, reaction removed)
// to registered handler funcs. Gateway issues commands back to the platform.
// Discord implements both on top of a discordgo session; tests substitute
// fakes or the generated mock in package mocks.
package gateway

//go:generate go run go.uber.org/mock/mockgen -source=gateway.go -destination=../mocks/mock_gateway.go -package=mocks

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the platform reports that the addressed
// channel, message or guild does not exist.
var ErrNotFound = errors.New("gateway: not found")

// User is the subset of a platform account the bot needs.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// ReactionEvent is a reaction added to or removed from a message.
type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	Emoji     Emoji
	User      User
}

// ReadyEvent is delivered once the session is connected.
type ReadyEvent struct {
	Self User
}

// Channel is a guild channel as returned by the platform.
type Channel struct {
	ID       string
	GuildID  string
	Name     string
	ParentID string
}

// Message identifies a message in a channel.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
}

// Role is a guild role.
type Role struct {
	ID          string
	Name        string
	Permissions Permission
	Position    int
	Managed     bool
}

// ChannelSpec describes a text channel to create.
type ChannelSpec struct {
	Name       string
	ParentID   string
	Overwrites []PermissionOverwrite
}

// ReactionFilter reports whether a reaction on messageID with emoji is of
// interest. It runs before any platform call is made for the event.
type ReactionFilter func(messageID string, emoji Emoji) bool

// EventSource delivers platform events to registered handlers.
type EventSource interface {
	// FilterReactions drops reaction events rejected by keep before they
	// are resolved or dispatched.
	FilterReactions(keep ReactionFilter)
	OnReady(fn func(ctx context.Context, ev ReadyEvent))
	OnReactionAdd(fn func(ctx context.Context, ev ReactionEvent))
	OnReactionRemove(fn func(ctx context.Context, ev ReactionEvent))
	Open(ctx context.Context) error
	Close() error
}

// Gateway is the command surface of the chat platform.
type Gateway interface {
	FetchChannel(ctx context.Context, channelID string) (Channel, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (Message, error)
	React(ctx context.Context, channelID, messageID string, emoji Emoji) error
	CreateTextChannel(ctx context.Context, guildID string, spec ChannelSpec) (Channel, error)
	SetPermissionOverwrite(ctx context.Context, channelID string, ow PermissionOverwrite) error
	SendMessage(ctx context.Context, channelID, content string) error
	DeleteChannel(ctx context.Context, channelID, reason string) error
	GuildRoles(ctx context.Context, guildID string) ([]Role, error)
}
