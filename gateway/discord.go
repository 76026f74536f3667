package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/onnwee/inquiry-desk/telemetry"
)

// Intents requested on identify: guild metadata, messages and reactions.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions

// Discord is the discordgo backed EventSource and Gateway.
type Discord struct {
	session *discordgo.Session
	ready   atomic.Bool

	mu   sync.RWMutex
	base context.Context
	keep ReactionFilter
}

var (
	_ EventSource = (*Discord)(nil)
	_ Gateway     = (*Discord)(nil)
)

// Option customizes the underlying session.
type Option func(*discordgo.Session)

// WithHTTPClient replaces the REST client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *discordgo.Session) { s.Client = c }
}

// NewDiscord prepares a bot session. No connection is made until Open.
func NewDiscord(token string, opts ...Option) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	for _, opt := range opts {
		opt(s)
	}
	d := &Discord{session: s, base: context.Background()}
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		d.ready.Store(false)
		slog.Warn("discord gateway disconnected", slog.String("component", "gateway"))
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		d.ready.Store(true)
		slog.Info("discord gateway resumed", slog.String("component", "gateway"))
	})
	return d, nil
}

// Ready reports whether the session has completed the READY handshake and
// is currently connected.
func (d *Discord) Ready() bool { return d.ready.Load() }

// Open connects to the gateway. ctx becomes the parent of every event context.
func (d *Discord) Open(ctx context.Context) error {
	d.mu.Lock()
	d.base = ctx
	d.mu.Unlock()
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *Discord) Close() error {
	d.ready.Store(false)
	return d.session.Close()
}

// eventContext derives a per-event context carrying a fresh correlation id.
func (d *Discord) eventContext() context.Context {
	d.mu.RLock()
	base := d.base
	d.mu.RUnlock()
	return telemetry.WithCorrelation(base, uuid.New().String())
}

// FilterReactions installs keep. Rejected reactions never reach a handler
// and never cost a REST call.
func (d *Discord) FilterReactions(keep ReactionFilter) {
	d.mu.Lock()
	d.keep = keep
	d.mu.Unlock()
}

func (d *Discord) wants(r *discordgo.MessageReaction) bool {
	d.mu.RLock()
	keep := d.keep
	d.mu.RUnlock()
	return keep == nil || keep(r.MessageID, toEmoji(r.Emoji))
}

func (d *Discord) OnReady(fn func(ctx context.Context, ev ReadyEvent)) {
	d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.ready.Store(true)
		fn(d.eventContext(), ReadyEvent{Self: toUser(r.User)})
	})
}

func (d *Discord) OnReactionAdd(fn func(ctx context.Context, ev ReactionEvent)) {
	d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.MessageReaction == nil {
			return
		}
		ctx := d.eventContext()
		var member *discordgo.User
		if r.Member != nil {
			member = r.Member.User
		}
		ev, ok := d.materialize(ctx, r.MessageReaction, member)
		if !ok {
			return
		}
		fn(ctx, ev)
	})
}

func (d *Discord) OnReactionRemove(fn func(ctx context.Context, ev ReactionEvent)) {
	d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if r.MessageReaction == nil {
			return
		}
		ctx := d.eventContext()
		ev, ok := d.materialize(ctx, r.MessageReaction, nil)
		if !ok {
			return
		}
		fn(ctx, ev)
	})
}

// materialize turns a reaction payload into a ReactionEvent. Reactions the
// filter rejects are dropped first. Discord omits the reacting user from
// remove events (and from add events outside a guild), so the user is
// fetched when missing; on failure the event is dropped.
func (d *Discord) materialize(ctx context.Context, r *discordgo.MessageReaction, u *discordgo.User) (ReactionEvent, bool) {
	if !d.wants(r) {
		return ReactionEvent{}, false
	}
	ev := ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     toEmoji(r.Emoji),
	}
	if u != nil {
		ev.User = toUser(u)
		return ev, true
	}
	start := time.Now()
	fetched, err := d.session.User(r.UserID, discordgo.WithContext(ctx))
	telemetry.ObserveGatewayCommand("fetch_user", time.Since(start), err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("reaction user fetch failed; dropping event",
			slog.String("user_id", r.UserID), slog.String("message_id", r.MessageID),
			slog.Any("err", err), slog.String("component", "gateway"))
		return ReactionEvent{}, false
	}
	ev.User = toUser(fetched)
	return ev, true
}

func (d *Discord) FetchChannel(ctx context.Context, channelID string) (ch Channel, err error) {
	defer observe("fetch_channel", time.Now(), &err)
	c, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, mapError(err)
	}
	return toChannel(c), nil
}

func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID string) (msg Message, err error) {
	defer observe("fetch_message", time.Now(), &err)
	m, err := d.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, mapError(err)
	}
	return Message{ID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID}, nil
}

func (d *Discord) React(ctx context.Context, channelID, messageID string, emoji Emoji) (err error) {
	defer observe("react", time.Now(), &err)
	return mapError(d.session.MessageReactionAdd(channelID, messageID, emoji.APIName(), discordgo.WithContext(ctx)))
}

func (d *Discord) CreateTextChannel(ctx context.Context, guildID string, spec ChannelSpec) (ch Channel, err error) {
	defer observe("create_channel", time.Now(), &err)
	c, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             spec.ParentID,
		PermissionOverwrites: toDiscordOverwrites(spec.Overwrites),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, mapError(err)
	}
	return toChannel(c), nil
}

func (d *Discord) SetPermissionOverwrite(ctx context.Context, channelID string, ow PermissionOverwrite) (err error) {
	defer observe("set_permission", time.Now(), &err)
	return mapError(d.session.ChannelPermissionSet(channelID, ow.TargetID, toDiscordOverwriteType(ow.Kind),
		int64(ow.Allow), int64(ow.Deny), discordgo.WithContext(ctx)))
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) (err error) {
	defer observe("send_message", time.Now(), &err)
	_, err = d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return mapError(err)
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID, reason string) (err error) {
	defer observe("delete_channel", time.Now(), &err)
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	_, err = d.session.ChannelDelete(channelID, opts...)
	return mapError(err)
}

func (d *Discord) GuildRoles(ctx context.Context, guildID string) (roles []Role, err error) {
	defer observe("guild_roles", time.Now(), &err)
	rs, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	roles = make([]Role, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			roles = append(roles, toRole(r))
		}
	}
	return roles, nil
}

func observe(command string, start time.Time, err *error) {
	telemetry.ObserveGatewayCommand(command, time.Since(start), *err)
}

// mapError folds HTTP 404 responses into ErrNotFound, keeping the original
// error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func toUser(u *discordgo.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

func toEmoji(e discordgo.Emoji) Emoji {
	return Emoji{Name: e.Name, ID: e.ID, Animated: e.Animated}
}

func toChannel(c *discordgo.Channel) Channel {
	return Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name, ParentID: c.ParentID}
}

func toRole(r *discordgo.Role) Role {
	return Role{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: Permission(r.Permissions),
		Position:    r.Position,
		Managed:     r.Managed,
	}
}

func toDiscordOverwriteType(k OverwriteKind) discordgo.PermissionOverwriteType {
	if k == OverwriteMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func toDiscordOverwrites(ows []PermissionOverwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(ows))
	for _, ow := range ows {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.TargetID,
			Type:  toDiscordOverwriteType(ow.Kind),
			Allow: int64(ow.Allow),
			Deny:  int64(ow.Deny),
		})
	}
	return out
}
