// Package inquiry turns reactions on one tracked message into private
// inquiry channels.
//
// A member who reacts with the tracked emoji gets a text channel visible only
// to them, the bot and the guild's administrator role. Removing the reaction
// deletes the channel. The Registry remembers which channel belongs to which
// member for the lifetime of the process; it is never persisted.
package inquiry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/onnwee/inquiry-desk/audit"
	"github.com/onnwee/inquiry-desk/gateway"
	"github.com/onnwee/inquiry-desk/telemetry"
)

// Target is the message and emoji the bot watches, and the category new
// channels are created under.
type Target struct {
	MessageID  string
	ChannelID  string
	CategoryID string
	Emoji      gateway.Emoji
}

// Options tune channel naming, messages and auditing.
type Options struct {
	ChannelPrefix  string
	WelcomeMessage string // {user} is replaced by a mention
	DeleteReason   string
	Recorder       audit.Recorder
}

const (
	userPermissions = gateway.PermissionViewChannel | gateway.PermissionSendMessages |
		gateway.PermissionAttachFiles | gateway.PermissionReadMessageHistory | gateway.PermissionEmbedLinks
	botPermissions = gateway.PermissionViewChannel | gateway.PermissionSendMessages |
		gateway.PermissionManageChannels
	adminPermissions = gateway.PermissionViewChannel | gateway.PermissionSendMessages |
		gateway.PermissionReadMessageHistory | gateway.PermissionManageMessages
)

// Handler owns the registry and reacts to gateway events.
type Handler struct {
	gw       gateway.Gateway
	registry *Registry
	target   Target
	opts     Options
	selfID   atomic.Value // string
}

// NewHandler wires a handler. A nil Recorder disables auditing.
func NewHandler(gw gateway.Gateway, registry *Registry, target Target, opts Options) *Handler {
	if opts.Recorder == nil {
		opts.Recorder = audit.Nop{}
	}
	if opts.ChannelPrefix == "" {
		opts.ChannelPrefix = "inquiry"
	}
	if opts.WelcomeMessage == "" {
		opts.WelcomeMessage = "{user}"
	}
	if opts.DeleteReason == "" {
		opts.DeleteReason = "inquiry reaction removed by user"
	}
	h := &Handler{gw: gw, registry: registry, target: target, opts: opts}
	h.selfID.Store("")
	return h
}

// Register subscribes the handler to src. Reactions on other messages or
// with other emoji are filtered at the source so they cost no platform calls.
func (h *Handler) Register(src gateway.EventSource) {
	src.FilterReactions(h.wantsReaction)
	src.OnReady(h.HandleReady)
	src.OnReactionAdd(h.HandleReactionAdded)
	src.OnReactionRemove(h.HandleReactionRemoved)
}

// Registry exposes the registry for status reporting.
func (h *Handler) Registry() *Registry { return h.registry }

// SelfID is the bot's own user id, known after the first ready event.
func (h *Handler) SelfID() string { return h.selfID.Load().(string) }

// HandleReady records the bot identity and puts the tracked emoji on the
// target message so members have something to click. Failures are logged;
// the bot keeps running.
func (h *Handler) HandleReady(ctx context.Context, ev gateway.ReadyEvent) {
	h.selfID.Store(ev.Self.ID)
	log := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "inquiry"))
	log.Info("bot logged in", slog.String("user", ev.Self.Username), slog.String("user_id", ev.Self.ID))

	ctx, span := telemetry.StartSpan(ctx, "inquiry.ready")
	defer span.End()

	ch, err := h.gw.FetchChannel(ctx, h.target.ChannelID)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("initial reaction: fetch channel failed", slog.String("channel_id", h.target.ChannelID), slog.Any("err", err))
		return
	}
	msg, err := h.gw.FetchMessage(ctx, ch.ID, h.target.MessageID)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("initial reaction: fetch message failed", slog.String("message_id", h.target.MessageID), slog.Any("err", err))
		return
	}
	if err := h.gw.React(ctx, ch.ID, msg.ID, h.target.Emoji); err != nil {
		telemetry.RecordError(span, err)
		log.Error("initial reaction: react failed", slog.String("emoji", h.target.Emoji.String()), slog.Any("err", err))
		return
	}
	telemetry.SetSpanSuccess(span)
	log.Info("initial reaction added", slog.String("message_id", msg.ID), slog.String("emoji", h.target.Emoji.String()))
}

// wantsReaction reports whether a reaction targets the tracked message and
// emoji. Only the raw payload is needed, so it runs before user resolution.
func (h *Handler) wantsReaction(messageID string, emoji gateway.Emoji) bool {
	switch {
	case messageID != h.target.MessageID:
		telemetry.IncIgnored("wrong_message")
		return false
	case !h.target.Emoji.Matches(emoji):
		telemetry.IncIgnored("wrong_emoji")
		return false
	}
	return true
}

// ignoreReason returns why ev should not touch state, or "" if it qualifies.
func (h *Handler) ignoreReason(ev gateway.ReactionEvent) string {
	switch {
	case ev.User.Bot:
		return "bot"
	case ev.User.ID == "":
		return "unknown_user"
	case ev.User.ID == h.SelfID():
		return "self"
	case ev.MessageID != h.target.MessageID:
		return "wrong_message"
	case !h.target.Emoji.Matches(ev.Emoji):
		return "wrong_emoji"
	}
	return ""
}

// HandleReactionAdded opens an inquiry channel for the reacting member
// unless they already have one.
func (h *Handler) HandleReactionAdded(ctx context.Context, ev gateway.ReactionEvent) {
	if reason := h.ignoreReason(ev); reason != "" {
		telemetry.IncIgnored(reason)
		return
	}
	user := ev.User
	log := telemetry.LoggerWithCorr(ctx).With(
		slog.String("component", "inquiry"),
		slog.String("user", user.Username),
		slog.String("user_id", user.ID))

	if ch, ok := h.registry.Lookup(user.ID); ok {
		telemetry.IncIgnored("already_open")
		log.Info("user already has an inquiry channel", slog.String("channel_id", ch))
		return
	}
	if !h.registry.Acquire(user.ID) {
		telemetry.IncIgnored("in_flight")
		log.Debug("inquiry operation already in flight for user")
		return
	}
	defer h.registry.Release(user.ID)
	// a concurrent add may have finished between Lookup and Acquire
	if _, ok := h.registry.Lookup(user.ID); ok {
		telemetry.IncIgnored("already_open")
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "inquiry.open", telemetry.UserAttr(user.ID))
	defer span.End()

	roles, err := h.gw.GuildRoles(ctx, ev.GuildID)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.IncFailure("guild_roles")
		log.Error("fetch guild roles failed", slog.String("guild_id", ev.GuildID), slog.Any("err", err))
		h.audit(ctx, log, audit.Event{Kind: audit.KindOpenFailed, GuildID: ev.GuildID, UserID: user.ID, Username: user.Username, Error: err.Error()})
		return
	}
	adminRole, hasAdmin := AdminRole(ev.GuildID, roles)

	name := ChannelName(h.opts.ChannelPrefix, user)
	ch, err := h.gw.CreateTextChannel(ctx, ev.GuildID, gateway.ChannelSpec{
		Name:     name,
		ParentID: h.target.CategoryID,
		Overwrites: []gateway.PermissionOverwrite{
			{TargetID: ev.GuildID, Kind: gateway.OverwriteRole, Deny: gateway.PermissionViewChannel},
			{TargetID: user.ID, Kind: gateway.OverwriteMember, Allow: userPermissions},
			{TargetID: h.SelfID(), Kind: gateway.OverwriteMember, Allow: botPermissions},
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.IncFailure("create_channel")
		log.Error("inquiry channel creation failed", slog.String("channel_name", name), slog.Any("err", err))
		h.audit(ctx, log, audit.Event{Kind: audit.KindOpenFailed, GuildID: ev.GuildID, UserID: user.ID, Username: user.Username, Error: err.Error()})
		return
	}

	// Record before anything else can fail so the channel is never untracked.
	h.registry.Record(user.ID, ch.ID)
	telemetry.SetOpenInquiries(h.registry.Len())
	telemetry.IncOpened()
	span.SetAttributes(telemetry.ChannelAttr(ch.ID))
	log = log.With(slog.String("channel_id", ch.ID))

	if hasAdmin {
		err := h.gw.SetPermissionOverwrite(ctx, ch.ID, gateway.PermissionOverwrite{
			TargetID: adminRole.ID,
			Kind:     gateway.OverwriteRole,
			Allow:    adminPermissions,
		})
		if err != nil {
			telemetry.IncFailure("admin_overwrite")
			log.Warn("admin role overwrite failed", slog.String("role_id", adminRole.ID), slog.Any("err", err))
		}
	}

	if err := h.gw.SendMessage(ctx, ch.ID, h.welcome(user)); err != nil {
		telemetry.IncFailure("welcome_message")
		log.Warn("welcome message failed", slog.Any("err", err))
	}

	telemetry.SetSpanSuccess(span)
	log.Info("inquiry channel created", slog.String("channel_name", name))
	h.audit(ctx, log, audit.Event{Kind: audit.KindOpened, GuildID: ev.GuildID, UserID: user.ID, Username: user.Username, ChannelID: ch.ID})
}

// HandleReactionRemoved deletes the member's inquiry channel. The registry
// entry is only dropped once the platform confirms the channel is gone, so a
// failed delete is retried on the next unreact. A delete answered with
// gateway.ErrNotFound also drops the entry: the channel was removed outside
// the bot, and keeping the entry would block the member from ever getting a
// new channel.
func (h *Handler) HandleReactionRemoved(ctx context.Context, ev gateway.ReactionEvent) {
	if reason := h.ignoreReason(ev); reason != "" {
		telemetry.IncIgnored(reason)
		return
	}
	user := ev.User
	log := telemetry.LoggerWithCorr(ctx).With(
		slog.String("component", "inquiry"),
		slog.String("user", user.Username),
		slog.String("user_id", user.ID))

	if _, ok := h.registry.Lookup(user.ID); !ok {
		telemetry.IncIgnored("not_open")
		return
	}
	if !h.registry.Acquire(user.ID) {
		telemetry.IncIgnored("in_flight")
		log.Debug("inquiry operation already in flight for user")
		return
	}
	defer h.registry.Release(user.ID)
	channelID, ok := h.registry.Lookup(user.ID)
	if !ok {
		telemetry.IncIgnored("not_open")
		return
	}
	log = log.With(slog.String("channel_id", channelID))

	ctx, span := telemetry.StartSpan(ctx, "inquiry.close", telemetry.UserAttr(user.ID), telemetry.ChannelAttr(channelID))
	defer span.End()

	err := h.gw.DeleteChannel(ctx, channelID, h.opts.DeleteReason)
	switch {
	case err == nil:
		log.Info("inquiry channel deleted")
	case errors.Is(err, gateway.ErrNotFound):
		log.Warn("inquiry channel already gone; forgetting it", slog.Any("err", err))
	default:
		telemetry.RecordError(span, err)
		telemetry.IncFailure("delete_channel")
		log.Error("inquiry channel deletion failed", slog.Any("err", err))
		h.audit(ctx, log, audit.Event{Kind: audit.KindCloseFailed, GuildID: ev.GuildID, UserID: user.ID, Username: user.Username, ChannelID: channelID, Error: err.Error()})
		return
	}

	h.registry.Forget(user.ID)
	telemetry.SetOpenInquiries(h.registry.Len())
	telemetry.IncClosed()
	telemetry.SetSpanSuccess(span)
	h.audit(ctx, log, audit.Event{Kind: audit.KindClosed, GuildID: ev.GuildID, UserID: user.ID, Username: user.Username, ChannelID: channelID})
}

func (h *Handler) welcome(user gateway.User) string {
	mention := "<@" + user.ID + ">"
	if !strings.Contains(h.opts.WelcomeMessage, "{user}") {
		return mention + " " + h.opts.WelcomeMessage
	}
	return strings.ReplaceAll(h.opts.WelcomeMessage, "{user}", mention)
}

func (h *Handler) audit(ctx context.Context, log *slog.Logger, ev audit.Event) {
	ev.CorrelationID = telemetry.GetCorrelation(ctx)
	ev.OccurredAt = time.Now().UTC()
	if err := h.opts.Recorder.Record(ctx, ev); err != nil {
		log.Warn("audit record failed", slog.String("kind", string(ev.Kind)), slog.Any("err", err))
	}
}
