package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/onnwee/inquiry-desk/audit"
	"github.com/onnwee/inquiry-desk/gateway"
	"github.com/onnwee/inquiry-desk/mocks"
)

const (
	guildID     = "500"
	messageID   = "1001"
	channelID   = "2002"
	categoryID  = "3003"
	botID       = "777"
	adminRoleID = "600"
)

var (
	bubble = gateway.ParseEmoji("💬")
	alice  = gateway.User{ID: "42", Username: "Al Ice!"}
	bob    = gateway.User{ID: "43", Username: "bob"}
)

// fakeGateway records every command and returns canned results.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	created   []gateway.ChannelSpec
	overwrite []gateway.PermissionOverwrite
	sent      map[string][]string
	deleted   []string
	reasons   []string
	reacted   []gateway.Emoji

	roles     []gateway.Role
	nextID    int
	createErr error
	deleteErr error
	sendErr   error
	rolesErr  error
	fetchErr  error

	// createGate, when set, blocks CreateTextChannel until closed.
	createGate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sent:   make(map[string][]string),
		nextID: 9000,
		roles: []gateway.Role{
			{ID: guildID, Name: "@everyone", Permissions: gateway.PermissionViewChannel},
			{ID: adminRoleID, Name: "Staff", Permissions: gateway.PermissionAdministrator, Position: 3},
		},
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeGateway) FetchChannel(_ context.Context, id string) (gateway.Channel, error) {
	f.record("FetchChannel")
	if f.fetchErr != nil {
		return gateway.Channel{}, f.fetchErr
	}
	return gateway.Channel{ID: id, GuildID: guildID}, nil
}

func (f *fakeGateway) FetchMessage(_ context.Context, chID, msgID string) (gateway.Message, error) {
	f.record("FetchMessage")
	return gateway.Message{ID: msgID, ChannelID: chID, GuildID: guildID}, nil
}

func (f *fakeGateway) React(_ context.Context, _, _ string, e gateway.Emoji) error {
	f.record("React")
	f.mu.Lock()
	f.reacted = append(f.reacted, e)
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) CreateTextChannel(_ context.Context, _ string, spec gateway.ChannelSpec) (gateway.Channel, error) {
	f.record("CreateTextChannel")
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, spec)
	if f.createErr != nil {
		return gateway.Channel{}, f.createErr
	}
	f.nextID++
	return gateway.Channel{ID: fmt.Sprint(f.nextID), GuildID: guildID, Name: spec.Name, ParentID: spec.ParentID}, nil
}

func (f *fakeGateway) SetPermissionOverwrite(_ context.Context, _ string, ow gateway.PermissionOverwrite) error {
	f.record("SetPermissionOverwrite")
	f.mu.Lock()
	f.overwrite = append(f.overwrite, ow)
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) SendMessage(_ context.Context, chID, content string) error {
	f.record("SendMessage")
	f.mu.Lock()
	f.sent[chID] = append(f.sent[chID], content)
	f.mu.Unlock()
	return f.sendErr
}

func (f *fakeGateway) DeleteChannel(_ context.Context, chID, reason string) error {
	f.record("DeleteChannel")
	f.mu.Lock()
	f.deleted = append(f.deleted, chID)
	f.reasons = append(f.reasons, reason)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeGateway) GuildRoles(context.Context, string) ([]gateway.Role, error) {
	f.record("GuildRoles")
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

// memRecorder collects audit events.
type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memRecorder) Record(_ context.Context, ev audit.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return nil
}

func (m *memRecorder) kinds() []audit.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Kind, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Kind)
	}
	return out
}

var target = Target{MessageID: messageID, ChannelID: channelID, CategoryID: categoryID, Emoji: bubble}

func newTestHandler(gw gateway.Gateway, rec audit.Recorder) *Handler {
	h := NewHandler(gw, NewRegistry(), target, Options{
		ChannelPrefix:  "inquiry",
		WelcomeMessage: "{user} welcome!",
		DeleteReason:   "reaction removed",
		Recorder:       rec,
	})
	h.HandleReady(context.Background(), gateway.ReadyEvent{Self: gateway.User{ID: botID, Username: "desk", Bot: true}})
	return h
}

func reaction(u gateway.User, msg string, e gateway.Emoji) gateway.ReactionEvent {
	return gateway.ReactionEvent{GuildID: guildID, ChannelID: channelID, MessageID: msg, Emoji: e, User: u}
}

func TestHandleReadyReactsToTarget(t *testing.T) {
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)

	require.Equal(t, botID, h.SelfID())
	require.Equal(t, []string{"FetchChannel", "FetchMessage", "React"}, gw.Calls())
	require.Equal(t, []gateway.Emoji{bubble}, gw.reacted)
}

func TestHandleReadyFailureIsNonFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.fetchErr = errors.New("missing access")
	h := newTestHandler(gw, nil)

	require.Equal(t, botID, h.SelfID())
	require.Equal(t, []string{"FetchChannel"}, gw.Calls())

	// the handler still serves reactions
	h.HandleReactionAdded(context.Background(), reaction(alice, messageID, bubble))
	require.Equal(t, 1, h.Registry().Len())
}

func TestReactionAddedCreatesInquiryChannel(t *testing.T) {
	req := require.New(t)
	gw := newFakeGateway()
	rec := &memRecorder{}
	h := newTestHandler(gw, rec)

	h.HandleReactionAdded(context.Background(), reaction(alice, messageID, bubble))

	req.Equal(1, gw.count("CreateTextChannel"))
	spec := gw.created[0]
	req.Equal("inquiry-al-ice", spec.Name)
	req.Equal(categoryID, spec.ParentID)
	req.Equal([]gateway.PermissionOverwrite{
		{TargetID: guildID, Kind: gateway.OverwriteRole, Deny: gateway.PermissionViewChannel},
		{TargetID: alice.ID, Kind: gateway.OverwriteMember, Allow: gateway.PermissionViewChannel | gateway.PermissionSendMessages |
			gateway.PermissionAttachFiles | gateway.PermissionReadMessageHistory | gateway.PermissionEmbedLinks},
		{TargetID: botID, Kind: gateway.OverwriteMember, Allow: gateway.PermissionViewChannel | gateway.PermissionSendMessages |
			gateway.PermissionManageChannels},
	}, spec.Overwrites)

	req.Equal([]gateway.PermissionOverwrite{{
		TargetID: adminRoleID, Kind: gateway.OverwriteRole,
		Allow: gateway.PermissionViewChannel | gateway.PermissionSendMessages | gateway.PermissionReadMessageHistory | gateway.PermissionManageMessages,
	}}, gw.overwrite)

	ch, ok := h.Registry().Lookup(alice.ID)
	req.True(ok)
	req.Equal("9001", ch)
	req.Equal([]string{"<@42> welcome!"}, gw.sent["9001"])
	req.Equal([]audit.Kind{audit.KindOpened}, rec.kinds())

	// create, then admin overwrite, then welcome
	calls := gw.Calls()
	req.Equal([]string{"GuildRoles", "CreateTextChannel", "SetPermissionOverwrite", "SendMessage"}, calls[len(calls)-4:])
}

func TestReactionAddedWithoutAdminRole(t *testing.T) {
	gw := newFakeGateway()
	gw.roles = []gateway.Role{{ID: guildID, Permissions: gateway.PermissionViewChannel}}
	h := newTestHandler(gw, nil)

	h.HandleReactionAdded(context.Background(), reaction(alice, messageID, bubble))

	require.Equal(t, 0, gw.count("SetPermissionOverwrite"))
	require.Equal(t, 1, gw.count("SendMessage"))
	require.Equal(t, 1, h.Registry().Len())
}

func TestSecondReactionAddIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)
	ctx := context.Background()

	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))

	require.Equal(t, 1, gw.count("CreateTextChannel"))
	require.Equal(t, 1, h.Registry().Len())
}

func TestCreateFailureRecordsNothing(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = errors.New("missing permissions")
	rec := &memRecorder{}
	h := newTestHandler(gw, rec)
	ctx := context.Background()

	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	require.Equal(t, 0, h.Registry().Len())
	require.Equal(t, 0, gw.count("SendMessage"))
	require.Equal(t, []audit.Kind{audit.KindOpenFailed}, rec.kinds())

	// reacting again retries
	gw.createErr = nil
	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	require.Equal(t, 2, gw.count("CreateTextChannel"))
	require.Equal(t, 1, h.Registry().Len())
}

func TestRoleFetchFailureDropsEvent(t *testing.T) {
	gw := newFakeGateway()
	gw.rolesErr = errors.New("rate limited")
	h := newTestHandler(gw, nil)

	h.HandleReactionAdded(context.Background(), reaction(alice, messageID, bubble))

	require.Equal(t, 0, gw.count("CreateTextChannel"))
	require.Equal(t, 0, h.Registry().Len())
}

func TestWelcomeFailureKeepsEntry(t *testing.T) {
	gw := newFakeGateway()
	gw.sendErr = errors.New("cannot send")
	h := newTestHandler(gw, nil)

	h.HandleReactionAdded(context.Background(), reaction(alice, messageID, bubble))

	_, ok := h.Registry().Lookup(alice.ID)
	require.True(t, ok)
}

func TestReactionRemovedDeletesChannel(t *testing.T) {
	req := require.New(t)
	gw := newFakeGateway()
	rec := &memRecorder{}
	h := newTestHandler(gw, rec)
	ctx := context.Background()

	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	ch, _ := h.Registry().Lookup(alice.ID)

	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))

	req.Equal([]string{ch}, gw.deleted)
	req.Equal([]string{"reaction removed"}, gw.reasons)
	req.Empty(h.Registry().Snapshot())
	req.Equal([]audit.Kind{audit.KindOpened, audit.KindClosed}, rec.kinds())
}

func TestDeleteFailureKeepsEntryForRetry(t *testing.T) {
	req := require.New(t)
	gw := newFakeGateway()
	rec := &memRecorder{}
	h := newTestHandler(gw, rec)
	ctx := context.Background()

	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	ch, _ := h.Registry().Lookup(alice.ID)

	gw.deleteErr = errors.New("503 service unavailable")
	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))
	got, ok := h.Registry().Lookup(alice.ID)
	req.True(ok)
	req.Equal(ch, got)

	// next unreact retries with the same channel id
	gw.deleteErr = nil
	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))
	req.Equal([]string{ch, ch}, gw.deleted)
	req.Equal(0, h.Registry().Len())
	req.Equal([]audit.Kind{audit.KindOpened, audit.KindCloseFailed, audit.KindClosed}, rec.kinds())
}

func TestDeleteOfVanishedChannelForgetsEntry(t *testing.T) {
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)
	ctx := context.Background()

	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	gw.deleteErr = fmt.Errorf("%w: 404 Unknown Channel", gateway.ErrNotFound)
	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))

	require.Equal(t, 0, h.Registry().Len())
}

func TestReactionRemovedWithoutEntryIsNoop(t *testing.T) {
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)
	before := len(gw.Calls())

	h.HandleReactionRemoved(context.Background(), reaction(bob, messageID, bubble))

	require.Len(t, gw.Calls(), before)
}

// Filtered events must not reach the gateway at all; the gomock controller
// fails the test on any unexpected call.
func TestFilteredEventsIssueNoCommands(t *testing.T) {
	thumbs := gateway.ParseEmoji("👍")
	tests := []struct {
		name string
		ev   gateway.ReactionEvent
	}{
		{"different emoji", reaction(bob, messageID, thumbs)},
		{"different message", reaction(bob, "1002", bubble)},
		{"bot account", reaction(gateway.User{ID: "55", Username: "other-bot", Bot: true}, messageID, bubble)},
		{"bot itself", reaction(gateway.User{ID: botID, Username: "desk"}, messageID, bubble)},
		{"custom emoji with same name", reaction(bob, messageID, gateway.Emoji{Name: "💬", ID: "123"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := mocks.NewMockGateway(ctrl)
			h := NewHandler(gw, NewRegistry(), target, Options{})
			h.selfID.Store(botID)

			h.HandleReactionAdded(context.Background(), tt.ev)
			h.HandleReactionRemoved(context.Background(), tt.ev)

			require.Equal(t, 0, h.Registry().Len())
		})
	}
}

func TestRemoveUsesRecordedChannelWithMock(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	reg := NewRegistry()
	reg.Record(alice.ID, "9100")
	h := NewHandler(gw, reg, target, Options{DeleteReason: "bye"})
	h.selfID.Store(botID)

	gw.EXPECT().DeleteChannel(gomock.Any(), "9100", "bye").Return(errors.New("forbidden")).Times(1)
	h.HandleReactionRemoved(context.Background(), reaction(alice, messageID, bubble))
	_, ok := reg.Lookup(alice.ID)
	req.True(ok)

	gw.EXPECT().DeleteChannel(gomock.Any(), "9100", "bye").Return(nil).Times(1)
	h.HandleReactionRemoved(context.Background(), reaction(alice, messageID, bubble))
	_, ok = reg.Lookup(alice.ID)
	req.False(ok)
}

func TestConcurrentDoubleAddCreatesOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.createGate = make(chan struct{})
	h := newTestHandler(gw, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
		close(done)
	}()
	require.Eventually(t, func() bool { return gw.count("CreateTextChannel") == 1 }, time.Second, 5*time.Millisecond)

	// the first add is parked inside CreateTextChannel
	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))

	close(gw.createGate)
	<-done

	require.Equal(t, 1, gw.count("CreateTextChannel"))
	require.Equal(t, 0, gw.count("DeleteChannel"))
	require.Equal(t, 1, h.Registry().Len())
}

func TestDifferentUsersAreIndependent(t *testing.T) {
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := gateway.User{ID: fmt.Sprint(100 + i), Username: fmt.Sprintf("user %d", i)}
			h.HandleReactionAdded(ctx, reaction(u, messageID, bubble))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 10, h.Registry().Len())
	require.Equal(t, 10, gw.count("CreateTextChannel"))
}

func TestEndToEndScenario(t *testing.T) {
	req := require.New(t)
	gw := newFakeGateway()
	h := newTestHandler(gw, nil)
	ctx := context.Background()

	// Alice reacts
	h.HandleReactionAdded(ctx, reaction(alice, messageID, bubble))
	req.Equal("inquiry-al-ice", gw.created[0].Name)
	req.Len(gw.created[0].Overwrites, 3)
	req.Equal([]Entry{{UserID: "42", ChannelID: "9001"}}, h.Registry().Snapshot())
	req.True(strings.HasPrefix(gw.sent["9001"][0], "<@42>"))

	// Bob reacts with a different emoji
	before := len(gw.Calls())
	h.HandleReactionAdded(ctx, reaction(bob, messageID, gateway.ParseEmoji("👍")))
	req.Len(gw.Calls(), before)
	req.Equal(1, h.Registry().Len())

	// Alice un-reacts
	h.HandleReactionRemoved(ctx, reaction(alice, messageID, bubble))
	req.Equal([]string{"9001"}, gw.deleted)
	req.Empty(h.Registry().Snapshot())
}

func TestRegisterSubscribesAllEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockEventSource(ctrl)
	src.EXPECT().FilterReactions(gomock.Any()).Times(1)
	src.EXPECT().OnReady(gomock.Any()).Times(1)
	src.EXPECT().OnReactionAdd(gomock.Any()).Times(1)
	src.EXPECT().OnReactionRemove(gomock.Any()).Times(1)

	NewHandler(newFakeGateway(), NewRegistry(), target, Options{}).Register(src)
}

func TestWelcomeWithoutPlaceholderPrependsMention(t *testing.T) {
	h := NewHandler(newFakeGateway(), NewRegistry(), target, Options{WelcomeMessage: "hello there"})
	require.Equal(t, "<@42> hello there", h.welcome(alice))
}

func TestWantsReactionMatchesOnlyTarget(t *testing.T) {
	req := require.New(t)
	h := NewHandler(newFakeGateway(), NewRegistry(), target, Options{})

	req.True(h.wantsReaction(messageID, target.Emoji))
	req.False(h.wantsReaction("99999", target.Emoji))
	req.False(h.wantsReaction(messageID, gateway.Emoji{Name: "👍"}))
	req.False(h.wantsReaction(messageID, gateway.Emoji{Name: target.Emoji.Name, ID: "555"}))
}
