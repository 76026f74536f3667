package inquiry

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Entry is one open inquiry: the member who reacted and the channel created
// for them.
type Entry struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
}

// Registry maps user ids to their inquiry channel. At most one entry exists
// per user. It also tracks which users have an operation in flight so that
// overlapping events for the same user cannot both reach the gateway.
//
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu       sync.Mutex
	channels map[string]string
	inflight map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]string),
		inflight: make(map[string]struct{}),
	}
}

// Lookup returns the channel recorded for userID.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[userID]
	return ch, ok
}

// Record stores userID → channelID, replacing any previous entry.
func (r *Registry) Record(userID, channelID string) {
	r.mu.Lock()
	r.channels[userID] = channelID
	r.mu.Unlock()
}

// Forget removes the entry for userID, if any.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	delete(r.channels, userID)
	r.mu.Unlock()
}

// Len returns the number of open inquiries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

// Snapshot returns a copy of all entries ordered by user id.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	entries := lo.MapToSlice(r.channels, func(user, ch string) Entry {
		return Entry{UserID: user, ChannelID: ch}
	})
	r.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// Acquire marks userID as busy. It returns false if an operation for that
// user is already in flight. Every successful Acquire must be paired with
// Release.
func (r *Registry) Acquire(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[userID]; busy {
		return false
	}
	r.inflight[userID] = struct{}{}
	return true
}

// Release clears the in-flight marker for userID.
func (r *Registry) Release(userID string) {
	r.mu.Lock()
	delete(r.inflight, userID)
	r.mu.Unlock()
}
