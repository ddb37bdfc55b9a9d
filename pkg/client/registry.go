package client

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jesusruizlopez/pusher-java-client/pkg/channel"
)

// ManagedChannel is the surface the client needs from every channel
// kind. *channel.Channel, *channel.PrivateChannel and
// *channel.PresenceChannel all satisfy it.
type ManagedChannel interface {
	Name() string
	State() channel.State
	SubscribeMessage() (string, error)
	UnsubscribeMessage() (string, error)
	MarkSubscribeSent()
	OnMessage(event, raw string) error
}

var (
	_ ManagedChannel = (*channel.Channel)(nil)
	_ ManagedChannel = (*channel.PrivateChannel)(nil)
	_ ManagedChannel = (*channel.PresenceChannel)(nil)
)

// Registry holds the channels the client knows about, keyed by name.
// It is the message router for the connection: inbound channel-scoped
// envelopes are handed to the owning channel.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]ManagedChannel
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]ManagedChannel)}
}

// Add registers a channel. A second channel with the same name is
// rejected.
func (r *Registry) Add(ch ManagedChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := ch.Name()
	if _, exists := r.channels[name]; exists {
		return fmt.Errorf("%w: already subscribed to %s", channel.ErrInvalidArgument, name)
	}
	r.channels[name] = ch
	return nil
}

// Remove forgets the channel with the given name. Removing an unknown
// name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, name)
}

// Get returns the channel with the given name, nil when unknown.
func (r *Registry) Get(name string) ManagedChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[name]
}

// All returns the registered channels sorted by name.
func (r *Registry) All() []ManagedChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]ManagedChannel, 0, len(r.channels))
	for _, ch := range r.channels {
		all = append(all, ch)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// Deliver routes one inbound envelope to the channel it names. An
// envelope for an unknown channel is an error so the connection can
// surface it.
func (r *Registry) Deliver(name, event, raw string) error {
	ch := r.Get(name)
	if ch == nil {
		return fmt.Errorf("no subscription for channel %s", name)
	}
	return ch.OnMessage(event, raw)
}
