package channel

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jesusruizlopez/pusher-java-client/pkg/dispatch"
	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
	"github.com/jesusruizlopez/pusher-java-client/pkg/wire"
)

// Reserved channel-name prefixes for restricted channel classes.
const (
	// PrivatePrefix marks channels requiring authorization.
	PrivatePrefix = "private-"

	// PresencePrefix marks authorized channels with member tracking.
	PresencePrefix = "presence-"
)

// namePredicate reports whether a name is acceptable for a channel class.
// Each class carries its own predicate instead of overriding validation.
type namePredicate func(name string) bool

func standardName(name string) bool {
	return !strings.HasPrefix(name, PrivatePrefix) && !strings.HasPrefix(name, PresencePrefix)
}

func privateName(name string) bool {
	return strings.HasPrefix(name, PrivatePrefix)
}

func presenceName(name string) bool {
	return strings.HasPrefix(name, PresencePrefix)
}

// Config holds the collaborators a channel needs.
type Config struct {
	// Dispatcher executes listener callbacks off the decode path. Required.
	Dispatcher dispatch.Dispatcher

	// Logger receives channel-layer protocol events. Optional.
	Logger log.Logger

	// ConnectionID correlates log events with a connection. Optional.
	ConnectionID string
}

// Channel is the subscription state machine for one named topic.
//
// The lifecycle state is written only from the decode path and the explicit
// unsubscribe/subscribe-sent calls, and read lock-free from any goroutine.
// The listener map and continuity token are mutex-guarded.
type Channel struct {
	name       string
	dispatcher dispatch.Dispatcher
	logger     log.Logger
	connID     string

	state atomic.Int32

	mu          sync.RWMutex
	listeners   map[string]map[EventListener]struct{}
	resumeAfter string
	lifecycle   ChannelListener
}

// New creates a standard channel. Names using the reserved "private-" or
// "presence-" prefixes are rejected; use NewPrivate or NewPresence for those
// classes.
func New(name string, cfg Config) (*Channel, error) {
	return newChannel(name, cfg, standardName, ErrNameReserved)
}

func newChannel(name string, cfg Config, valid namePredicate, nameErr error) (*Channel, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if !valid(name) {
		return nil, fmt.Errorf("%w: %q", nameErr, name)
	}
	if cfg.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	return &Channel{
		name:       name,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		connID:     cfg.ConnectionID,
		listeners:  make(map[string]map[EventListener]struct{}),
	}, nil
}

// Name returns the immutable channel name.
func (c *Channel) Name() string {
	return c.name
}

// State returns the current lifecycle state. Safe to call from any
// goroutine without synchronization.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// ResumeAfter returns the current continuity token, empty when absent.
func (c *Channel) ResumeAfter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resumeAfter
}

// SetResumeAfter overwrites the continuity token. Last write wins.
func (c *Channel) SetResumeAfter(id string) {
	c.mu.Lock()
	c.resumeAfter = id
	c.mu.Unlock()
}

// MarkSubscribeSent records that the subscribe envelope was handed to the
// transport. Driven by the owning client; a no-op once the channel is
// unsubscribed.
func (c *Channel) MarkSubscribeSent() {
	c.setState(StateSubscribeSent)
}

// setState transitions the lifecycle state. StateUnsubscribed is sticky:
// no transition leaves it.
func (c *Channel) setState(to State) {
	c.mu.Lock()
	from := State(c.state.Load())
	if from == StateUnsubscribed {
		c.mu.Unlock()
		return
	}
	c.state.Store(int32(to))
	c.mu.Unlock()

	if from != to {
		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerChannel,
			Category:     log.CategoryState,
			Channel:      c.name,
			StateChange:  &log.StateChangeEvent{From: from.String(), To: to.String()},
		})
	}
}

// Bind registers a listener for an event name. Registering the same
// listener twice for one event is a no-op (set semantics).
func (c *Channel) Bind(event string, listener EventListener) error {
	if err := c.validateBinding(event, listener); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.listeners[event]
	if set == nil {
		set = make(map[EventListener]struct{})
		c.listeners[event] = set
	}
	set[listener] = struct{}{}
	return nil
}

// Unbind removes a listener registration. Removing a listener that was
// never bound is not an error. The event entry is dropped once its set
// becomes empty.
func (c *Channel) Unbind(event string, listener EventListener) error {
	if err := c.validateBinding(event, listener); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.listeners[event]
	if set == nil {
		return nil
	}
	delete(set, listener)
	if len(set) == 0 {
		delete(c.listeners, event)
	}
	return nil
}

// Listeners returns the listeners currently bound for an event name,
// possibly empty. The returned slice is a snapshot.
func (c *Channel) Listeners(event string) []EventListener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listenersLocked(event)
}

func (c *Channel) listenersLocked(event string) []EventListener {
	set := c.listeners[event]
	if len(set) == 0 {
		return nil
	}
	snapshot := make([]EventListener, 0, len(set))
	for listener := range set {
		snapshot = append(snapshot, listener)
	}
	return snapshot
}

func (c *Channel) validateBinding(event string, listener EventListener) error {
	if event == "" {
		return ErrEmptyEventName
	}
	if listener == nil {
		return ErrNilListener
	}
	if wire.IsInternalEvent(event) {
		return fmt.Errorf("%w: %q", ErrInternalEvent, event)
	}
	if c.State() == StateUnsubscribed {
		return fmt.Errorf("%w: %q", ErrUnsubscribed, c.name)
	}
	return nil
}

// SetChannelListener installs the lifecycle listener. Single slot,
// last write wins; pass nil to clear.
func (c *Channel) SetChannelListener(listener ChannelListener) {
	c.mu.Lock()
	c.lifecycle = listener
	c.mu.Unlock()
}

// ChannelListener returns the installed lifecycle listener, nil when absent.
func (c *Channel) ChannelListener() ChannelListener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lifecycle
}

// SubscribeMessage builds the subscribe envelope for the transport.
// The continuity token is included when one survived a previous delivery.
func (c *Channel) SubscribeMessage() (string, error) {
	return wire.EncodeSubscribe(wire.SubscribeParams{
		Channel:     c.name,
		ResumeAfter: c.ResumeAfter(),
	})
}

// UnsubscribeMessage builds the unsubscribe envelope and transitions the
// channel to its terminal state. Registered listeners are kept: a later
// subscription to the same name may reuse them.
func (c *Channel) UnsubscribeMessage() (string, error) {
	text, err := wire.EncodeUnsubscribe(c.name)
	if err != nil {
		return "", err
	}
	c.setState(StateUnsubscribed)
	return text, nil
}

// OnMessage interprets an inbound envelope for this channel. It runs on the
// transport's inbound goroutine and never invokes listener code directly;
// all callbacks go through the dispatcher.
//
// A malformed envelope is reported to the caller, which decides whether the
// connection is compromised; nothing is retried here.
func (c *Channel) OnMessage(event, raw string) error {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return err
	}

	if event == wire.EventSubscriptionSucceeded {
		return c.onSubscriptionSucceeded(env)
	}

	c.mu.Lock()
	// Any delivered id overwrites the continuity token. No ordering
	// check: an out-of-order redelivery regresses the token.
	if env.ID != "" {
		c.resumeAfter = env.ID
	}
	targets := c.listenersLocked(event)
	c.mu.Unlock()

	// No listeners bound is a silent drop, not an error.
	for _, listener := range targets {
		listener := listener
		c.dispatcher.Submit(func() {
			listener.OnEvent(c.name, event, env.Data)
		})
	}
	return nil
}

func (c *Channel) onSubscriptionSucceeded(env *wire.Envelope) error {
	sub, err := wire.DecodeSubscriptionData(env.Data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.resumeAfter = sub.ResumeAfter
	lifecycle := c.lifecycle
	c.mu.Unlock()

	c.setState(StateSubscribed)

	if lifecycle != nil {
		c.dispatcher.Submit(func() {
			lifecycle.OnSubscriptionSucceeded(c.name)
		})
	}
	return nil
}

// String implements fmt.Stringer.
func (c *Channel) String() string {
	return fmt.Sprintf("[channel %s %s]", c.name, c.State())
}
