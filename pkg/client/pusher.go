package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
	"github.com/jesusruizlopez/pusher-java-client/pkg/channel"
	"github.com/jesusruizlopez/pusher-java-client/pkg/connection"
	"github.com/jesusruizlopez/pusher-java-client/pkg/dispatch"
	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

// Client owns one connection, the channel registry and the dispatch
// queue behind all listener callbacks.
type Client struct {
	apiKey  string
	options *Options
	logger  log.Logger
	connID  string

	dispatcher *dispatch.Queue
	registry   *Registry

	mu       sync.Mutex
	conn     *connection.WebSocket
	listener connection.Listener
}

// New creates a client for the given application key. Pass nil options
// for the defaults.
func New(apiKey string, options *Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: application key is required", channel.ErrInvalidArgument)
	}
	if options == nil {
		options = NewOptions()
	}
	logger := options.Logger()
	if logger == nil {
		logger = log.NoopLogger{}
	}

	return &Client{
		apiKey:     apiKey,
		options:    options,
		logger:     logger,
		connID:     uuid.New().String(),
		dispatcher: dispatch.NewQueue(nil),
		registry:   NewRegistry(),
	}, nil
}

// SetConnectionListener installs a listener for connection state
// changes and errors. Must be called before Connect.
func (c *Client) SetConnectionListener(listener connection.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = listener
}

// Connect dials the endpoint, blocks until the connection is
// established and then subscribes every registered channel.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return connection.ErrAlreadyConnected
	}

	conn, err := connection.NewWebSocket(connection.Config{
		URL:          c.options.BuildURL(c.apiKey),
		Router:       c.registry,
		Listener:     c.listener,
		Logger:       c.logger,
		ConnectionID: c.connID,
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.conn = conn
	c.mu.Unlock()

	c.dispatcher.Start()

	if err := conn.Connect(ctx); err != nil {
		c.dispatcher.Stop()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		return err
	}

	// Channels registered before this connect, or carried over from a
	// previous one, are (re)subscribed now. Their continuity token rides
	// along in the subscribe message.
	for _, ch := range c.registry.All() {
		if ch.State() == channel.StateUnsubscribed {
			continue
		}
		if err := c.sendSubscribe(ch); err != nil {
			return fmt.Errorf("subscribing %s: %w", ch.Name(), err)
		}
	}
	return nil
}

// Disconnect closes the connection and drains the dispatch queue.
// Registered channels stay registered and are subscribed again on the
// next Connect if they are not unsubscribed.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Disconnect()
	c.dispatcher.Stop()
	return err
}

// Connection returns the live connection, nil when disconnected.
func (c *Client) Connection() *connection.WebSocket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Subscribe registers a channel and, when connected, sends the
// subscribe message. Subscribing a name twice is an error.
func (c *Client) Subscribe(name string) (*channel.Channel, error) {
	ch, err := channel.New(name, c.channelConfig())
	if err != nil {
		return nil, err
	}
	if err := c.register(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// SubscribePrivate registers a private channel. It requires an
// authorizer in the options.
func (c *Client) SubscribePrivate(name string) (*channel.PrivateChannel, error) {
	authorizer, err := c.requireAuthorizer()
	if err != nil {
		return nil, err
	}
	ch, err := channel.NewPrivate(name, authorizer, c.channelConfig())
	if err != nil {
		return nil, err
	}
	if err := c.register(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// SubscribePresence registers a presence channel. It requires an
// authorizer in the options.
func (c *Client) SubscribePresence(name string) (*channel.PresenceChannel, error) {
	authorizer, err := c.requireAuthorizer()
	if err != nil {
		return nil, err
	}
	ch, err := channel.NewPresence(name, authorizer, c.channelConfig())
	if err != nil {
		return nil, err
	}
	if err := c.register(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Unsubscribe sends the unsubscribe message for the named channel and
// removes it from the registry. The channel object itself moves to its
// terminal state.
func (c *Client) Unsubscribe(name string) error {
	ch := c.registry.Get(name)
	if ch == nil {
		return fmt.Errorf("%w: not subscribed to %s", channel.ErrInvalidArgument, name)
	}

	msg, err := ch.UnsubscribeMessage()
	if err != nil {
		return err
	}
	c.registry.Remove(name)

	if conn := c.Connection(); conn != nil {
		return conn.Send(msg)
	}
	return nil
}

// Channel returns the registered channel with the given name, nil when
// unknown.
func (c *Client) Channel(name string) ManagedChannel {
	return c.registry.Get(name)
}

// Channels returns all registered channels sorted by name.
func (c *Client) Channels() []ManagedChannel {
	return c.registry.All()
}

func (c *Client) channelConfig() channel.Config {
	return channel.Config{
		Dispatcher:   c.dispatcher,
		Logger:       c.logger,
		ConnectionID: c.connID,
	}
}

func (c *Client) requireAuthorizer() (auth.Authorizer, error) {
	authorizer := c.options.Authorizer()
	if authorizer == nil {
		return nil, channel.ErrNilAuthorizer
	}
	return authorizer, nil
}

func (c *Client) register(ch ManagedChannel) error {
	if err := c.registry.Add(ch); err != nil {
		return err
	}
	if conn := c.Connection(); conn != nil && conn.State() == connection.StateConnected {
		if err := c.sendSubscribe(ch); err != nil {
			c.registry.Remove(ch.Name())
			return err
		}
	}
	return nil
}

// sendSubscribe authorizes when the channel kind requires it, then
// sends the subscribe message and records the pending state.
func (c *Client) sendSubscribe(ch ManagedChannel) error {
	conn := c.Connection()
	if conn == nil {
		return connection.ErrNotConnected
	}

	if authorized, ok := ch.(interface{ Authorize(socketID string) error }); ok {
		if err := authorized.Authorize(conn.SocketID()); err != nil {
			return err
		}
	}

	msg, err := ch.SubscribeMessage()
	if err != nil {
		return err
	}
	if err := conn.Send(msg); err != nil {
		return err
	}
	ch.MarkSubscribeSent()
	return nil
}
