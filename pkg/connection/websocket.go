package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
	"github.com/jesusruizlopez/pusher-java-client/pkg/wire"
)

// DefaultConnectTimeout bounds Connect when the context has no deadline.
const DefaultConnectTimeout = 30 * time.Second

// Connection errors.
var (
	// ErrNotConnected indicates a Send/Disconnect without an open socket.
	ErrNotConnected = errors.New("connection is not established")

	// ErrAlreadyConnected indicates a Connect on an open socket.
	ErrAlreadyConnected = errors.New("connection is already established")
)

// Config configures a WebSocket connection.
type Config struct {
	// URL is the full ws:// or wss:// endpoint. Required.
	URL string

	// Router receives channel-scoped inbound envelopes. Required.
	Router MessageRouter

	// Listener observes state changes and errors. Optional.
	Listener Listener

	// Logger receives transport/wire protocol events. Optional.
	Logger log.Logger

	// ConnectTimeout bounds Connect when the context carries no
	// deadline (default: 30s).
	ConnectTimeout time.Duration

	// ConnectionID correlates log events. A random one is generated
	// when empty.
	ConnectionID string
}

// WebSocket is a Connection over a WebSocket text stream.
type WebSocket struct {
	config Config
	logger log.Logger

	// connID correlates log events across the connection's lifetime.
	connID string

	state atomic.Int32

	mu       sync.Mutex
	conn     *websocket.Conn
	socketID string

	// established is closed by the pump when the server acknowledges
	// the connection. Recreated on every Connect.
	established chan struct{}

	writeMu sync.Mutex
	pumpWg  sync.WaitGroup
}

// NewWebSocket creates a connection for the given configuration.
func NewWebSocket(config Config) (*WebSocket, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("connection URL is required")
	}
	if config.Router == nil {
		return nil, fmt.Errorf("message router is required")
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	connID := config.ConnectionID
	if connID == "" {
		connID = uuid.New().String()
	}

	return &WebSocket{
		config: config,
		logger: logger,
		connID: connID,
	}, nil
}

// ConnectionID returns the local identifier used in log events.
func (w *WebSocket) ConnectionID() string {
	return w.connID
}

// State returns the current connection state. Safe from any goroutine.
func (w *WebSocket) State() State {
	return State(w.state.Load())
}

// SocketID returns the server-assigned socket identifier, empty until the
// connection is established.
func (w *WebSocket) SocketID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.socketID
}

// Connect dials the endpoint and blocks until the server sends
// connection_established or the context expires.
func (w *WebSocket) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.conn != nil {
		w.mu.Unlock()
		return ErrAlreadyConnected
	}
	w.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.ConnectTimeout)
		defer cancel()
	}

	w.setState(StateConnecting)

	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, w.config.URL, nil)
	if err != nil {
		w.setState(StateDisconnected)
		return fmt.Errorf("dial failed: %w", err)
	}

	established := make(chan struct{})

	w.mu.Lock()
	w.conn = conn
	w.socketID = ""
	w.established = established
	w.mu.Unlock()

	w.pumpWg.Add(1)
	go w.pump(conn, established)

	select {
	case <-established:
		return nil
	case <-ctx.Done():
		w.teardown(conn)
		return fmt.Errorf("connect: %w", ctx.Err())
	}
}

// Disconnect closes the socket and waits for the inbound pump to exit.
// Disconnecting an already-closed connection is a no-op.
func (w *WebSocket) Disconnect() error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return nil
	}

	w.setState(StateDisconnecting)

	// Best effort close handshake; the server may already be gone.
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	w.teardown(conn)
	return nil
}

// Send writes an envelope as one text frame.
func (w *WebSocket) Send(message string) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	w.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, []byte(message))
	w.writeMu.Unlock()

	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	w.logFrame(log.DirectionOut, message)
	return nil
}

// teardown closes the socket and waits for the pump.
func (w *WebSocket) teardown(conn *websocket.Conn) {
	conn.Close()
	w.pumpWg.Wait()

	w.mu.Lock()
	if w.conn == conn {
		w.conn = nil
	}
	w.mu.Unlock()

	w.setState(StateDisconnected)
}

// pump reads frames until the socket dies. It is the only reader.
func (w *WebSocket) pump(conn *websocket.Conn, established chan struct{}) {
	defer w.pumpWg.Done()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			w.onReadClosed(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		raw := string(data)
		w.logFrame(log.DirectionIn, raw)
		w.handleFrame(raw, established)
	}
}

// onReadClosed finishes the pump after a read failure or remote close.
func (w *WebSocket) onReadClosed(err error) {
	expected := w.State() == StateDisconnecting

	w.mu.Lock()
	w.conn = nil
	w.mu.Unlock()

	w.setState(StateDisconnected)

	if !expected {
		w.logError("connection lost: "+err.Error(), 0)
		if w.config.Listener != nil {
			w.config.Listener.OnError("connection lost", 0, err)
		}
	}
}

// handleFrame decodes the outer envelope once and routes it.
func (w *WebSocket) handleFrame(raw string, established chan struct{}) {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		w.logError("undecodable frame: "+err.Error(), 0)
		if w.config.Listener != nil {
			w.config.Listener.OnError("undecodable frame", 0, err)
		}
		return
	}

	w.logMessage(env)

	if env.Channel != "" {
		if err := w.config.Router.Deliver(env.Channel, env.Event, raw); err != nil {
			w.logError(fmt.Sprintf("channel %s: %v", env.Channel, err), 0)
			if w.config.Listener != nil {
				w.config.Listener.OnError("channel delivery failed", 0, err)
			}
		}
		return
	}

	switch env.Event {
	case wire.EventConnectionEstablished:
		w.onEstablished(env, established)

	case wire.EventPing:
		_ = w.Send(wire.EncodePong())

	case wire.EventError:
		ed := wire.DecodeErrorData(env.Data)
		w.logError(ed.Message, ed.Code)
		if w.config.Listener != nil {
			w.config.Listener.OnError(ed.Message, ed.Code, nil)
		}
	}
	// Unknown connection-level events are ignored.
}

func (w *WebSocket) onEstablished(env *wire.Envelope, established chan struct{}) {
	data, err := wire.DecodeConnectionData(env.Data)
	if err != nil {
		w.logError("malformed connection_established: "+err.Error(), 0)
		if w.config.Listener != nil {
			w.config.Listener.OnError("malformed connection_established", 0, err)
		}
		return
	}

	w.mu.Lock()
	w.socketID = data.SocketID
	w.mu.Unlock()

	w.setState(StateConnected)

	select {
	case <-established:
		// Already signaled; a duplicate established event is ignored.
	default:
		close(established)
	}
}

func (w *WebSocket) setState(to State) {
	from := State(w.state.Swap(int32(to)))
	if from == to {
		return
	}

	w.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: w.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		SocketID:     w.SocketID(),
		StateChange:  &log.StateChangeEvent{From: from.String(), To: to.String()},
	})

	if w.config.Listener != nil {
		w.config.Listener.OnStateChange(from, to)
	}
}

func (w *WebSocket) logFrame(direction log.Direction, text string) {
	clipped, truncated := log.TruncatePayload(text)
	w.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: w.connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      len(text),
			Text:      clipped,
			Truncated: truncated,
		},
	})
}

func (w *WebSocket) logMessage(env *wire.Envelope) {
	payload, truncated := log.TruncatePayload(env.Data)
	w.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: w.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Channel:      env.Channel,
		Message: &log.MessageEvent{
			Event:     env.Event,
			ID:        env.ID,
			Payload:   payload,
			Truncated: truncated,
		},
	})
}

func (w *WebSocket) logError(message string, code int) {
	w.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: w.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		Error:        &log.ErrorEventData{Message: message, Code: code},
	})
}
