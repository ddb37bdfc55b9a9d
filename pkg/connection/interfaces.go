package connection

import "context"

// State is the transport connection state.
type State int32

const (
	// StateDisconnected means no socket is open.
	StateDisconnected State = iota

	// StateConnecting means the dial/handshake is in progress.
	StateConnecting

	// StateConnected means the server acknowledged the connection.
	StateConnected

	// StateDisconnecting means a local Disconnect is in progress.
	StateDisconnecting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnecting:
		return "DISCONNECTING"
	default:
		return "UNKNOWN"
	}
}

// MessageRouter receives inbound channel-scoped envelopes. Implemented by
// the client's channel registry. Deliver runs on the connection's inbound
// goroutine and must not block; a returned error marks the envelope (not the
// connection) as bad and is logged.
type MessageRouter interface {
	Deliver(channel, event, raw string) error
}

// Listener observes connection-level happenings. All callbacks run on the
// connection's inbound goroutine.
type Listener interface {
	// OnStateChange is called for every transition.
	OnStateChange(previous, current State)

	// OnError is called for server error events and read failures.
	// code is the protocol error code, zero when absent.
	OnError(message string, code int, err error)
}

// Connection is the transport consumed by the client facade.
// Implemented by WebSocket.
type Connection interface {
	// Connect dials and blocks until the server acknowledges the
	// connection or ctx expires.
	Connect(ctx context.Context) error

	// Disconnect closes the socket and waits for the inbound pump to stop.
	Disconnect() error

	// Send writes an envelope verbatim as one text frame.
	Send(message string) error

	// State returns the current connection state.
	State() State

	// SocketID returns the server-assigned socket identifier,
	// empty until connected.
	SocketID() string
}

// Compile-time interface satisfaction check.
var _ Connection = (*WebSocket)(nil)
