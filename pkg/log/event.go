package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the local connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// SocketID is the server-assigned connection identifier
	// (populated once the connection is established).
	SocketID string `cbor:"6,keyasint,omitempty"`

	// Channel is the channel name for channel-scoped events.
	Channel string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`  // Transport layer
	Message     *MessageEvent     `cbor:"9,keyasint,omitempty"`  // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Connection/channel state
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the WebSocket framing layer (raw text frames).
	LayerTransport Layer = 0
	// LayerWire is the envelope encoding layer (decoded JSON).
	LayerWire Layer = 1
	// LayerChannel is the subscription/channel layer.
	LayerChannel Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerChannel:
		return "CHANNEL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxLoggedPayloadSize is the maximum payload size included in log events.
// Larger payloads are truncated to bound capture file growth.
const MaxLoggedPayloadSize = 4096

// FrameEvent captures a raw text frame at the transport layer.
type FrameEvent struct {
	// Size is the original frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Text is the frame content, possibly truncated.
	Text string `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Text was cut at MaxLoggedPayloadSize.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded envelope at the wire layer.
type MessageEvent struct {
	// Event is the protocol event name.
	Event string `cbor:"1,keyasint"`

	// ID is the delivery identifier, empty when absent.
	ID string `cbor:"2,keyasint,omitempty"`

	// Payload is the event data, possibly truncated.
	Payload string `cbor:"3,keyasint,omitempty"`

	// Truncated indicates Payload was cut at MaxLoggedPayloadSize.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures a connection or channel state transition.
type StateChangeEvent struct {
	// From is the previous state name.
	From string `cbor:"1,keyasint"`

	// To is the new state name.
	To string `cbor:"2,keyasint"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message describes the error.
	Message string `cbor:"1,keyasint"`

	// Code is the protocol error code, zero when absent.
	Code int `cbor:"2,keyasint,omitempty"`
}

// TruncatePayload clips a payload to MaxLoggedPayloadSize, reporting
// whether clipping occurred.
func TruncatePayload(payload string) (string, bool) {
	if len(payload) <= MaxLoggedPayloadSize {
		return payload, false
	}
	return payload[:MaxLoggedPayloadSize], true
}
