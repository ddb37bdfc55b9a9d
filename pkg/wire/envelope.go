package wire

import (
	"encoding/json"
	"strings"
)

// Protocol event names.
const (
	// EventSubscribe is the outbound subscription request.
	EventSubscribe = "pusher:subscribe"

	// EventUnsubscribe is the outbound unsubscription request.
	EventUnsubscribe = "pusher:unsubscribe"

	// EventConnectionEstablished carries the socket ID after connect.
	EventConnectionEstablished = "pusher:connection_established"

	// EventError carries a connection-level error from the server.
	EventError = "pusher:error"

	// EventPing is an application-level keepalive probe.
	EventPing = "pusher:ping"

	// EventPong answers a ping.
	EventPong = "pusher:pong"

	// EventSubscriptionSucceeded confirms a subscription for a channel.
	EventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"

	// EventMemberAdded announces a presence channel member joining.
	EventMemberAdded = "pusher_internal:member_added"

	// EventMemberRemoved announces a presence channel member leaving.
	EventMemberRemoved = "pusher_internal:member_removed"
)

// InternalEventPrefix marks protocol-internal events that must never be
// observed by application listeners.
const InternalEventPrefix = "pusher_internal:"

// IsInternalEvent reports whether the event name is reserved for
// protocol-internal use.
func IsInternalEvent(event string) bool {
	return strings.HasPrefix(event, InternalEventPrefix)
}

// Envelope is a decoded inbound protocol envelope.
type Envelope struct {
	// Event is the event name. Always present.
	Event string `json:"event"`

	// Channel is the routing key for channel-scoped events.
	// Empty for connection-level events.
	Channel string `json:"channel,omitempty"`

	// Data is the payload, itself JSON text. Decoded lazily: only
	// protocol-internal events inspect it; application payloads are
	// passed through opaquely.
	Data string `json:"data,omitempty"`

	// ID is the delivery identifier used as the continuity token.
	// Empty when the event carries none.
	ID string `json:"id,omitempty"`
}

// SubscribeParams describes an outbound subscribe envelope.
type SubscribeParams struct {
	// Channel is the channel name. Required.
	Channel string `json:"channel"`

	// ResumeAfter asks the server to resume delivery after this
	// continuity token. Omitted when empty.
	ResumeAfter string `json:"resume_after,omitempty"`

	// Auth is the authorization signature for restricted channels.
	Auth string `json:"auth,omitempty"`

	// ChannelData is the signed user data for presence channels.
	ChannelData string `json:"channel_data,omitempty"`
}

// SubscriptionData is the decoded payload of a subscription_succeeded event.
type SubscriptionData struct {
	// ResumeAfter is the server-issued continuity token. May be empty.
	ResumeAfter string `json:"resume_after"`

	// Presence is the member snapshot sent on presence channels.
	Presence *PresenceSnapshot `json:"presence"`
}

// PresenceSnapshot lists the members present when a subscription succeeded.
type PresenceSnapshot struct {
	// IDs are the user IDs of current members.
	IDs []string `json:"ids"`

	// Hash maps user IDs to their user info, kept as raw JSON.
	Hash map[string]json.RawMessage `json:"hash"`

	// Count is the number of members.
	Count int `json:"count"`
}

// MemberData is the decoded payload of a member_added/member_removed event.
type MemberData struct {
	// UserID identifies the member.
	UserID string `json:"user_id"`

	// UserInfo is application-defined member data, kept as raw JSON.
	UserInfo json.RawMessage `json:"user_info,omitempty"`
}

// ConnectionData is the decoded payload of a connection_established event.
type ConnectionData struct {
	// SocketID is the server-assigned identifier for this connection,
	// required by the authorization flow for restricted channels.
	SocketID string `json:"socket_id"`

	// ActivityTimeout is the server-suggested keepalive interval in seconds.
	ActivityTimeout int `json:"activity_timeout"`
}

// ErrorData is the decoded payload of a pusher:error event.
type ErrorData struct {
	// Message is the human-readable error description.
	Message string `json:"message"`

	// Code is the protocol error code, zero when absent.
	Code int `json:"code"`
}
