package wire

import (
	"encoding/json"
	"fmt"
)

// DecodeError indicates a malformed inbound envelope or payload.
// It is surfaced to the caller of the decode path; this layer never retries
// or attempts partial recovery.
type DecodeError struct {
	// What names the structure that failed to decode.
	What string

	// Cause is the underlying JSON error, nil for structural failures.
	Cause error
}

// Error returns the error description.
func (e *DecodeError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("malformed %s", e.What)
	}
	return fmt.Sprintf("malformed %s: %v", e.What, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// EncodeSubscribe builds the subscribe envelope text.
// The resume_after field is included only when params carry a
// non-empty continuity token.
func EncodeSubscribe(params SubscribeParams) (string, error) {
	env := struct {
		Event string          `json:"event"`
		Data  SubscribeParams `json:"data"`
	}{
		Event: EventSubscribe,
		Data:  params,
	}
	text, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode subscribe envelope: %w", err)
	}
	return string(text), nil
}

// EncodeUnsubscribe builds the unsubscribe envelope text.
// Unsubscribe never carries a continuity token.
func EncodeUnsubscribe(channel string) (string, error) {
	env := struct {
		Event string `json:"event"`
		Data  struct {
			Channel string `json:"channel"`
		} `json:"data"`
	}{Event: EventUnsubscribe}
	env.Data.Channel = channel

	text, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode unsubscribe envelope: %w", err)
	}
	return string(text), nil
}

// EncodePong builds the pong envelope answering a server ping.
func EncodePong() string {
	return `{"event":"pusher:pong","data":"{}"}`
}

// DecodeEnvelope parses the outer protocol envelope. The data field is left
// as opaque text; use the Decode*Data helpers for events whose payload must
// be inspected.
func DecodeEnvelope(text string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &DecodeError{What: "protocol envelope", Cause: err}
	}
	if env.Event == "" {
		return nil, &DecodeError{What: "protocol envelope: missing event"}
	}
	return &env, nil
}

// DecodeSubscriptionData parses the nested payload of a
// subscription_succeeded event. An empty payload is valid and yields
// zero values (the server is not required to issue a continuity token).
func DecodeSubscriptionData(data string) (*SubscriptionData, error) {
	sub := &SubscriptionData{}
	if data == "" {
		return sub, nil
	}
	if err := json.Unmarshal([]byte(data), sub); err != nil {
		return nil, &DecodeError{What: "subscription data", Cause: err}
	}
	return sub, nil
}

// DecodeMemberData parses the nested payload of a member_added or
// member_removed event.
func DecodeMemberData(data string) (*MemberData, error) {
	var member MemberData
	if err := json.Unmarshal([]byte(data), &member); err != nil {
		return nil, &DecodeError{What: "member data", Cause: err}
	}
	if member.UserID == "" {
		return nil, &DecodeError{What: "member data: missing user_id"}
	}
	return &member, nil
}

// DecodeConnectionData parses the nested payload of a
// connection_established event.
func DecodeConnectionData(data string) (*ConnectionData, error) {
	var conn ConnectionData
	if err := json.Unmarshal([]byte(data), &conn); err != nil {
		return nil, &DecodeError{What: "connection data", Cause: err}
	}
	if conn.SocketID == "" {
		return nil, &DecodeError{What: "connection data: missing socket_id"}
	}
	return &conn, nil
}

// DecodeErrorData parses the nested payload of a pusher:error event.
// Error payloads are best effort: an undecodable payload is reported
// verbatim in the message field rather than rejected.
func DecodeErrorData(data string) *ErrorData {
	var ed ErrorData
	if err := json.Unmarshal([]byte(data), &ed); err != nil {
		return &ErrorData{Message: data}
	}
	return &ed
}
