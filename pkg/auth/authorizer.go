package auth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAuthorizationFailed indicates the authorizer could not produce a
// signature for the channel. Failures are never retried at this layer.
var ErrAuthorizationFailed = errors.New("channel authorization failed")

// Authorizer produces the signed authorization body for a restricted channel.
// Implementations must be safe for concurrent use.
type Authorizer interface {
	// Authorize returns the raw authorization response body for the given
	// channel and socket ID. Blocking is allowed; this is never called
	// from a connection's decode path.
	Authorize(channel, socketID string) (string, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(channel, socketID string) (string, error)

// Authorize calls f.
func (f AuthorizerFunc) Authorize(channel, socketID string) (string, error) {
	return f(channel, socketID)
}

// Response is a parsed authorization response.
type Response struct {
	// Auth is the signature sent in the subscribe envelope.
	Auth string `json:"auth"`

	// ChannelData is the signed user data for presence channels.
	// Empty for private channels.
	ChannelData string `json:"channel_data,omitempty"`
}

// ParseResponse decodes an authorization response body.
func ParseResponse(body string) (*Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrAuthorizationFailed, err)
	}
	if resp.Auth == "" {
		return nil, fmt.Errorf("%w: response missing auth field", ErrAuthorizationFailed)
	}
	return &resp, nil
}

// Compile-time interface satisfaction check.
var _ Authorizer = AuthorizerFunc(nil)
