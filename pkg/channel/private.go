package channel

import (
	"fmt"
	"sync"

	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
	"github.com/jesusruizlopez/pusher-java-client/pkg/wire"
)

// PrivateChannel is a channel from the restricted "private-" class.
// Its subscribe envelope must carry a signature obtained from an Authorizer
// for the connection's current socket ID.
type PrivateChannel struct {
	*Channel

	authorizer auth.Authorizer

	authMu sync.Mutex
	grant  *auth.Response
}

// NewPrivate creates a private channel. The name must carry the "private-"
// prefix and an authorizer is required.
func NewPrivate(name string, authorizer auth.Authorizer, cfg Config) (*PrivateChannel, error) {
	if authorizer == nil {
		return nil, ErrNilAuthorizer
	}
	base, err := newChannel(name, cfg, privateName, ErrPrivateNameRequired)
	if err != nil {
		return nil, err
	}
	return &PrivateChannel{Channel: base, authorizer: authorizer}, nil
}

// Authorize obtains and stores the subscription signature for the given
// socket ID. Must be called before SubscribeMessage, and again after a
// reconnect since the socket ID changes.
func (p *PrivateChannel) Authorize(socketID string) error {
	body, err := p.authorizer.Authorize(p.Name(), socketID)
	if err != nil {
		return err
	}
	grant, err := auth.ParseResponse(body)
	if err != nil {
		return err
	}

	p.authMu.Lock()
	p.grant = grant
	p.authMu.Unlock()
	return nil
}

// Authorized reports whether a signature is stored.
func (p *PrivateChannel) Authorized() bool {
	p.authMu.Lock()
	defer p.authMu.Unlock()
	return p.grant != nil
}

// SubscribeMessage builds the subscribe envelope including the stored
// authorization signature. Fails with ErrNotAuthorized when Authorize has
// not succeeded yet.
func (p *PrivateChannel) SubscribeMessage() (string, error) {
	p.authMu.Lock()
	grant := p.grant
	p.authMu.Unlock()

	if grant == nil {
		return "", fmt.Errorf("%w: %q", ErrNotAuthorized, p.Name())
	}

	return wire.EncodeSubscribe(wire.SubscribeParams{
		Channel:     p.Name(),
		ResumeAfter: p.ResumeAfter(),
		Auth:        grant.Auth,
		ChannelData: grant.ChannelData,
	})
}

// String implements fmt.Stringer.
func (p *PrivateChannel) String() string {
	return fmt.Sprintf("[private channel %s %s]", p.Name(), p.State())
}
