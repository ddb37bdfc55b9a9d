package channel

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
	"github.com/jesusruizlopez/pusher-java-client/pkg/wire"
)

// Member is a user present on a presence channel.
type Member struct {
	// ID is the user ID.
	ID string

	// Info is the application-defined user info, raw JSON.
	Info json.RawMessage
}

// MemberListener observes presence membership changes.
// A presence channel holds at most one; SetMemberListener is last-write-wins.
type MemberListener interface {
	// OnMemberAdded is called when a member joins.
	OnMemberAdded(channel string, member Member)

	// OnMemberRemoved is called when a member leaves.
	OnMemberRemoved(channel string, member Member)
}

// PresenceChannel layers member tracking on top of the private channel
// class. The member set is seeded from the subscription success payload and
// maintained from the internal member_added/member_removed events, which are
// consumed here and never fanned out to application listeners.
type PresenceChannel struct {
	*PrivateChannel

	memberMu       sync.RWMutex
	members        map[string]Member
	memberListener MemberListener
}

// NewPresence creates a presence channel. The name must carry the
// "presence-" prefix and an authorizer is required.
func NewPresence(name string, authorizer auth.Authorizer, cfg Config) (*PresenceChannel, error) {
	if authorizer == nil {
		return nil, ErrNilAuthorizer
	}
	base, err := newChannel(name, cfg, presenceName, ErrPresenceNameRequired)
	if err != nil {
		return nil, err
	}
	return &PresenceChannel{
		PrivateChannel: &PrivateChannel{Channel: base, authorizer: authorizer},
		members:        make(map[string]Member),
	}, nil
}

// SetMemberListener installs the membership listener. Single slot,
// last write wins; pass nil to clear.
func (p *PresenceChannel) SetMemberListener(listener MemberListener) {
	p.memberMu.Lock()
	p.memberListener = listener
	p.memberMu.Unlock()
}

// Members returns a snapshot of the current members, sorted by user ID.
func (p *PresenceChannel) Members() []Member {
	p.memberMu.RLock()
	defer p.memberMu.RUnlock()

	members := make([]Member, 0, len(p.members))
	for _, m := range p.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

// MemberCount returns the number of current members.
func (p *PresenceChannel) MemberCount() int {
	p.memberMu.RLock()
	defer p.memberMu.RUnlock()
	return len(p.members)
}

// OnMessage interprets an inbound envelope, handling the presence-specific
// internal events before delegating to the base state machine.
func (p *PresenceChannel) OnMessage(event, raw string) error {
	switch event {
	case wire.EventSubscriptionSucceeded:
		env, err := wire.DecodeEnvelope(raw)
		if err != nil {
			return err
		}
		sub, err := wire.DecodeSubscriptionData(env.Data)
		if err != nil {
			return err
		}
		if sub.Presence != nil {
			p.seedMembers(sub.Presence)
		}
		return p.Channel.OnMessage(event, raw)

	case wire.EventMemberAdded:
		return p.onMemberEvent(raw, true)

	case wire.EventMemberRemoved:
		return p.onMemberEvent(raw, false)

	default:
		return p.Channel.OnMessage(event, raw)
	}
}

func (p *PresenceChannel) seedMembers(snapshot *wire.PresenceSnapshot) {
	p.memberMu.Lock()
	defer p.memberMu.Unlock()

	p.members = make(map[string]Member, len(snapshot.IDs))
	for _, id := range snapshot.IDs {
		p.members[id] = Member{ID: id, Info: snapshot.Hash[id]}
	}
}

func (p *PresenceChannel) onMemberEvent(raw string, added bool) error {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	data, err := wire.DecodeMemberData(env.Data)
	if err != nil {
		return err
	}

	member := Member{ID: data.UserID, Info: data.UserInfo}

	p.memberMu.Lock()
	if added {
		p.members[member.ID] = member
	} else {
		// Prefer the stored info; removal events may omit it.
		if stored, ok := p.members[member.ID]; ok {
			member = stored
		}
		delete(p.members, member.ID)
	}
	listener := p.memberListener
	p.memberMu.Unlock()

	if listener != nil {
		p.dispatcher.Submit(func() {
			if added {
				listener.OnMemberAdded(p.Name(), member)
			} else {
				listener.OnMemberRemoved(p.Name(), member)
			}
		})
	}
	return nil
}

// String implements fmt.Stringer.
func (p *PresenceChannel) String() string {
	return fmt.Sprintf("[presence channel %s %s]", p.Name(), p.State())
}
