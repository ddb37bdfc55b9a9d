package channel

// State is the subscription lifecycle state of a channel.
type State int32

const (
	// StateInitial is the state at construction.
	StateInitial State = iota

	// StateSubscribeSent means the subscribe envelope was handed to the
	// transport. Set by the owning client, not by the channel, since the
	// channel has no visibility into transport writes.
	StateSubscribeSent

	// StateSubscribed means the server confirmed the subscription.
	StateSubscribed

	// StateUnsubscribed is terminal and sticky.
	StateUnsubscribed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "INITIAL"
	case StateSubscribeSent:
		return "SUBSCRIBE_SENT"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateUnsubscribed:
		return "UNSUBSCRIBED"
	default:
		return "UNKNOWN"
	}
}
