package channel

// EventListener receives application events for a bound event name.
// Implementations run on the dispatcher goroutine and must not assume any
// particular calling goroutine.
type EventListener interface {
	// OnEvent is called once per matching delivered event. The data is
	// the event payload exactly as it appeared on the wire, unparsed.
	OnEvent(channel, event, data string)
}

// ChannelListener additionally observes the channel's own lifecycle.
// A channel holds at most one; SetChannelListener is last-write-wins.
type ChannelListener interface {
	EventListener

	// OnSubscriptionSucceeded is called once when the server confirms
	// the subscription.
	OnSubscriptionSucceeded(channel string)
}
