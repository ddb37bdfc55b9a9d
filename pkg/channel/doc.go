// Package channel implements the per-channel subscription state machine.
//
// A Channel owns one named topic on the pub/sub service: its lifecycle state,
// its registered listeners and its continuity token. It builds the outbound
// subscribe/unsubscribe envelopes, interprets the inbound envelopes the
// transport delivers for it and fans application events out to listeners
// through a Dispatcher, never on the decode path.
//
// # Lifecycle
//
// A channel starts in StateInitial. The owning client marks it
// StateSubscribeSent when the subscribe envelope has been handed to the
// transport; the channel itself enters StateSubscribed when the server
// confirms the subscription. StateUnsubscribed is terminal: once entered,
// Bind and Unbind fail and the channel is done. Listeners survive an
// unsubscribe-free disconnect so a resubscribe can reuse them.
//
// # Continuity
//
// The server issues a continuity token on subscription success, and every
// delivered event carrying an id overwrites it. A resubscribe after a
// disconnect includes the token as resume_after so delivery resumes where it
// left off. The overwrite is strictly last-write-wins with no ordering check:
// an out-of-order redelivery will regress the token. This mirrors the
// protocol's documented behavior; see the package tests.
//
// # Channel classes
//
// New creates a standard channel and rejects names carrying the reserved
// "private-" and "presence-" prefixes. NewPrivate and NewPresence create the
// restricted variants, which require an Authorizer and swap the name
// validation predicate for their own prefix requirement.
//
// # Concurrency
//
// Bind/Unbind may race with inbound message processing; the listener map and
// token are mutex-guarded, and the lifecycle state is lock-free for readers.
// Distinct channels share nothing.
package channel
