package channel

import (
	"errors"
	"fmt"
)

// Error taxonomy bases. Every channel error satisfies errors.Is against
// exactly one of these.
var (
	// ErrInvalidArgument indicates a caller-fixable bad argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIllegalState indicates an operation issued in the wrong
	// lifecycle state.
	ErrIllegalState = errors.New("illegal state")
)

// Specific channel errors.
var (
	// ErrNameRequired indicates an empty channel name.
	ErrNameRequired = fmt.Errorf("%w: channel name must not be empty", ErrInvalidArgument)

	// ErrNameReserved indicates a standard channel was given a name from
	// a restricted class. Use NewPrivate or NewPresence for those.
	ErrNameReserved = fmt.Errorf("%w: channel name uses a reserved prefix", ErrInvalidArgument)

	// ErrEmptyEventName indicates an empty event name in bind/unbind.
	ErrEmptyEventName = fmt.Errorf("%w: event name must not be empty", ErrInvalidArgument)

	// ErrNilListener indicates a nil listener in bind/unbind.
	ErrNilListener = fmt.Errorf("%w: listener must not be nil", ErrInvalidArgument)

	// ErrInternalEvent indicates an attempt to bind an internal protocol
	// event; listeners never observe those.
	ErrInternalEvent = fmt.Errorf("%w: cannot bind internal protocol events", ErrInvalidArgument)

	// ErrPrivateNameRequired indicates a private channel was given a name
	// without the "private-" prefix.
	ErrPrivateNameRequired = fmt.Errorf(`%w: private channel names must start with "private-"`, ErrInvalidArgument)

	// ErrPresenceNameRequired indicates a presence channel was given a
	// name without the "presence-" prefix.
	ErrPresenceNameRequired = fmt.Errorf(`%w: presence channel names must start with "presence-"`, ErrInvalidArgument)

	// ErrNilDispatcher indicates a missing dispatcher at construction.
	ErrNilDispatcher = fmt.Errorf("%w: dispatcher is required", ErrInvalidArgument)

	// ErrNilAuthorizer indicates a restricted channel was constructed
	// without an authorizer.
	ErrNilAuthorizer = fmt.Errorf("%w: authorizer is required", ErrInvalidArgument)

	// ErrUnsubscribed indicates the channel reached its terminal state;
	// bind/unbind no longer work. Subscribe to a fresh channel instead.
	ErrUnsubscribed = fmt.Errorf("%w: channel has been unsubscribed", ErrIllegalState)

	// ErrNotAuthorized indicates a restricted channel's subscribe
	// envelope was requested before Authorize succeeded.
	ErrNotAuthorized = fmt.Errorf("%w: subscription has not been authorized", ErrIllegalState)
)
