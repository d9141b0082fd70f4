package lifecycle

import "errors"

var (
	// ErrInvalidState marks an operation requested against an invitation
	// that is not in the expected state or not addressed to the caller.
	ErrInvalidState = errors.New("invitation is not in a state that allows this operation")

	// ErrRecipientUnreachable is returned after the gateway exhausted its
	// retries without confirmed delivery and the local commit was reverted.
	ErrRecipientUnreachable = errors.New("recipient may be offline or have notifications disabled; try again later")

	// ErrResyncRequired marks an acceptance recorded without a conversation
	// id: the inbound payload was truncated and no cached copy existed.
	ErrResyncRequired = errors.New("acceptance recorded without a conversation id; manual resynchronization required")

	// ErrSelfInvitation rejects invitations addressed to the sender.
	ErrSelfInvitation = errors.New("cannot invite yourself")
)
