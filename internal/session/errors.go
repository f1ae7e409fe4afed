package session

import "errors"

// Typed errors surfaced by the registry and sessions. All are recoverable
// from the service's point of view: no condition here is fatal to the
// process or to other sessions.
var (
	// ErrDuplicateSession is returned by Start when an active session
	// already exists for the (room, participant) pair.
	ErrDuplicateSession = errors.New("session already active for this room and participant")

	// ErrNotFound is returned for operations on unknown or already
	// removed session identifiers.
	ErrNotFound = errors.New("session not found")

	// ErrSessionClosed is returned for Feed or Close calls on a session
	// that has already been closed.
	ErrSessionClosed = errors.New("session closed")
)
