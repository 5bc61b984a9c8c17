package participation

import "errors"

// ErrNotFound is returned when the event, request, or participation does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a caller other than the event organizer attempts
// an organizer-only operation.
var ErrForbidden = errors.New("only the event organizer may perform this action")

// ErrInvalidState is returned when acting on a request that is not pending, or
// joining an event that is not published.
var ErrInvalidState = errors.New("operation not allowed in the current state")

// ErrCapacityExceeded is returned when approving a request would push the
// participant count past the event's maximum capacity.
var ErrCapacityExceeded = errors.New("event is at full capacity")

// ErrDuplicateRequest is returned when the user already has a pending request
// or is already a participant or waitlisted for the event.
var ErrDuplicateRequest = errors.New("a request for this event already exists")
