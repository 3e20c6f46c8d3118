package ledger

import "errors"

// Business rejections. These are detected before any store mutation, carry an
// actionable message for the caller, and are never system faults. Anything
// else coming out of the Writer wraps a store error and is retryable.
var (
	// ErrDuplicateEvent: an ACTIVE attendance record already exists for this
	// actor, date and session label.
	ErrDuplicateEvent = errors.New("attendance already recorded for this session today")

	// ErrConflictingActiveSession: the actor already has an unmatched ACTIVE
	// assist start.
	ErrConflictingActiveSession = errors.New("an assist session is already in progress")

	// ErrNoActiveSession: end requested but no unmatched assist start exists.
	ErrNoActiveSession = errors.New("no active assist session to end")

	// ErrActorNotFound: the actor id is unknown or inactive in the directory.
	ErrActorNotFound = errors.New("actor not found")

	// ErrInvalidSession: the session label is not one of the known values.
	ErrInvalidSession = errors.New("session label must be MORNING or AFTERNOON")

	// ErrInvalidInput: free-form validation failure (note too short, missing
	// location/category, missing subcategory where required). Wrapped with a
	// specific reason.
	ErrInvalidInput = errors.New("invalid input")
)

// IsRejection reports whether err is a business rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrDuplicateEvent,
		ErrConflictingActiveSession,
		ErrNoActiveSession,
		ErrActorNotFound,
		ErrInvalidSession,
		ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
