package schema

import "errors"

var (
	// ErrMissingField is returned by Call.Field when the current data tier
	// does not contain the requested field. Resolution treats it as the
	// signal to fall through to the remote tier; any other error from a
	// method is propagated as-is.
	ErrMissingField = errors.New("missing field")

	// ErrMethodNotFound is returned by Invoke when neither method layer
	// defines the requested name
	ErrMethodNotFound = errors.New("method not found")

	// ErrNoBaseMethod is returned by Call.Super when the running override
	// has no base-layer method to delegate to
	ErrNoBaseMethod = errors.New("no base method")

	// ErrUnresolvedTarget is returned when a lazy field's target resolver
	// yields no descriptor
	ErrUnresolvedTarget = errors.New("lazy field target did not resolve")
)

// IsMissingField reports whether err signals a missing field dependency
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}
