package recorder

import "errors"

// Errors returned by the recorder package.
var (
	// ErrAlreadyStarted is returned when Start is called on a service that
	// is already running.
	ErrAlreadyStarted = errors.New("recorder already started")

	// ErrNotStarted is returned when Stop is called on a service that was
	// never started.
	ErrNotStarted = errors.New("recorder not started")
)
