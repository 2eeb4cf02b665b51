package solver

import "errors"

// Failure classes for remote solves. Both propagate unmodified through the
// pipeline so callers can distinguish a bad token from a service outage.
var (
	// ErrAuthentication reports a rejected token (HTTP 401 or 403).
	ErrAuthentication = errors.New("solver authentication failed")

	// ErrUnavailable reports that the service could not take the request:
	// transport failures, timeouts, throttling, or 5xx responses.
	ErrUnavailable = errors.New("solver unavailable")
)
