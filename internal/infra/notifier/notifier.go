// Package notifier delivers notices to the error-tracking service over HTTP.
//
// APIClient performs a single POST per notice with hard connect and read
// timeouts; it never retries. NoOpDeliverer is used when reporting is
// disabled. Non-2xx responses are returned as typed errors so callers can
// log the status code.
package notifier

import "time"

// Outcome describes one delivery attempt.
type Outcome struct {
	// StatusCode is the HTTP status returned by the tracker, or 0 when no
	// response was received.
	StatusCode int

	// Duration is the wall time spent on the attempt.
	Duration time.Duration
}

// Success reports whether the tracker accepted the notice.
func (o Outcome) Success() bool {
	return o.StatusCode >= 200 && o.StatusCode <= 299
}
