package errors

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// FromStore classifies a datastore failure. Timeouts and connection-level
// failures become KindUnavailable (safe for the caller to retry); anything
// else is an unclassified internal fault.
func FromStore(message string, err error) *Error {
	if isUnavailable(err) {
		return UnavailableError(message, err)
	}
	return InternalError(message, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
