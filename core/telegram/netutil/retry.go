package netutil

import (
	"errors"
	"net"
	"syscall"
)

// ShouldRetry reports whether a network error is worth retrying: timeouts,
// failed dials and connections reset by the peer. API-level errors never are.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}
