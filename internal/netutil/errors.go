// Package netutil provides listener binding and network error helpers shared
// by the proxy, the classification server and sluicectl.
//
// Errors are classified by type with errors.As and syscall constants, never
// by matching message strings.
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError reports whether err is a bind failure because the
// address is already taken.
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError reports whether err is a dial failure because
// nothing is listening at the target.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
