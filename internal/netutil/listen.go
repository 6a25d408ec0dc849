package netutil

import (
	"fmt"
	"net"
	"strconv"
)

// AddressInUseError is returned by BindTCP when the port is taken. It keeps
// the underlying error for errors.Is and errors.As.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// BindTCP binds an IPv4 TCP listener on address:port. Port 0 lets the OS
// choose; use ListenerPort to find out which port was picked.
//
// Daemons bind before starting anything else so a port conflict fails
// startup immediately instead of after the scheduler is running.
func BindTCP(address string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(address, strconv.Itoa(port))

	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{Port: port, Address: address, Err: err}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}

	return listener, nil
}

// ListenerPort returns the port a TCP listener is bound to.
func ListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}
	return tcpAddr.Port, nil
}
