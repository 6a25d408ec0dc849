package netutil

import (
	"errors"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestBindTCPEphemeralPort(t *testing.T) {
	l, err := BindTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("BindTCP failed: %v", err)
	}
	defer l.Close()

	port, err := ListenerPort(l)
	if err != nil {
		t.Fatalf("ListenerPort failed: %v", err)
	}
	if port == 0 {
		t.Error("expected an OS-assigned port, got 0")
	}
}

func TestBindTCPAddressInUse(t *testing.T) {
	first, err := BindTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("BindTCP failed: %v", err)
	}
	defer first.Close()

	port, _ := ListenerPort(first)

	second, err := BindTCP("127.0.0.1", port)
	if err == nil {
		second.Close()
		t.Fatal("expected second bind to fail")
	}

	var inUse *AddressInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected AddressInUseError, got %T: %v", err, err)
	}
	if inUse.Port != port {
		t.Errorf("Port = %d, want %d", inUse.Port, port)
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		t.Error("expected error to unwrap to EADDRINUSE")
	}
}

func TestBindTCPInvalidAddress(t *testing.T) {
	if _, err := BindTCP("not-an-ip.invalid", 0); err == nil {
		t.Error("expected bind on an unresolvable host to fail")
	}
}

func TestIsConnectionRefusedError(t *testing.T) {
	l, err := BindTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("BindTCP failed: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	_, err = net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		t.Skip("port was reused before dial")
	}
	if !IsConnectionRefusedError(err) {
		t.Errorf("expected connection refused, got %v", err)
	}
	if IsConnectionRefusedError(errors.New("other")) {
		t.Error("plain error classified as connection refused")
	}
	if IsAddressInUseError(err) {
		t.Error("dial error classified as address in use")
	}
}
