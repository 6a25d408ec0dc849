// Package validate provides input validation for sluice configuration and
// network endpoints, built on the go-playground/validator library.
//
// VALIDATION FEATURES:
//   - Bind addresses: "host:port" parsing with IP and port range checks
//   - Backend URLs: absolute http(s) URLs for the classification server
//   - Config values: ranges, positive durations and required strings
//
// Used by the sluiced daemon flags, the API and backend server configs and
// the sluicectl --api flag so every entry point rejects bad input the same way.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
}

// NetworkAddress is a validated "host:port" listen or dial address.
type NetworkAddress struct {
	Host string `validate:"required,ip"`              // Built-in IP validator
	Port int    `validate:"min=0,max=65535"`          // 0 means OS-assigned
}

// String returns the network address in standard "host:port" format.
func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses and validates a "host:port" address string such as
// the proxy's --api flag or sluicectl's --api target.
//
// Port 0 passes validation so tests can ask the OS for a free port; callers
// that dial the address reject it themselves.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateBackendURL checks that raw is an absolute http or https URL with a
// host, as required for the classification server's base URL.
func ValidateBackendURL(raw string) error {
	if err := ValidateField(raw, "required,url"); err != nil {
		return fmt.Errorf("invalid backend URL '%s': %w", raw, err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL '%s' has no host", raw)
	}
	return nil
}

// ValidateField validates a single value against validator tags.
//
// Example: ValidateField("192.168.1.1", "required,ip")
func ValidateField(value interface{}, tag string) error {
	return validate.Var(value, tag)
}
