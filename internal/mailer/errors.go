package mailer

import (
	"fmt"
	"strings"
)

// ConfigurationError means the SMTP transport is missing required
// settings.  It is not transient; retrying without reconfiguring the
// service cannot succeed.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("email transport is not configured: missing %s", strings.Join(e.Missing, ", "))
}

// DeliveryError wraps a transport failure during a single send attempt.
type DeliveryError struct {
	To  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver email to %s: %v", e.To, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
