package t5403

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUninitialized is returned when a reading is requested from a Device that
// was not created with New, and so has no calibration coefficients.
var ErrUninitialized = errors.New("t5403: calibration coefficients not loaded, use New")

// TransportError reports a failed bus transaction. It is never retried by the
// driver.
type TransportError struct {
	// Op is "read" or "write"
	Op       string
	Register byte
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("t5403: %s register 0x%02x: %v", e.Op, e.Register, e.Err)
}

// Unwrap returns the underlying bus error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err, or any error it wraps, is a
// *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
