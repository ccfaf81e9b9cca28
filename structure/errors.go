package structure

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	reasonNotStreaming = "cannot execute this operation when the camera has not been streaming"
	reasonStreaming    = "cannot execute this operation when the camera has been streaming"
)

// ErrNoFrame is returned when the driver has not delivered a frame of the
// requested kind since streaming began
var ErrNoFrame = errors.New("no frame available yet")

// ContractViolation is the panic value used when a Session method is called
// in the wrong state.  It is a programming error, not a runtime condition.
type ContractViolation struct {
	// Op is the method that was called
	Op string

	// Reason describes the broken precondition
	Reason string
}

// Error satisfies the error interface
func (c *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s", c.Op, c.Reason)
}

// Recover runs fn and returns a *ContractViolation it panics with as an error.
// Other panics continue unwinding.  It is meant for outer surfaces, such as
// HTTP handlers, which must not crash the process.
func Recover(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(*ContractViolation)
			if !ok {
				panic(r)
			}
			err = cv
		}
	}()
	fn()
	return nil
}
