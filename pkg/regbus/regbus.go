// Package regbus provides byte-addressed register access to a single device on a
// point-to-point serial link (I²C / SMBus).
//
// Every operation performs I/O directly: there is no caching, buffering or retry.
// Transport failures are reported as [*Fault] values, which match [ErrBusFault]
// with [errors.Is].
package regbus

import (
	"errors"
	"fmt"
)

// ErrBusFault is matched by every transport-level failure returned from a [Bus].
var ErrBusFault = errors.New("register bus fault")

// Bus is the register transport for one device address.
//
// Implementations are not safe for concurrent use; a single owner is expected to
// issue one register operation at a time.
type Bus interface {
	// ReadRegister reads one byte from register reg.
	ReadRegister(reg byte) (byte, error)
	// WriteRegister writes value to register reg.
	WriteRegister(reg, value byte) error
	// ReadBlock reads len(p) consecutive bytes starting at register reg.
	ReadBlock(reg byte, p []byte) error
	// Close releases the underlying link.
	Close() error
}

// Fault describes a failed register operation.
type Fault struct {
	Op       string // "read", "write" or "block read"
	Register byte
	Err      error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s register 0x%02X: %v", ErrBusFault, f.Op, f.Register, f.Err)
}

// Unwrap exposes both [ErrBusFault] and the transport error.
func (f *Fault) Unwrap() []error {
	return []error{ErrBusFault, f.Err}
}

// NewFault wraps err as a [*Fault]. A nil err yields nil, and an error that is
// already a [*Fault] is returned unchanged.
func NewFault(op string, reg byte, err error) error {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return err
	}
	return &Fault{Op: op, Register: reg, Err: err}
}

const (
	OpRead      = "read"
	OpWrite     = "write"
	OpBlockRead = "block read"
)
