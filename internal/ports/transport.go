package ports

import (
	"context"
	"errors"
	"fmt"
)

// Transport abstracts the physical channel behind open/read/write/close.
// Adapters differ only in the unit delivered on the read channel: the
// serial adapter emits raw byte chunks, the websocket adapter emits
// whole text messages.
type Transport interface {
	// Open establishes the channel. It fails fast with a classified
	// *TransportError and honors the context deadline.
	Open(ctx context.Context) error

	// ReadLoop delivers chunks or messages on out until the transport
	// is closed or fails. It returns nil when the caller closed the
	// transport and the terminal error otherwise. ReadLoop never closes
	// out; ownership of the channel stays with the caller.
	ReadLoop(ctx context.Context, out chan<- []byte) error

	// Write sends one outbound message on the channel.
	Write(p []byte) error

	// Close releases the handle. Idempotent, safe from any state, and
	// unblocks a pending ReadLoop.
	Close() error
}

// ErrorKind classifies transport open/read/write failures.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrDeviceNotFound
	ErrPermissionDenied
	ErrHostUnreachable
	ErrTimeout
	ErrClosed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrDeviceNotFound:
		return "device_not_found"
	case ErrPermissionDenied:
		return "permission_denied"
	case ErrHostUnreachable:
		return "host_unreachable"
	case ErrTimeout:
		return "timeout"
	case ErrClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TransportError is the typed failure surfaced by transport adapters.
type TransportError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("transport %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or ErrUnknown when err is not
// a classified transport failure.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrUnknown
}
