// Package serialtp adapts a byte-oriented serial link to the transport
// port. The read loop delivers raw chunks; line framing happens
// downstream in the decoder.
package serialtp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

const readChunkSize = 256

type Transport struct {
	cfg domain.SerialSettings

	mu     sync.Mutex
	port   serial.Port
	closed bool
}

func New(cfg domain.SerialSettings) *Transport {
	return &Transport{cfg: cfg}
}

// Open claims the device. serial.Open itself has no deadline, so it
// runs on its own goroutine and the context bounds how long we wait;
// an open that completes after the deadline is closed immediately.
func (t *Transport) Open(ctx context.Context) error {
	type result struct {
		port serial.Port
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		port, err := serial.Open(t.cfg.Port, &serial.Mode{BaudRate: t.cfg.Baud})
		ch <- result{port: port, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.err == nil {
				_ = res.port.Close()
			}
		}()
		return &ports.TransportError{Op: "open", Kind: ports.ErrTimeout, Err: ctx.Err()}
	case res := <-ch:
		if res.err != nil {
			return &ports.TransportError{Op: "open", Kind: classifyOpen(res.err), Err: res.err}
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed {
			_ = res.port.Close()
			return &ports.TransportError{Op: "open", Kind: ports.ErrClosed, Err: errors.New("transport closed during open")}
		}
		t.port = res.port
		return nil
	}
}

// ReadLoop delivers raw byte chunks on out until the port fails or is
// closed. Closing the port makes the blocked Read return an error, which
// reads as a clean teardown when Close was caller-initiated.
func (t *Transport) ReadLoop(ctx context.Context, out chan<- []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return &ports.TransportError{Op: "read", Kind: ports.ErrClosed, Err: errors.New("not open")}
	}

	buf := make([]byte, readChunkSize)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			case <-ctx.Done():
				return nil
			}
		}
		if err != nil {
			if t.isClosed() || ctx.Err() != nil {
				return nil
			}
			return &ports.TransportError{Op: "read", Kind: ports.ErrUnknown, Err: err}
		}
	}
}

func (t *Transport) Write(p []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return &ports.TransportError{Op: "write", Kind: ports.ErrClosed, Err: errors.New("not open")}
	}
	if _, err := port.Write(p); err != nil {
		return &ports.TransportError{Op: "write", Kind: ports.ErrUnknown, Err: err}
	}
	return nil
}

// Close releases the port. Idempotent; unblocks a pending Read.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	port := t.port
	t.port = nil
	t.mu.Unlock()

	if port != nil {
		return port.Close()
	}
	return nil
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func classifyOpen(err error) ports.ErrorKind {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		switch pe.Code() {
		case serial.PortNotFound:
			return ports.ErrDeviceNotFound
		case serial.PermissionDenied:
			return ports.ErrPermissionDenied
		}
	}
	// Fallbacks for wrapped OS errors the library doesn't classify.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "not found"):
		return ports.ErrDeviceNotFound
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "access is denied"):
		return ports.ErrPermissionDenied
	}
	return ports.ErrUnknown
}

var _ ports.Transport = (*Transport)(nil)
