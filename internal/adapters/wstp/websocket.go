// Package wstp adapts a message-oriented websocket link to the
// transport port. Unlike the serial adapter, the read loop delivers
// whole pre-framed text messages.
package wstp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

type Transport struct {
	cfg domain.NetworkSettings

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

func New(cfg domain.NetworkSettings) *Transport {
	return &Transport{cfg: cfg}
}

func (t *Transport) url() string {
	return fmt.Sprintf("ws://%s", net.JoinHostPort(t.cfg.Host, fmt.Sprintf("%d", t.cfg.Port)))
}

func (t *Transport) Open(ctx context.Context) error {
	dialer := websocket.Dialer{}
	conn, resp, err := dialer.DialContext(ctx, t.url(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return &ports.TransportError{Op: "open", Kind: classifyDial(err), Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = conn.Close()
		return &ports.TransportError{Op: "open", Kind: ports.ErrClosed, Err: errors.New("transport closed during open")}
	}
	t.conn = conn
	return nil
}

// ReadLoop delivers whole messages on out until the peer goes away or
// the connection is closed locally. A local close reads as clean
// teardown, anything else as a stream failure.
func (t *Transport) ReadLoop(ctx context.Context, out chan<- []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return &ports.TransportError{Op: "read", Kind: ports.ErrClosed, Err: errors.New("not open")}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if t.isClosed() || ctx.Err() != nil {
				return nil
			}
			return &ports.TransportError{Op: "read", Kind: ports.ErrUnknown, Err: err}
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// Write sends one text message. gorilla permits a single concurrent
// writer, so writes serialize on their own mutex independent of reads.
func (t *Transport) Write(p []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return &ports.TransportError{Op: "write", Kind: ports.ErrClosed, Err: errors.New("not open")}
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return &ports.TransportError{Op: "write", Kind: ports.ErrUnknown, Err: err}
	}
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		// Best-effort close frame so a well-behaved peer tears down
		// cleanly; the hard close below is what actually unblocks reads.
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
		return conn.Close()
	}
	return nil
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func classifyDial(err error) ports.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return ports.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ports.ErrTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ports.ErrHostUnreachable
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		return ports.ErrHostUnreachable
	}
	return ports.ErrUnknown
}

var _ ports.Transport = (*Transport)(nil)
