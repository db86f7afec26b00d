// Package transport abstracts the byte stream carrying framed protocol
// messages. Every implementation guarantees that one ReadMessage call yields
// exactly one complete message, with no partial-message leakage across calls.
package transport

import (
	"errors"
	"time"
)

// ErrTimeout reports that a read deadline elapsed before a complete message
// arrived. Callers treat it as "no message yet", not a failure; any bytes of
// a partially received frame are retained for the next read.
var ErrTimeout = errors.New("transport: read timed out")

// Transport is one client's bidirectional framed stream.
type Transport interface {
	// ReadMessage blocks until one complete message arrives. A timeout of
	// zero blocks indefinitely. Returns io.EOF on orderly stream shutdown
	// and ErrTimeout when the deadline elapses.
	ReadMessage(timeout time.Duration) ([]byte, error)

	// WriteMessage writes one complete framed message.
	WriteMessage(data []byte) error

	// Close releases the underlying stream. Safe to call more than once.
	Close() error

	// RemoteAddr describes the peer for logging.
	RemoteAddr() string
}
