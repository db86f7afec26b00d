package netconn

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/uno-online/server/internal/protocol"
	"github.com/uno-online/server/internal/transport"
)

// ErrConnectionLost reports a transport-level failure other than a timeout.
var ErrConnectionLost = errors.New("connection lost")

// sendQueueSize bounds the async send queue. Overflow drops the message with
// a warning rather than blocking game logic on a slow client.
const sendQueueSize = 64

// Conn wraps one client transport. Exactly two goroutines drive it: the
// owner's receive loop and the internal drain loop feeding the wire from the
// send queue. writeMu is the single exclusion point between the drain loop
// and SendSync, so the bytes of two messages never interleave.
type Conn struct {
	ID uuid.UUID

	tr     transport.Transport
	logger *logrus.Logger

	sendCh  chan *protocol.Envelope
	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// NewConn wraps the transport, assigns a fresh identity, and starts the
// drain loop.
func NewConn(tr transport.Transport, logger *logrus.Logger) *Conn {
	c := &Conn{
		ID:      uuid.New(),
		tr:      tr,
		logger:  logger,
		sendCh:  make(chan *protocol.Envelope, sendQueueSize),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go c.drainLoop()
	return c
}

// RemoteAddr describes the peer for logging.
func (c *Conn) RemoteAddr() string { return c.tr.RemoteAddr() }

// Send enqueues env for ordered asynchronous delivery. It never blocks the
// caller. Messages sent to a closed connection, or past a full queue, are
// dropped with a warning.
func (c *Conn) Send(env *protocol.Envelope) {
	select {
	case <-c.done:
		c.logger.WithFields(logrus.Fields{"conn": c.ID, "method": env.Method}).
			Debug("send on closed connection, message dropped")
		return
	default:
	}
	select {
	case c.sendCh <- env:
	default:
		c.logger.WithFields(logrus.Fields{"conn": c.ID, "method": env.Method}).
			Warn("send queue full, message dropped")
	}
}

// SendSync writes env directly to the wire, bypassing the queue, so the
// caller gets backpressure and error feedback.
func (c *Conn) SendSync(env *protocol.Envelope) error {
	select {
	case <-c.done:
		return ErrConnectionLost
	default:
	}
	return c.write(env)
}

// Receive blocks until one full message decodes. A read timeout yields
// (nil, nil); end of stream yields (nil, io.EOF). Frames that fail to decode
// return an error wrapping protocol.ErrMalformed with the connection still
// usable; any other failure wraps ErrConnectionLost.
func (c *Conn) Receive(timeout time.Duration) (*protocol.Envelope, error) {
	data, err := c.tr.ReadMessage(timeout)
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrTimeout):
			return nil, nil
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		default:
			return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
	}
	return protocol.Decode(data)
}

// Close stops the drain loop and releases the transport. Idempotent and safe
// from any goroutine, including after a read error.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.tr.Close()
		<-c.drained
	})
}

func (c *Conn) write(env *protocol.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.tr.WriteMessage(data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

// drainLoop delivers queued messages in FIFO order until the connection
// closes. Messages still queued at close time are discarded.
func (c *Conn) drainLoop() {
	defer close(c.drained)
	for {
		select {
		case <-c.done:
			return
		case env := <-c.sendCh:
			if err := c.write(env); err != nil {
				c.logger.WithFields(logrus.Fields{"conn": c.ID, "error": err}).
					Debug("async send failed")
			}
		}
	}
}
