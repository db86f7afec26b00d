package netconn

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uno-online/server/internal/protocol"
	"github.com/uno-online/server/internal/transport"
)

// Handler receives connection lifecycle callbacks from a Server. All calls
// for one connection arrive from that connection's goroutine; calls for
// different connections are concurrent.
type Handler interface {
	HandleConnect(c *Conn)
	HandleMessage(c *Conn, env *protocol.Envelope)
	HandleDisconnect(c *Conn)
}

// Server accepts stream connections, registers them, and pumps each receive
// loop into the Handler. The same lifecycle serves raw TCP clients and
// WebSocket upgrades (see ServeTransport).
type Server struct {
	registry     *Registry
	handler      Handler
	seq          *protocol.Sequence
	logger       *logrus.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewServer wires the acceptor to its collaborators. readTimeout bounds each
// blocking receive on TCP clients so loops can poll for shutdown; zero
// disables the poll and relies on Close to interrupt reads.
func NewServer(registry *Registry, handler Handler, seq *protocol.Sequence, logger *logrus.Logger, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		registry:     registry,
		handler:      handler,
		seq:          seq,
		logger:       logger,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		quit:         make(chan struct{}),
	}
}

// ListenAndServe listens on addr and serves until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(l)
}

// Serve accepts connections from l until Shutdown. Blocks.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	s.logger.WithField("addr", l.Addr().String()).Info("server listening")

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				s.logger.WithError(err).Warn("accept failed")
				continue
			}
		}
		c := NewConn(transport.NewTCP(conn, s.writeTimeout), s.logger)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c, s.readTimeout)
		}()
	}
}

// ServeTransport runs the standard connection lifecycle for an externally
// accepted transport, such as a WebSocket upgrade. Blocks until the
// connection ends. WebSocket reads cannot use poll deadlines, so shutdown
// interrupts them by closing the socket.
//
// The quit check and wg.Add happen under the server mutex: an upgrade that
// lands mid-shutdown must not race Shutdown's wg.Wait.
func (s *Server) ServeTransport(tr transport.Transport) {
	s.mu.Lock()
	select {
	case <-s.quit:
		s.mu.Unlock()
		_ = tr.Close()
		return
	default:
		s.wg.Add(1)
	}
	s.mu.Unlock()
	defer s.wg.Done()

	s.serveConn(NewConn(tr, s.logger), 0)
}

// Shutdown stops accepting, closes every tracked connection, and waits for
// all connection goroutines to exit. Idempotent.
func (s *Server) Shutdown() {
	s.mu.Lock()
	select {
	case <-s.quit:
		s.mu.Unlock()
		return
	default:
		close(s.quit)
	}
	l := s.listener
	s.mu.Unlock()

	if l != nil {
		_ = l.Close()
	}
	s.registry.CloseAll()
	s.wg.Wait()
	s.logger.Info("server stopped")
}

// serveConn owns one connection's lifetime: register, connected callback,
// receive loop, then teardown in that order.
func (s *Server) serveConn(c *Conn, readTimeout time.Duration) {
	s.registry.Add(c)
	s.logger.WithFields(logrus.Fields{"conn": c.ID, "remote": c.RemoteAddr()}).Info("client connected")
	s.handler.HandleConnect(c)

	defer func() {
		s.registry.Remove(c.ID)
		s.handler.HandleDisconnect(c)
		s.logger.WithField("conn", c.ID).Info("client disconnected")
	}()

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		env, err := c.Receive(readTimeout)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return
			case errors.Is(err, protocol.ErrMalformed):
				// Protocol errors never cost the client its connection.
				s.logger.WithFields(logrus.Fields{"conn": c.ID, "error": err}).Warn("malformed message")
				s.sendError(c, "malformed message", "BAD_REQUEST")
				continue
			default:
				s.logger.WithFields(logrus.Fields{"conn": c.ID, "error": err}).Warn("read failed")
				return
			}
		}
		if env == nil {
			// Read timeout: loop to poll quit, then keep waiting.
			continue
		}
		s.handler.HandleMessage(c, env)
	}
}

func (s *Server) sendError(c *Conn, message, code string) {
	env, err := protocol.NewEnvelope(s.seq, protocol.MethodError, protocol.ErrorPayload{Message: message, Code: code})
	if err != nil {
		s.logger.WithError(err).Error("encode error payload")
		return
	}
	c.Send(env)
}
