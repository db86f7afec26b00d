package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"time"
)

// TCPTransport frames messages as newline-delimited JSON over a raw stream.
// One line is one message; the trailing newline (and optional carriage
// return) is stripped.
type TCPTransport struct {
	conn         net.Conn
	reader       *bufio.Reader
	writeTimeout time.Duration

	// pending accumulates the bytes of a frame whose newline has not arrived
	// yet, so a read timeout never loses partial input.
	pending bytes.Buffer
}

// NewTCP wraps conn. writeTimeout bounds each WriteMessage; zero disables it.
func NewTCP(conn net.Conn, writeTimeout time.Duration) *TCPTransport {
	return &TCPTransport{
		conn:         conn,
		reader:       bufio.NewReaderSize(conn, 16*1024),
		writeTimeout: writeTimeout,
	}
}

func (t *TCPTransport) ReadMessage(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = t.conn.SetReadDeadline(time.Time{})
	}

	chunk, err := t.reader.ReadBytes('\n')
	t.pending.Write(chunk)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, ErrTimeout
		}
		if errors.Is(err, io.EOF) {
			// A partial frame at EOF is not a complete message; discard it.
			return nil, io.EOF
		}
		return nil, err
	}

	msg := bytes.TrimRight(t.pending.Bytes(), "\r\n")
	out := make([]byte, len(msg))
	copy(out, msg)
	t.pending.Reset()
	return out, nil
}

func (t *TCPTransport) WriteMessage(data []byte) error {
	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	// Single write so the frame hits the wire in one piece.
	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, data...)
	framed = append(framed, '\n')
	_, err := t.conn.Write(framed)
	return err
}

func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

func (t *TCPTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}
