package transport

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/coder/websocket"
)

// WSTransport adapts a WebSocket connection. The WebSocket frame itself is
// the message boundary, so framing needs no extra work on this path.
//
// Read timeouts are not supported here: cancelling a read context tears down
// the underlying connection in coder/websocket, so callers must pass a zero
// timeout and rely on Close to interrupt a blocked read.
type WSTransport struct {
	conn         *websocket.Conn
	remote       string
	writeTimeout time.Duration
}

// NewWS wraps an accepted WebSocket connection.
func NewWS(conn *websocket.Conn, remote string, writeTimeout time.Duration) *WSTransport {
	return &WSTransport{conn: conn, remote: remote, writeTimeout: writeTimeout}
}

func (t *WSTransport) ReadMessage(timeout time.Duration) ([]byte, error) {
	_, data, err := t.conn.Read(context.Background())
	if err != nil {
		status := websocket.CloseStatus(err)
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			return nil, io.EOF
		}
		if errors.Is(err, context.Canceled) {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (t *WSTransport) WriteMessage(data []byte) error {
	ctx := context.Background()
	if t.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.writeTimeout)
		defer cancel()
	}
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *WSTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "server closed connection")
}

func (t *WSTransport) RemoteAddr() string {
	return t.remote
}
