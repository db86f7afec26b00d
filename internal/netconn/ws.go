package netconn

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/uno-online/server/internal/middleware"
	"github.com/uno-online/server/internal/transport"
)

// WSHandler upgrades HTTP requests to WebSocket and runs them through the
// same connection lifecycle as raw TCP clients. One WebSocket text message
// carries one envelope.
func WSHandler(s *Server, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // tighten for production deployments
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept failed")
			return
		}
		connectedAt := middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		tr := transport.NewWS(c, r.RemoteAddr, s.writeTimeout)
		s.ServeTransport(tr)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, connectedAt, nil)
	}
}
