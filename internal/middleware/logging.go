package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// statusRecorder captures the response code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack must pass through: the WebSocket upgrade takes over the underlying
// connection and fails if the wrapper hides the Hijacker.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// LogMiddleware logs every request with method, path, status, duration, and
// remote address.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("http request")
		})
	}
}

// LogWebSocketConnect records an accepted upgrade and returns the connect time
// so the disconnect log can carry the session duration.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, path string) time.Time {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"path":   path,
	}).Info("websocket session opened")
	return time.Now()
}

// LogWebSocketDisconnect closes the bracket opened by LogWebSocketConnect.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, path string, connectedAt time.Time, err error) {
	fields := logrus.Fields{
		"remote":   remoteAddr,
		"path":     path,
		"duration": time.Since(connectedAt),
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("websocket session closed")
}
