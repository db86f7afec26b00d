package config

import (
	"os"
	"time"
)

// Config holds the server's runtime settings, loaded from the environment.
type Config struct {
	// TCPAddr is the listen address for the newline-delimited JSON transport.
	TCPAddr string
	// HTTPAddr is the listen address for the WebSocket endpoint.
	HTTPAddr string

	// ReadTimeout bounds a single blocking read on a TCP connection. The
	// read loop treats an expired deadline as "no message yet" and retries.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single outbound message write.
	WriteTimeout time.Duration

	LogLevel string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() Config {
	return Config{
		TCPAddr:      envOr("UNO_TCP_ADDR", ":9090"),
		HTTPAddr:     envOr("UNO_HTTP_ADDR", ":9091"),
		ReadTimeout:  envDuration("UNO_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: envDuration("UNO_WRITE_TIMEOUT", 10*time.Second),
		LogLevel:     envOr("UNO_LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
