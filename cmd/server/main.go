package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/uno-online/server/internal/config"
	"github.com/uno-online/server/internal/game"
	"github.com/uno-online/server/internal/lobby"
	"github.com/uno-online/server/internal/middleware"
	"github.com/uno-online/server/internal/netconn"
	"github.com/uno-online/server/internal/protocol"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on environment")
	}
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	seq := protocol.NewSequence()
	registry := netconn.NewRegistry()
	sessions := game.NewStore()
	rooms := lobby.NewRoomStore()
	handler := lobby.NewHandler(logger, seq, registry, rooms, sessions)

	srv := netconn.NewServer(registry, handler, seq, logger, cfg.ReadTimeout, cfg.WriteTimeout)

	mux := http.NewServeMux()
	mux.Handle("/ws", netconn.WSHandler(srv, logger))
	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: middleware.LogMiddleware(logger)(mux),
	}

	errc := make(chan error, 2)
	go func() {
		logger.WithField("addr", cfg.TCPAddr).Info("starting TCP listener")
		errc <- srv.ListenAndServe(cfg.TCPAddr)
	}()
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting WebSocket listener")
		errc <- httpSrv.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("listener failed")
		}
	case sig := <-sigs:
		logger.WithField("signal", sig).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	srv.Shutdown()
}
