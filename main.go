package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scalebridge/hub"
)

const (
	DEFAULT_BAUD_RATE  = 9600
	DEFAULT_PORT_MATCH = "USB to UART Bridge"
	DEFAULT_BACKOFF    = 5 * time.Second
)

//go:embed static/*
var static embed.FS

// Globals
var (
	Log      *zap.SugaredLogger
	Cache    *hub.Cache
	Registry *hub.Registry
)

func main() {
	flags, replayFlags := getFlags()

	logger := newLogger(flags.Debug)
	defer func() { _ = logger.Sync() }()
	Log = logger.Sugar()

	Cache = hub.NewCache()
	Registry = hub.NewRegistry(Cache, Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if replayFlags.Path != "" {
		replayer := newReplayer(replayFlags)
		go func() {
			if err := replayer.run(ctx, Cache, Registry, Log); err != nil {
				Log.Fatalw("couldn't run replay", "error", err)
			}
		}()
	} else {
		listPorts(Log)
		go runDiscovery(ctx, flags, Cache, Registry, Log)
	}

	handler := http.NewServeMux()
	handler.HandleFunc("/", IndexHandler)
	handler.HandleFunc("/api", APIHandler)
	handler.HandleFunc("/events", EventsHandler)
	handler.HandleFunc("/ws", WSHandler)
	handler.Handle("/static/", http.FileServer(http.FS(static)))

	srv := &http.Server{Addr: flags.Addr, Handler: handler}
	go func() {
		Log.Infow("listening", "addr", flags.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Log.Fatalw("http server", "error", err)
		}
	}()

	<-ctx.Done()
	Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Log.Warnw("shutdown", "error", err)
	}
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
