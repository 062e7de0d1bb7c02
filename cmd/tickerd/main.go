package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Ubastic/JDfund/internal/broadcast"
	"github.com/Ubastic/JDfund/internal/config"
	"github.com/Ubastic/JDfund/internal/feed"
	"github.com/Ubastic/JDfund/internal/fetch"
	"github.com/Ubastic/JDfund/internal/gateway"
	"github.com/Ubastic/JDfund/internal/logging"
	"github.com/Ubastic/JDfund/internal/server"
	"github.com/Ubastic/JDfund/internal/settings"
	"github.com/Ubastic/JDfund/internal/storage"
	"github.com/Ubastic/JDfund/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tickerd.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	logger := logging.New(cfg.Log)
	logger.Info("starting tickerd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Durable settings storage. Open failures are recoverable: the process
	// continues with an in-memory store and default settings.
	st := openStorage(cfg.Store.Path, logger)
	if st != nil {
		defer st.Close()
	}

	broker := broadcast.New(logger)
	store := settings.NewStore(ctx, st, broker, logger)
	logger.Info("settings loaded", "settings", store.Get())

	fetcher := fetch.NewInsecureClient(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithLogger(logger),
	)

	sup := feed.NewSupervisor(
		feed.Config{
			URL:              cfg.Feed.URL,
			Instruments:      cfg.Feed.Instruments,
			ReconnectDelay:   cfg.Feed.ReconnectDelay,
			HandshakeTimeout: cfg.Feed.HandshakeTimeout,
			WriteTimeout:     cfg.Feed.WriteTimeout,
		},
		&feed.WSDialer{
			HandshakeTimeout: cfg.Feed.HandshakeTimeout,
			WriteTimeout:     cfg.Feed.WriteTimeout,
			Logger:           logger,
		},
		broker,
		logger,
	)

	// Quit is immediate and unconditional: cancel the root context and let
	// the group unwind without draining in-flight work.
	gw := gateway.New(store, fetcher, cancel, logger)

	srv := server.New(server.Config{Addr: cfg.Server.Addr}, gw, broker, sup, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("tickerd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("tickerd stopped")
}

// openStorage opens the settings database, creating parent directories as
// needed. Falls back to an in-memory store so settings keep working for
// the session even when the disk copy is unavailable.
func openStorage(path string, logger *slog.Logger) storage.Store {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("create settings directory", "path", path, "error", err)
	}

	st, err := storage.Open(path)
	if err == nil {
		return st
	}
	logger.Error("open settings storage, falling back to memory", "path", path, "error", err)

	mem, err := storage.OpenMemory()
	if err != nil {
		logger.Error("open in-memory storage", "error", err)
		return nil
	}
	return mem
}
