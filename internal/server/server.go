package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Ubastic/JDfund/internal/broadcast"
	"github.com/Ubastic/JDfund/internal/feed"
	"github.com/Ubastic/JDfund/internal/gateway"
)

// Config configures the UI surface.
type Config struct {
	Addr string // loopback listen address
}

// Server serves the gateway operations and the event stream to the UI.
type Server struct {
	cfg      Config
	gw       *gateway.Gateway
	broker   *broadcast.Broker
	sup      *feed.Supervisor
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpSrv *http.Server
}

// New creates a Server. sup may be nil in tests; /api/status then omits
// feed stats.
func New(cfg Config, gw *gateway.Gateway, broker *broadcast.Broker, sup *feed.Supervisor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		gw:     gw,
		broker: broker,
		sup:    sup,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Loopback-only server; the webview origin varies by platform.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSaveSettings)
	mux.HandleFunc("POST /api/settings/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/settings/bgcolor", s.handleBGColor)
	mux.HandleFunc("POST /api/fetch", s.handleFetch)
	mux.HandleFunc("POST /api/quit", s.handleQuit)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.withRequestLog(mux),
	}

	return s
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ui server listening", "addr", s.cfg.Addr)
		if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
		return nil
	}
}

// withRequestLog tags each request with an id and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Debug("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
