package gateway

import (
	"context"
	"log/slog"

	"github.com/Ubastic/JDfund/internal/fetch"
	"github.com/Ubastic/JDfund/internal/settings"
)

// Gateway binds the externally invokable operations to the settings store
// and the outbound fetch facility.
type Gateway struct {
	store     *settings.Store
	fetcher   *fetch.InsecureClient
	terminate func()
	logger    *slog.Logger
}

// New creates a Gateway. terminate is invoked by Quit; it must stop the
// process promptly and may abandon in-flight work.
func New(store *settings.Store, fetcher *fetch.InsecureClient, terminate func(), logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		store:     store,
		fetcher:   fetcher,
		terminate: terminate,
		logger:    logger,
	}
}

// GetSettings returns the current settings value.
func (g *Gateway) GetSettings() settings.Settings {
	return g.store.Get()
}

// SaveSettings persists next wholesale and returns the applied value.
func (g *Gateway) SaveSettings(ctx context.Context, next settings.Settings) (settings.Settings, error) {
	return g.store.Replace(ctx, next)
}

// TogglePlatform flips the visibility flag for one source id.
func (g *Gateway) TogglePlatform(ctx context.Context, id string) (settings.Settings, error) {
	return g.store.Toggle(ctx, id)
}

// SetBGColor sets the ticker background color.
func (g *Gateway) SetBGColor(ctx context.Context, color string) (settings.Settings, error) {
	return g.store.SetBGColor(ctx, color)
}

// Fetch runs a one-shot outbound request for a pull-only price source.
func (g *Gateway) Fetch(ctx context.Context, method, url string, body []byte) (*fetch.Result, error) {
	return g.fetcher.Fetch(ctx, method, url, body)
}

// Quit requests immediate process termination. No drain of in-flight
// operations is guaranteed; outstanding feed work is abandoned.
func (g *Gateway) Quit() {
	g.logger.Info("quit requested")
	g.terminate()
}
