package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrUnsupportedMethod is returned for any method other than GET or POST,
// before any network I/O happens.
var ErrUnsupportedMethod = errors.New("unsupported method")

// Result is the outcome of one fetch.
type Result struct {
	StatusCode int
	Body       string
}

// InsecureClient performs one-shot requests with TLS verification disabled.
// Failures are returned to the caller, never retried internally; retry
// policy belongs to the caller.
type InsecureClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an InsecureClient.
type Option func(*InsecureClient)

// WithTimeout sets the per-request timeout. Without one a dead endpoint
// would hang the caller indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *InsecureClient) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *InsecureClient) {
		c.logger = logger
	}
}

// NewInsecureClient creates a client whose transport skips certificate and
// hostname validation.
func NewInsecureClient(opts ...Option) *InsecureClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	c := &InsecureClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one GET or POST against url. A POST with a body is sent
// as application/json.
func (c *InsecureClient) Fetch(ctx context.Context, method, url string, body []byte) (*Result, error) {
	switch method {
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if method == http.MethodPost && len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("fetch complete",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       string(data),
	}, nil
}
