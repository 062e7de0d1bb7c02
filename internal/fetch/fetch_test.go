package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch_UnsupportedMethodNoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewInsecureClient()

	for _, method := range []string{"PUT", "DELETE", "PATCH", "HEAD"} {
		_, err := c.Fetch(context.Background(), method, srv.URL, nil)
		if !errors.Is(err, ErrUnsupportedMethod) {
			t.Errorf("Fetch(%s) err = %v, want ErrUnsupportedMethod", method, err)
		}
	}

	if got := calls.Load(); got != 0 {
		t.Errorf("server saw %d requests, want 0", got)
	}
}

func TestFetch_SkipsCertificateValidation(t *testing.T) {
	// httptest.NewTLSServer presents a self-signed certificate no default
	// trust store accepts.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("563.21"))
	}))
	defer srv.Close()

	c := NewInsecureClient()

	result, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if result.Body != "563.21" {
		t.Errorf("Body = %q, want %q", result.Body, "563.21")
	}
}

func TestFetch_PostSetsJSONContentType(t *testing.T) {
	var gotContentType string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
	}))
	defer srv.Close()

	c := NewInsecureClient()

	if _, err := c.Fetch(context.Background(), http.MethodPost, srv.URL, []byte(`{"key":"xau"}`)); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"key":"xau"}` {
		t.Errorf("body = %q, want request body forwarded", gotBody)
	}
}

func TestFetch_PostWithoutBodyHasNoContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	c := NewInsecureClient()

	if _, err := c.Fetch(context.Background(), http.MethodPost, srv.URL, nil); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotContentType != "" {
		t.Errorf("Content-Type = %q, want empty", gotContentType)
	}
}

func TestFetch_ErrorStatusReturnedToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewInsecureClient()

	// A non-2xx status is a result, not an error; retry policy belongs to
	// the caller.
	result, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", result.StatusCode)
	}
}

func TestFetch_TimeoutHonored(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewInsecureClient(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	_, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Fetch took %v, timeout not honored", elapsed)
	}
}
