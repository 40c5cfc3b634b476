package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/brownzinoart/weready/internal/shared/observability"
)

func TestVerify_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Status
	}{
		{"ok", http.StatusOK, StatusFound},
		{"not found", http.StatusNotFound, StatusNotFound},
		{"gone", http.StatusGone, StatusNotFound},
		{"server error", http.StatusInternalServerError, StatusUnknown},
		{"rate limited", http.StatusTooManyRequests, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			c := NewPyPI(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
			if got := c.Verify(context.Background(), "somepkg"); got != tt.want {
				t.Errorf("Verify = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestVerify_UnreachableRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewNPM(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
	if got := c.Verify(context.Background(), "express"); got != StatusUnknown {
		t.Errorf("Verify = %v, expected StatusUnknown on connection failure", got)
	}
}

func TestVerify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewPyPI(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Rate: 1000, Burst: 1000})
	if got := c.Verify(context.Background(), "slowpkg"); got != StatusUnknown {
		t.Errorf("Verify = %v, expected StatusUnknown on timeout", got)
	}
}

func TestVerify_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewPyPI(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
	if got := c.Verify(ctx, "pkg"); got != StatusUnknown {
		t.Errorf("Verify = %v, expected StatusUnknown on cancelled context", got)
	}
}

func TestPyPI_EndpointPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewPyPI(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
	c.Verify(context.Background(), "requests")

	if gotPath != "/pypi/requests/json" {
		t.Errorf("path = %q, expected /pypi/requests/json", gotPath)
	}
}

func TestNPM_ScopedNameEncoding(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
	}))
	defer srv.Close()

	c := NewNPM(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
	c.Verify(context.Background(), "@angular/core")

	// The slash inside a scoped name must be percent-encoded.
	if gotURI != "/@angular%2Fcore" {
		t.Errorf("uri = %q, expected /@angular%%2Fcore", gotURI)
	}
}

func TestVerify_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewPyPI(Config{BaseURL: srv.URL, Rate: 1000, Burst: 1000})
	c.Verify(context.Background(), "ghost_pkg")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "registry.Verify" {
		t.Errorf("span name = %q", spans[0].Name())
	}

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	if attrs["registry"] != "pypi" {
		t.Errorf("registry attribute = %q", attrs["registry"])
	}
	if attrs["outcome"] != "not_found" {
		t.Errorf("outcome attribute = %q", attrs["outcome"])
	}
}

func TestConfig_Defaults(t *testing.T) {
	c := newClient("test", Config{}, func(pkg string) string { return pkg })
	if c.client.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, expected %v", c.client.Timeout, defaultTimeout)
	}
}
