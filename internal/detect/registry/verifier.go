// Package registry verifies package existence against public package
// indexes. One lookup per package, no caching: any caching belongs to the
// caller so this layer stays pure and testable.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brownzinoart/weready/internal/core/errors"
	"github.com/brownzinoart/weready/internal/shared/observability"
	"github.com/brownzinoart/weready/internal/shared/util"
)

// Status is the outcome of one existence lookup.
type Status int

const (
	// StatusFound means the registry confirmed the package exists.
	StatusFound Status = iota
	// StatusNotFound means the registry explicitly answered "no such package".
	StatusNotFound
	// StatusUnknown means the lookup could not be completed (timeout, DNS,
	// 5xx, malformed response). Callers must fail open on this status: an
	// unreachable registry is never evidence of a hallucinated package.
	StatusUnknown
)

// Verifier answers whether a package name exists in a public registry.
type Verifier interface {
	Verify(ctx context.Context, pkg string) Status
	Name() string
}

// Config bounds a client's outbound behavior.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Rate    float64
	Burst   int
}

const (
	defaultTimeout = 3 * time.Second
	defaultRate    = 10
	defaultBurst   = 5
)

// Client is an HTTP existence checker for one registry. The endpoint
// function maps a package name to its metadata URL; existence derives from
// the HTTP status alone.
type Client struct {
	name     string
	endpoint func(pkg string) string
	client   *http.Client
	limiter  *util.Limiter
}

// NewPyPI returns a verifier backed by the PyPI JSON API.
func NewPyPI(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://pypi.org"
	}
	return newClient("pypi", cfg, func(pkg string) string {
		return fmt.Sprintf("%s/pypi/%s/json", base, url.PathEscape(pkg))
	})
}

// NewNPM returns a verifier backed by the npm registry. The slash in a
// scoped name is percent-encoded, as the registry API requires.
func NewNPM(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://registry.npmjs.org"
	}
	return newClient("npm", cfg, func(pkg string) string {
		return fmt.Sprintf("%s/%s", base, url.PathEscape(pkg))
	})
}

func newClient(name string, cfg Config, endpoint func(string) string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	r := cfg.Rate
	if r <= 0 {
		r = defaultRate
	}
	b := cfg.Burst
	if b <= 0 {
		b = defaultBurst
	}
	return &Client{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  util.NewLimiter(r, b),
	}
}

func (c *Client) Name() string {
	return c.name
}

// Verify issues one GET against the registry. A 2xx answer is StatusFound, a
// 404/410 is StatusNotFound, and everything else is StatusUnknown.
func (c *Client) Verify(ctx context.Context, pkg string) Status {
	ctx, span := observability.Tracer.Start(ctx, "registry.Verify", trace.WithAttributes(
		attribute.String("registry", c.name),
		attribute.String("package", pkg),
	))
	defer span.End()

	start := time.Now()
	status := c.verify(ctx, pkg)
	observability.RegistryLookupDuration.WithLabelValues(c.name, statusLabel(status)).Observe(time.Since(start).Seconds())
	if status == StatusUnknown {
		observability.RegistryFailOpenTotal.WithLabelValues(c.name).Inc()
	}

	span.SetAttributes(attribute.String("outcome", statusLabel(status)))
	return status
}

func (c *Client) verify(ctx context.Context, pkg string) Status {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return StatusUnknown
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(pkg), nil)
	if err != nil {
		return StatusUnknown
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		werr := errors.AddContext(errors.AddContext(err, errors.CtxRegistry, c.name), errors.CtxPackage, pkg)
		slog.Debug("registry lookup failed", "error", werr)
		return StatusUnknown
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return StatusFound
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return StatusNotFound
	default:
		slog.Debug("registry lookup inconclusive", "registry", c.name, "package", pkg, "status", resp.StatusCode)
		return StatusUnknown
	}
}

func statusLabel(s Status) string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
