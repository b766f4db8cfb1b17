// Package httpapi implements the HTTP client facade: a persistent client
// that classifies each request into a rate-limit bucket, takes from the
// governor, sends, and reconciles the bucket from the response headers
// (spec §4.C), behind a per-host circuit breaker.
package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/dnscache"

	"github.com/stoat-chat/stoatgo/internal/circuitbreaker"
	"github.com/stoat-chat/stoatgo/internal/telemetry"
	"github.com/stoat-chat/stoatgo/ratelimit"
)

const (
	defaultAPIBaseURL = "https://api.stoat.chat"
	defaultCDNBaseURL = "https://cdn.revoltusercontent.com"
)

// Client is the persistent HTTP facade for the REST API. It is safe for
// concurrent use.
type Client struct {
	http    *http.Client
	apiURL  string
	cdnURL  string
	authHdr string // "X-Bot-Token" or "X-Session-Token"
	token   string

	governor *ratelimit.Governor
	breakers *circuitbreaker.Registry
	logger   *slog.Logger
	metrics  *telemetry.Metrics // nil disables instrumentation
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host (default https://api.stoat.chat).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(url, "/") }
}

// WithCDNURL overrides the media upload host (default
// https://cdn.revoltusercontent.com).
func WithCDNURL(url string) Option {
	return func(c *Client) { c.cdnURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying *http.Client. Intended for
// tests; production callers should prefer WithResolver for DNS caching.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithResolver wires a cached DNS resolver into the transport's dialer.
func WithResolver(resolver *dnscache.Resolver) Option {
	return func(c *Client) {
		c.http.Transport = newTransport(resolver)
	}
}

// WithLogger overrides the facade's logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithGovernor overrides the rate-limit governor (default a fresh one).
// Intended for tests that need to assert on governor state directly.
func WithGovernor(g *ratelimit.Governor) Option {
	return func(c *Client) { c.governor = g }
}

// WithMetrics enables Prometheus instrumentation for this client.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewBotClient returns a Client authenticating with a bot token
// (X-Bot-Token header).
func NewBotClient(token string, opts ...Option) *Client {
	return newClient("X-Bot-Token", token, opts...)
}

// NewSessionClient returns a Client authenticating with a user session
// token (X-Session-Token header).
func NewSessionClient(token string, opts ...Option) *Client {
	return newClient("X-Session-Token", token, opts...)
}

func newClient(authHdr, token string, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Transport: newTransport(nil), Timeout: 30 * time.Second},
		apiURL:   defaultAPIBaseURL,
		cdnURL:   defaultCDNBaseURL,
		authHdr:  authHdr,
		token:    token,
		governor: ratelimit.New(),
		breakers: circuitbreaker.NewRegistry(circuitbreaker.DefaultConfig()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) setAuth(r *http.Request) {
	r.Header.Set(c.authHdr, c.token)
}
