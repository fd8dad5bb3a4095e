// Package httptransport delivers payloads to a collector endpoint over HTTP.
//
// Status codes map onto delivery outcomes: 2xx is success, request timeout,
// rate limiting, 5xx and transport-level errors are retryable, and all other
// 4xx responses are permanent rejections.
package httptransport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crashkit/delivery"
)

const (
	defaultTimeout  = 30 * time.Second
	drainBodyLimit  = 4 << 10
	defaultBodyType = "application/json"
)

// ErrEndpointRequired is returned when the collector endpoint is empty.
var ErrEndpointRequired = errors.New("delivery http: endpoint is required")

// Transport posts payload bodies to <endpoint>/<resource type>.
type Transport struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

var _ delivery.Transport = (*Transport)(nil)

// Option configures the transport.
type Option func(*Transport)

// WithClient sets the HTTP client. The default client applies a 30s timeout
// so an attempt can never hang forever.
func WithClient(client *http.Client) Option {
	return func(t *Transport) {
		t.client = client
	}
}

// WithHeader adds a header to every request, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(t *Transport) {
		t.header.Set(key, value)
	}
}

// New constructs a Transport for the collector endpoint.
func New(endpoint string, opts ...Option) (*Transport, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("delivery http: invalid endpoint: %w", err)
	}

	t := &Transport{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: defaultTimeout}
	}
	if t.header.Get("Content-Type") == "" {
		t.header.Set("Content-Type", defaultBodyType)
	}

	return t, nil
}

// Send posts one payload body to the collector. Network-level failures come
// back as plain (retryable) errors; rejections that a retry cannot fix are
// wrapped with delivery.Permanent.
func (t *Transport) Send(ctx context.Context, payload delivery.Payload) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.endpoint+"/"+string(payload.Resource),
		bytes.NewReader(payload.Body),
	)
	if err != nil {
		return fmt.Errorf("delivery http: build request: %w", err)
	}
	for key, values := range t.header {
		req.Header[key] = values
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery http: send %s: %w", payload.Resource, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainBodyLimit))
		_ = resp.Body.Close()
	}()

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("delivery http: collector returned %d", code)
	default:
		return delivery.Permanent(fmt.Errorf("delivery http: collector rejected payload with status %d", code))
	}
}
