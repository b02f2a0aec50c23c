// Package transport forwards driver requests to ledger nodes over HTTP.
//
// Requests are spread over the configured nodes round-robin. A failed request is
// reported to the caller as a TransportError and is not retried.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 20 * time.Second

// Request is one API call. Path is relative to the node endpoint.
type Request struct {
	Method  string
	Path    string
	Params  url.Values
	JSON    any
	Headers http.Header
}

// Response is a 2xx answer from a node.
type Response struct {
	Status  int
	Headers http.Header
	Body    json.RawMessage
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Transport forwards requests to a node.
type Transport interface {
	ForwardRequest(ctx context.Context, req Request) (*Response, error)
}

// HTTPTransport is a Transport over net/http.
type HTTPTransport struct {
	nodes      []Node
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu   sync.Mutex
	next int
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) { t.httpClient.Timeout = d }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.httpClient = c }
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(t *HTTPTransport) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(t *HTTPTransport) { t.logger = l }
}

// NewHTTPTransport creates a transport over already normalized nodes.
func NewHTTPTransport(nodes []Node, opts ...Option) *HTTPTransport {
	if len(nodes) == 0 {
		nodes = NormalizeNodes(nil)
	}
	t := &HTTPTransport{
		nodes:      nodes,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Nodes returns the nodes requests are spread over.
func (t *HTTPTransport) Nodes() []Node { return t.nodes }

func (t *HTTPTransport) pickNode() Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodes[t.next%len(t.nodes)]
	t.next++
	return n
}

// ForwardRequest sends req to the next node and returns its 2xx response.
func (t *HTTPTransport) ForwardRequest(ctx context.Context, req Request) (*Response, error) {
	node := t.pickNode()

	u, err := url.Parse(node.Endpoint + req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request URL: %w", err)
	}
	if len(req.Params) > 0 {
		u.RawQuery = req.Params.Encode()
	}
	target := u.String()

	var body io.Reader
	if req.JSON != nil {
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range node.Headers {
		httpReq.Header[k] = v
	}
	for k, v := range req.Headers {
		httpReq.Header[http.CanonicalHeaderKey(k)] = v
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := httpReq.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, newConnectionError(target, err)
		}
	}

	start := time.Now()
	// #nosec G704 -- the endpoint comes from driver configuration and the query is encoded above
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.Debug("node request failed",
			slog.String("request_id", requestID),
			slog.String("method", req.Method),
			slog.String("url", target),
			slog.String("error", err.Error()))
		return nil, newConnectionError(target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newConnectionError(target, fmt.Errorf("failed to read response: %w", err))
	}

	t.logger.Debug("node request",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(target, resp.StatusCode, decodeInfo(data))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s returned a body that is not JSON", target)
	}
	return &Response{Status: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

func decodeInfo(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v
	}
	return string(data)
}
