// Package driver is the client for a ledger node's HTTP API.
//
// Transactions are prepared and fulfilled locally (see packages offchain and
// transaction) and then sent through one of the Send methods.
package driver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/planetmint/planetmint-driver-go/internal/transport"
)

// APIPrefix is the path of the node API root.
const APIPrefix = "/api/v1"

// Driver groups the node API endpoints.
type Driver struct {
	transport transport.Transport
	logger    *slog.Logger

	Transactions *TransactionsEndpoint
	Outputs      *OutputsEndpoint
	Blocks       *BlocksEndpoint
	Assets       *AssetsEndpoint
	Metadata     *MetadataEndpoint
}

// Option configures a Driver.
type Option func(*Driver, *options)

type options struct {
	cacheTTL time.Duration
}

// WithLogger sets the driver logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver, _ *options) { d.logger = l }
}

// WithRetrieveCacheTTL sets how long retrieved transactions are kept in memory.
// Zero disables the cache.
func WithRetrieveCacheTTL(ttl time.Duration) Option {
	return func(_ *Driver, o *options) { o.cacheTTL = ttl }
}

// New creates a driver that sends requests through t.
func New(t transport.Transport, opts ...Option) *Driver {
	d := &Driver{transport: t, logger: slog.Default()}
	o := options{cacheTTL: time.Hour}
	for _, opt := range opts {
		opt(d, &o)
	}

	var retrieved *cache.Cache
	if o.cacheTTL > 0 {
		retrieved = cache.New(o.cacheTTL, 2*o.cacheTTL)
	}

	d.Transactions = &TransactionsEndpoint{endpoint: endpoint{d, "/transactions/"}, cache: retrieved}
	d.Outputs = &OutputsEndpoint{endpoint{d, "/outputs/"}}
	d.Blocks = &BlocksEndpoint{endpoint{d, "/blocks/"}}
	d.Assets = &AssetsEndpoint{endpoint{d, "/assets"}}
	d.Metadata = &MetadataEndpoint{endpoint{d, "/metadata"}}
	return d
}

// NewFromNodes creates a driver over an HTTP transport to nodes.
// headers are sent to every node.
func NewFromNodes(nodes []transport.Node, headers http.Header, transportOpts []transport.Option, opts ...Option) *Driver {
	return New(transport.NewHTTPTransport(transport.NormalizeNodes(headers, nodes...), transportOpts...), opts...)
}

// Info returns the node's root document (versions, software, links).
func (d *Driver) Info(ctx context.Context, headers http.Header) (json.RawMessage, error) {
	return d.getRaw(ctx, "/", nil, headers)
}

// APIInfo returns the API root document.
func (d *Driver) APIInfo(ctx context.Context, headers http.Header) (json.RawMessage, error) {
	return d.getRaw(ctx, APIPrefix, nil, headers)
}

func (d *Driver) getRaw(ctx context.Context, path string, params url.Values, headers http.Header) (json.RawMessage, error) {
	resp, err := d.transport.ForwardRequest(ctx, transport.Request{
		Method:  http.MethodGet,
		Path:    path,
		Params:  params,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// endpoint is an API collection below APIPrefix
type endpoint struct {
	driver *Driver
	suffix string
}

// Path returns the collection path.
func (e endpoint) Path() string { return APIPrefix + e.suffix }

func (e endpoint) get(ctx context.Context, path string, params url.Values, headers http.Header, v any) error {
	resp, err := e.driver.transport.ForwardRequest(ctx, transport.Request{
		Method:  http.MethodGet,
		Path:    path,
		Params:  params,
		Headers: headers,
	})
	if err != nil {
		return err
	}
	return resp.Decode(v)
}
