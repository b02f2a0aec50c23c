package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// OutputRef points at an output returned by the outputs endpoint.
type OutputRef struct {
	TransactionID string `json:"transaction_id"`
	OutputIndex   int    `json:"output_index"`
}

// OutputsEndpoint is /api/v1/outputs/.
type OutputsEndpoint struct{ endpoint }

// Get lists the outputs locked to publicKey. spent filters on spent (true) or
// unspent (false) outputs; nil returns both.
func (e *OutputsEndpoint) Get(ctx context.Context, publicKey string, spent *bool, headers http.Header) ([]OutputRef, error) {
	params := url.Values{"public_key": {publicKey}}
	if spent != nil {
		params.Set("spent", strconv.FormatBool(*spent))
	}
	var outputs []OutputRef
	if err := e.get(ctx, e.Path(), params, headers, &outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Block is a committed block.
type Block struct {
	Height       int               `json:"height"`
	Transactions []json.RawMessage `json:"transactions"`
}

// BlocksEndpoint is /api/v1/blocks/.
type BlocksEndpoint struct{ endpoint }

// Get returns the heights of the blocks containing txid.
func (e *BlocksEndpoint) Get(ctx context.Context, txid string, headers http.Header) ([]int, error) {
	var heights []int
	if err := e.get(ctx, e.Path(), url.Values{"transaction_id": {txid}}, headers, &heights); err != nil {
		return nil, err
	}
	return heights, nil
}

// Retrieve returns the block at height.
func (e *BlocksEndpoint) Retrieve(ctx context.Context, height int, headers http.Header) (*Block, error) {
	var b Block
	if err := e.get(ctx, e.Path()+strconv.Itoa(height), nil, headers, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// AssetsEndpoint is /api/v1/assets.
type AssetsEndpoint struct{ endpoint }

// Get returns the assets addressed by cid. limit <= 0 means no limit.
func (e *AssetsEndpoint) Get(ctx context.Context, cid string, limit int, headers http.Header) ([]json.RawMessage, error) {
	var assets []json.RawMessage
	if err := e.get(ctx, e.Path()+"/"+url.PathEscape(cid), limitParams(limit), headers, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// MetadataEndpoint is /api/v1/metadata.
type MetadataEndpoint struct{ endpoint }

// Get returns the metadata entries matching search. limit <= 0 means no limit.
func (e *MetadataEndpoint) Get(ctx context.Context, search string, limit int, headers http.Header) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := e.get(ctx, e.Path()+"/"+url.PathEscape(search), limitParams(limit), headers, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func limitParams(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
