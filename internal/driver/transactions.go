package driver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/planetmint/planetmint-driver-go/internal/offchain"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/transport"
)

// Mode is how long a node waits before answering a submission.
type Mode string

const (
	ModeAsync  Mode = "async"
	ModeSync   Mode = "sync"
	ModeCommit Mode = "commit"
)

// TransactionsEndpoint is /api/v1/transactions/.
type TransactionsEndpoint struct {
	endpoint
	cache *cache.Cache
}

// Prepare builds an unsigned transaction. It does not contact the node.
func (e *TransactionsEndpoint) Prepare(args offchain.Args) (*transaction.Transaction, error) {
	return offchain.Prepare(args)
}

// Fulfill signs tx with privateKeys. It does not contact the node.
func (e *TransactionsEndpoint) Fulfill(tx *transaction.Transaction, privateKeys ...string) (*transaction.Transaction, error) {
	return transaction.Fulfill(tx, privateKeys)
}

// Get lists the transactions touching the given assets, optionally filtered by operation.
func (e *TransactionsEndpoint) Get(ctx context.Context, assetIDs []string, operation transaction.Operation, headers http.Header) ([]*transaction.Transaction, error) {
	if len(assetIDs) == 0 {
		return nil, errors.New("at least one asset id is required")
	}
	params := url.Values{"asset_ids": {strings.Join(assetIDs, ",")}}
	if operation != "" {
		params.Set("operation", operation.String())
	}

	var txs []*transaction.Transaction
	if err := e.get(ctx, e.Path(), params, headers, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// SendAsync submits tx without waiting for validation.
func (e *TransactionsEndpoint) SendAsync(ctx context.Context, tx *transaction.Transaction, headers http.Header) (*transaction.Transaction, error) {
	return e.Send(ctx, tx, ModeAsync, headers)
}

// SendSync submits tx and waits for it to be checked.
func (e *TransactionsEndpoint) SendSync(ctx context.Context, tx *transaction.Transaction, headers http.Header) (*transaction.Transaction, error) {
	return e.Send(ctx, tx, ModeSync, headers)
}

// SendCommit submits tx and waits for it to be committed.
func (e *TransactionsEndpoint) SendCommit(ctx context.Context, tx *transaction.Transaction, headers http.Header) (*transaction.Transaction, error) {
	return e.Send(ctx, tx, ModeCommit, headers)
}

// Send submits a fulfilled transaction and returns the node's copy.
func (e *TransactionsEndpoint) Send(ctx context.Context, tx *transaction.Transaction, mode Mode, headers http.Header) (*transaction.Transaction, error) {
	if tx == nil || !tx.Finalized() {
		return nil, transaction.NewInvalidTransactionError("only fulfilled transactions can be sent")
	}

	resp, err := e.driver.transport.ForwardRequest(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    e.Path(),
		Params:  url.Values{"mode": {string(mode)}},
		JSON:    tx,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}

	var sent transaction.Transaction
	if err := resp.Decode(&sent); err != nil {
		return nil, err
	}
	e.driver.logger.Debug("transaction sent",
		slog.String("id", tx.TxID()),
		slog.String("operation", tx.Operation.String()),
		slog.String("mode", string(mode)))
	return &sent, nil
}

// Retrieve fetches a committed transaction by id.
// Committed transactions never change, so results are memoized.
func (e *TransactionsEndpoint) Retrieve(ctx context.Context, txid string, headers http.Header) (*transaction.Transaction, error) {
	if txid == "" {
		return nil, errors.New("transaction id is required")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(txid); ok {
			return cached.(*transaction.Transaction).Clone(), nil
		}
	}

	var tx transaction.Transaction
	if err := e.get(ctx, e.Path()+txid, nil, headers, &tx); err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.SetDefault(txid, tx.Clone())
	}
	return &tx, nil
}
