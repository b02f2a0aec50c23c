// Package server is a single process Planetmint-compatible node for development
// and tests. It speaks the /api/v1 HTTP API, checks ids and fulfillments of
// submitted transactions and keeps them in a txstore ledger.
//
// There is no consensus, no block production and no full ledger validation:
// inputs must reference stored outputs held by the signing owners, and the
// store rejects double spends.
//
// The node is configured through environment variables (see internal/config).
// Middleware lives in internal/server/middleware.
package server
