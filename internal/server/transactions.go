package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/planetmint/planetmint-driver-go/internal/api"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

var submitModes = map[string]bool{
	"async":  true,
	"sync":   true,
	"commit": true,
}

func (s *Server) apiInfo() api.APIInfo {
	return api.APIInfo{
		Docs:         "https://docs.planetmint.io/en/latest/",
		Transactions: apiPrefix + "/transactions/",
		Outputs:      apiPrefix + "/outputs/",
		Assets:       apiPrefix + "/assets/",
		Metadata:     apiPrefix + "/metadata/",
		Blocks:       apiPrefix + "/blocks/",
	}
}

func (s *Server) handleNodeInfo(w http.ResponseWriter, r *http.Request) {
	api.RespondWithJSONPayload(w, http.StatusOK, api.NodeInfo{
		Software: "Planetmint",
		Version:  version.Get().Version,
		API:      map[string]api.APIInfo{"v1": s.apiInfo()},
	})
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	api.RespondWithJSONPayload(w, http.StatusOK, s.apiInfo())
}

// handleSubmitTransaction accepts a fulfilled transaction. Every mode is
// answered once the transaction is stored.
func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "async"
	}
	if !submitModes[mode] {
		api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("mode must be one of async, sync, commit", nil))
		return
	}

	var tx transaction.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("request body is not a transaction", err))
		return
	}
	logger.ContextWithLogAttrs(r.Context(),
		slog.String("tx_id", tx.TxID()),
		slog.String("operation", tx.Operation.String()),
		slog.String("mode", mode),
	)

	if err := s.validate(&tx); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	if err := s.store.Put(&tx); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	api.RespondWithJSONPayload(w, http.StatusAccepted, &tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, tx)
}

// handleListTransactions serves ?asset_ids=a,b&operation=TRANSFER.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var assetIDs []string
	for _, id := range strings.Split(query.Get("asset_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			assetIDs = append(assetIDs, id)
		}
	}
	if len(assetIDs) == 0 {
		api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("asset_ids is required", nil))
		return
	}

	var op transaction.Operation
	if raw := query.Get("operation"); raw != "" {
		parsed, err := transaction.ParseOperation(raw)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}
		op = parsed
	}

	seen := make(map[string]bool)
	txs := []*transaction.Transaction{}
	for _, assetID := range assetIDs {
		found, err := s.store.ByAsset(assetID, op)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}
		for _, tx := range found {
			if !seen[tx.TxID()] {
				seen[tx.TxID()] = true
				txs = append(txs, tx)
			}
		}
	}
	api.RespondWithJSONPayload(w, http.StatusOK, txs)
}

// handleListOutputs serves ?public_key=...&spent=true|false.
func (s *Server) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	publicKey := query.Get("public_key")
	if publicKey == "" {
		api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("public_key is required", nil))
		return
	}

	var spent *bool
	if raw := query.Get("spent"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("spent must be true or false", err))
			return
		}
		spent = &value
	}

	links, err := s.store.Outputs(publicKey, spent)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	if links == nil {
		links = []transaction.TransactionLink{}
	}
	api.RespondWithJSONPayload(w, http.StatusOK, links)
}
