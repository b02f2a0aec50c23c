package api

// error_response.go maps lower level errors to the JSON error body returned to clients

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/planetmint/planetmint-driver-go/internal/crypto"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
	"github.com/planetmint/planetmint-driver-go/internal/transaction"
	"github.com/planetmint/planetmint-driver-go/internal/txstore"
)

// ErrorResponse is the error body. Status and Message match what ledger nodes return,
// the remaining fields help correlate the failure with the node's logs.
type ErrorResponse struct {
	Status        int             `json:"status"`
	Message       string          `json:"message"`
	HTTPMethod    string          `json:"http_method"`
	RequestURI    string          `json:"request_uri"`
	RequestID     string          `json:"request_id,omitempty"`
	ErrorDateTime string          `json:"error_date_time"`
	Errors        []DetailedError `json:"errors"`
}

// DetailedError describes the root cause.
type DetailedError struct {
	ErrorCode        ErrorCode `json:"error_code"`
	ErrorCodeText    string    `json:"error_code_text"`
	ErrorCodeMessage string    `json:"error_code_message"`
	InputIndex       *int      `json:"input_index,omitempty"`
}

// MapErrorToResponse maps APIError, transaction.TxError, crypto.CryptoError and
// txstore errors to an error response with the matching HTTP status.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status, text := apiStatus(apiErr.Code())
		return newErrorResponse(r, requestID, status, text, apiErr.Code(), err.Error(), nil)
	}

	var txErr *transaction.TxError
	if errors.As(err, &txErr) {
		code, text := ErrCodeInvalidTransaction, "Invalid transaction"
		switch txErr.Code() {
		case transaction.ErrCodeInvalidFulfillment, transaction.ErrCodeUnsupportedFulfillment:
			code, text = ErrCodeInvalidFulfillment, "Invalid fulfillment"
		}
		var index *int
		if i := txErr.InputIndex(); i >= 0 {
			index = &i
		}
		return newErrorResponse(r, requestID, http.StatusBadRequest, text, code, err.Error(), index)
	}

	var cryptoErr *crypto.CryptoError
	if errors.As(err, &cryptoErr) {
		if cryptoErr.Code() == crypto.ErrCodeInternal {
			return internalErrorResponse(r, requestID)
		}
		code, text := ErrCodeInvalidTransaction, "Invalid transaction"
		if cryptoErr.Code() == crypto.ErrCodeInvalidSignature {
			code, text = ErrCodeBadSignature, "Bad signature"
		}
		return newErrorResponse(r, requestID, http.StatusBadRequest, text, code, err.Error(), nil)
	}

	switch {
	case errors.Is(err, txstore.ErrNotFound):
		return newErrorResponse(r, requestID, http.StatusNotFound, "Not found", ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, txstore.ErrDoubleSpend):
		return newErrorResponse(r, requestID, http.StatusBadRequest, "Double spend", ErrCodeDoubleSpend, err.Error(), nil)
	case errors.Is(err, txstore.ErrConflict):
		return newErrorResponse(r, requestID, http.StatusConflict, "Conflicting transaction", ErrCodeConflict, err.Error(), nil)
	}

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return internalErrorResponse(r, requestID)
}

func apiStatus(code ErrorCode) (int, string) {
	switch code {
	case ErrCodeMalformedRequest:
		return http.StatusBadRequest, "Malformed request"
	case ErrCodeNotFound:
		return http.StatusNotFound, "Not found"
	case ErrCodeUnknownInput:
		return http.StatusBadRequest, "Input does not exist"
	case ErrCodeOwnershipMismatch:
		return http.StatusBadRequest, "Input owners do not match"
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge, "Request too large"
	}
	return http.StatusInternalServerError, "Internal Error"
}

func internalErrorResponse(r *http.Request, requestID string) *ErrorResponse {
	return newErrorResponse(r, requestID, http.StatusInternalServerError, "Internal Error", ErrCodeInternalError, "An internal error occurred", nil)
}

func newErrorResponse(r *http.Request, requestID string, status int, text string, code ErrorCode, message string, inputIndex *int) *ErrorResponse {
	return &ErrorResponse{
		Status:        status,
		Message:       fmt.Sprintf("%s: %s", text, message),
		HTTPMethod:    r.Method,
		RequestURI:    r.RequestURI,
		RequestID:     requestID,
		ErrorDateTime: time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        code,
				ErrorCodeText:    text,
				ErrorCodeMessage: message,
				InputIndex:       inputIndex,
			},
		},
	}
}
