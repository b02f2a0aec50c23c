package api

// errors.go defines the error codes returned by the sandbox node

import "fmt"

// APIError represents a structured error raised by the node's HTTP layer.
type APIError struct {
	// code is the API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *APIError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *APIError) Code() ErrorCode { return e.code }
func (e *APIError) Unwrap() error   { return e.wrapped }

// ErrorCode is used in error responses.
//
// 7000-7999 are technical errors (the request could not be processed as sent),
// 8000-8999 are ledger errors (the transaction was understood but refused).
type ErrorCode int

const (
	ErrCodeMalformedRequest   ErrorCode = 7001
	ErrCodeInvalidTransaction ErrorCode = 7002
	ErrCodeInvalidFulfillment ErrorCode = 7003
	ErrCodeBadSignature       ErrorCode = 7004
	ErrCodeInternalError      ErrorCode = 7005
	ErrCodeRateLimitExceeded  ErrorCode = 7009
	ErrCodeRequestTooLarge    ErrorCode = 7010

	ErrCodeNotFound          ErrorCode = 8001
	ErrCodeDoubleSpend       ErrorCode = 8002
	ErrCodeConflict          ErrorCode = 8003
	ErrCodeUnknownInput      ErrorCode = 8004
	ErrCodeOwnershipMismatch ErrorCode = 8005
)

// NewMalformedRequestError is used when a request cannot be decoded or has bad parameters.
func NewMalformedRequestError(msg string, err error) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewNotFoundError is used when a requested resource does not exist.
func NewNotFoundError(msg string) error {
	return &APIError{code: ErrCodeNotFound, message: msg}
}

// NewUnknownInputError is used when an input spends an output the node does not know.
func NewUnknownInputError(msg string) error {
	return &APIError{code: ErrCodeUnknownInput, message: msg}
}

// NewOwnershipMismatchError is used when an input's owners differ from the spent output's keys.
func NewOwnershipMismatchError(msg string) error {
	return &APIError{code: ErrCodeOwnershipMismatch, message: msg}
}

// NewRateLimitError is only used by the middleware.
func NewRateLimitError(msg string) error {
	return &APIError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError is only used by the middleware.
func NewRequestTooLargeError(msg string) error {
	return &APIError{code: ErrCodeRequestTooLarge, message: msg}
}
