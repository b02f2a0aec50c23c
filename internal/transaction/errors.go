package transaction

import (
	"errors"
	"fmt"
)

// Error represents a structured error from transaction construction or fulfillment
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	ErrCodeUnsupportedOperation   ErrorCode = "unsupported_operation"
	ErrCodeMissingArgument        ErrorCode = "missing_argument"
	ErrCodeMissingPrivateKey      ErrorCode = "missing_private_key"
	ErrCodeStructuralMismatch     ErrorCode = "structural_mismatch"
	ErrCodeInvalidAmount          ErrorCode = "invalid_amount"
	ErrCodeInvalidTransaction     ErrorCode = "invalid_transaction"
	ErrCodeInvalidFulfillment     ErrorCode = "invalid_fulfillment"
	ErrCodeUnsupportedFulfillment ErrorCode = "unsupported_fulfillment"
	ErrCodeSigningFailed          ErrorCode = "signing_failed"
)

// noInput marks errors that are not tied to a particular input
const noInput = -1

// TxError represents a structured error from the transaction package.
// All of these are caller errors: the arguments can be corrected and the call retried.
type TxError struct {

	// code is the error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// inputIndex is the input the error refers to, or -1
	inputIndex int

	// wrapped is the optional underlying error
	wrapped error
}

func (e *TxError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *TxError) Code() ErrorCode { return e.code }
func (e *TxError) Unwrap() error   { return e.wrapped }

// InputIndex returns the index of the input the error refers to, or -1.
func (e *TxError) InputIndex() int { return e.inputIndex }

// HasCode reports whether err is a TxError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var txErr *TxError
	return errors.As(err, &txErr) && txErr.code == code
}

// NewUnsupportedOperationError is returned for operation names outside CREATE, TRANSFER, COMPOSE and DECOMPOSE.
func NewUnsupportedOperationError(operation string) error {
	return &TxError{
		code:       ErrCodeUnsupportedOperation,
		message:    fmt.Sprintf("unsupported operation: %q (supported: CREATE, TRANSFER, COMPOSE, DECOMPOSE)", operation),
		inputIndex: noInput,
	}
}

// NewMissingArgumentError is returned when a builder's mandatory argument is absent.
func NewMissingArgumentError(operation Operation, argument string) error {
	return &TxError{
		code:       ErrCodeMissingArgument,
		message:    fmt.Sprintf("%s requires %s", operation, argument),
		inputIndex: noInput,
	}
}

// NewMissingPrivateKeyError is returned when no supplied private key matches an owner of the input.
func NewMissingPrivateKeyError(inputIndex int, owner string) error {
	return &TxError{
		code:       ErrCodeMissingPrivateKey,
		message:    fmt.Sprintf("missing private key for input %d (owner %s)", inputIndex, owner),
		inputIndex: inputIndex,
	}
}

// NewStructuralMismatchError is returned when recipients and component assets do not line up.
func NewStructuralMismatchError(msg string) error {
	return &TxError{code: ErrCodeStructuralMismatch, message: msg, inputIndex: noInput}
}

// NewInvalidAmountError is returned for output amounts outside 1..MaxAmount.
func NewInvalidAmountError(msg string) error {
	return &TxError{code: ErrCodeInvalidAmount, message: msg, inputIndex: noInput}
}

// NewInvalidTransactionError is returned for structurally unusable transactions.
func NewInvalidTransactionError(msg string) error {
	return &TxError{code: ErrCodeInvalidTransaction, message: msg, inputIndex: noInput}
}

// WrapInvalidTransactionError wraps err as an invalid transaction error.
func WrapInvalidTransactionError(err error, msg string) error {
	return &TxError{code: ErrCodeInvalidTransaction, message: msg, inputIndex: noInput, wrapped: err}
}

// WrapInvalidFulfillmentError is returned when an input's fulfillment does not satisfy its condition.
func WrapInvalidFulfillmentError(err error, inputIndex int, msg string) error {
	return &TxError{code: ErrCodeInvalidFulfillment, message: fmt.Sprintf("input %d: %s", inputIndex, msg), inputIndex: inputIndex, wrapped: err}
}

// NewUnsupportedFulfillmentError is returned when a signing mode cannot handle the input's condition type.
func NewUnsupportedFulfillmentError(inputIndex int, typeName string) error {
	return &TxError{
		code:       ErrCodeUnsupportedFulfillment,
		message:    fmt.Sprintf("input %d: delegated signing supports only single-owner inputs, got %s", inputIndex, typeName),
		inputIndex: inputIndex,
	}
}

// WrapSigningError wraps a failure returned by a signing callback.
func WrapSigningError(err error, inputIndex int) error {
	return &TxError{code: ErrCodeSigningFailed, message: fmt.Sprintf("signing input %d failed", inputIndex), inputIndex: inputIndex, wrapped: err}
}
