package crypto

import "fmt"

// ErrorCode classifies a CryptoError.
type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "validation"
	ErrCodeInvalidSignature ErrorCode = "invalid_signature"
	ErrCodeKeyManagement    ErrorCode = "key_management"
	ErrCodeInternal         ErrorCode = "internal"
)

// CryptoError is returned by the key, hashing, canonical JSON and condition code.
// The api package maps its code to a response status.
type CryptoError struct {
	code    ErrorCode
	message string
	wrapped error
}

func (e *CryptoError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *CryptoError) Code() ErrorCode { return e.code }
func (e *CryptoError) Unwrap() error   { return e.wrapped }

// NewValidationError reports input that cannot be decoded: malformed condition URIs and
// DER fulfillments, unknown condition types, invalid JSON and numbers the canonical
// form cannot carry.
func NewValidationError(msg string) error {
	return &CryptoError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError is NewValidationError with an underlying decoder or marshal error.
func WrapValidationError(err error, msg string) error {
	return &CryptoError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// NewSignatureError reports a condition that cannot be satisfied: a key that does not
// match the condition's public key, a signature of the wrong size, an unsigned leaf or a
// threshold with too few fulfilled subconditions. The transaction verifier also returns it
// when an Ed25519 signature does not check against the signing message.
func NewSignatureError(msg string) error {
	return &CryptoError{code: ErrCodeInvalidSignature, message: msg}
}

// NewKeyManagementError reports a bad key: wrong seed or key length, invalid base58,
// or a JWK set that is empty or does not hold an Ed25519 key.
func NewKeyManagementError(msg string) error {
	return &CryptoError{code: ErrCodeKeyManagement, message: msg}
}

// WrapKeyManagementError wraps failures reading, parsing or writing key files.
func WrapKeyManagementError(err error, msg string) error {
	return &CryptoError{code: ErrCodeKeyManagement, message: msg, wrapped: err}
}

// NewInternalError reports a state the encoders never expect to reach, such as a decoded
// JSON value of an unknown Go type.
func NewInternalError(msg string) error {
	return &CryptoError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps failures of the system or of a library that valid input cannot
// cause: the random source, the DER builder, the hash writer.
func WrapInternalError(err error, msg string) error {
	return &CryptoError{code: ErrCodeInternal, message: msg, wrapped: err}
}
