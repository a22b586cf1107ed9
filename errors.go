package docsign

import (
	"errors"
	"fmt"

	"github.com/vaultsandbox/docsign/internal/crypto"
	"github.com/vaultsandbox/docsign/internal/numtheory"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidKeySize is returned when the configured key size is too small.
	ErrInvalidKeySize = crypto.ErrInvalidKeySize

	// ErrInvalidKey is returned when a key has missing or non-positive components.
	ErrInvalidKey = crypto.ErrInvalidKey

	// ErrEncodingTooShort is returned when a modulus cannot hold the PSS encoding.
	ErrEncodingTooShort = crypto.ErrEncodingTooShort

	// ErrMalformedSignature is returned when a signature cannot be decoded.
	ErrMalformedSignature = crypto.ErrMalformedSignature

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = crypto.ErrSignatureInvalid

	// ErrMalformedKeyEncoding is returned when a key text envelope is corrupt.
	ErrMalformedKeyEncoding = crypto.ErrMalformedKeyEncoding

	// ErrUnknownHash is returned when a hash algorithm is not supported.
	ErrUnknownHash = crypto.ErrUnknownHash

	// ErrDecryptionFailed is returned when a sealed private key cannot be opened.
	ErrDecryptionFailed = crypto.ErrDecryptionFailed

	// ErrEmptyPassword is returned when sealing a key without a password.
	ErrEmptyPassword = crypto.ErrEmptyPassword

	// ErrNoInverse is returned when a modular inverse does not exist.
	ErrNoInverse = numtheory.ErrNoInverse

	// ErrHashMismatch is returned when a package's document does not hash to
	// its recorded digest.
	ErrHashMismatch = errors.New("document hash mismatch")

	// ErrInvalidPackage is returned when a signature package is incomplete or
	// carries undecodable fields.
	ErrInvalidPackage = errors.New("invalid signature package")

	// ErrInvalidRequest is returned when a sign request is missing required fields.
	ErrInvalidRequest = errors.New("invalid sign request")
)

// DocSignError is implemented by all typed errors of this package.
type DocSignError interface {
	error
	DocSignError() // marker method
}

// Signing stages reported by SignError.
const (
	StageHash   = "hash"
	StageEncode = "encode"
	StageRSA    = "rsa"
)

// SignError represents a failure while producing a signature.
type SignError struct {
	Stage string // "hash", "encode", "rsa"
	Err   error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("signing failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *SignError) Unwrap() error {
	return e.Err
}

// DocSignError implements the DocSignError interface.
func (e *SignError) DocSignError() {}

// KeyGenerationError represents a failed key pair generation.
type KeyGenerationError struct {
	Bits int
	Err  error
}

func (e *KeyGenerationError) Error() string {
	return fmt.Sprintf("generating %d-bit key pair: %v", e.Bits, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyGenerationError) Unwrap() error {
	return e.Err
}

// DocSignError implements the DocSignError interface.
func (e *KeyGenerationError) DocSignError() {}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// DocSignError implements the DocSignError interface.
func (e *ValidationError) DocSignError() {}

// signStage maps an engine error to the signing stage it came from.
func signStage(err error) string {
	switch {
	case errors.Is(err, crypto.ErrUnknownHash), errors.Is(err, crypto.ErrInvalidDigestSize):
		return StageHash
	case errors.Is(err, crypto.ErrInvalidKey):
		return StageRSA
	default:
		return StageEncode
	}
}
