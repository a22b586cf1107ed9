package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a key size is below MinKeyBits.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidKey is returned when key components are missing or not positive.
	ErrInvalidKey = errors.New("invalid key")

	// ErrEncodingTooShort is returned when the modulus is too small to hold
	// the digest, the salt and the PSS framing bytes.
	ErrEncodingTooShort = errors.New("encoding too short for modulus")

	// ErrInvalidDigestSize is returned when a digest does not match the
	// hash output size.
	ErrInvalidDigestSize = errors.New("invalid digest size")

	// ErrInvalidSaltLength is returned when a negative salt length is
	// requested for signing.
	ErrInvalidSaltLength = errors.New("invalid salt length")

	// ErrMalformedSignature is returned when a signature has the wrong length,
	// is not below the modulus, or decodes to an encoded message with a bad
	// trailer, padding or separator.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrSignatureInvalid is returned when a well-formed signature does not
	// match the document.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrMalformedKeyEncoding is returned when a key envelope or its body is
	// corrupt, or carries an unknown tag.
	ErrMalformedKeyEncoding = errors.New("malformed key encoding")

	// ErrUnknownHash is returned when a hash name or identifier is not supported.
	ErrUnknownHash = errors.New("unknown hash algorithm")

	// ErrDecryptionFailed is returned when a sealed private key cannot be
	// opened, either because the password is wrong or the data is corrupt.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrEmptyPassword is returned when sealing with an empty password.
	ErrEmptyPassword = errors.New("password is required")
)
