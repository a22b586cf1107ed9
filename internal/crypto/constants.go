package crypto

const (
	// DigestSize is the output size in bytes of every supported hash.
	DigestSize = 32

	// DefaultSaltSize is the PSS salt length in bytes.
	DefaultSaltSize = 32

	// SaltLengthAuto accepts any salt length during verification: the salt is
	// whatever follows the 0x01 separator.
	SaltLengthAuto = -1

	// PublicExponent is the fixed RSA public exponent.
	PublicExponent = 65537

	// MinKeyBits is the smallest modulus size accepted by key generation.
	MinKeyBits = 64

	// DefaultKeyBits is the modulus size used when none is configured.
	DefaultKeyBits = 2048

	// MinSigningKeyBits is the smallest modulus that can hold a PSS encoding
	// with a DigestSize digest and a DefaultSaltSize salt.
	MinSigningKeyBits = 8*(DigestSize+DefaultSaltSize+1) + 2

	// AlgorithmRSAPSS names the signature algorithm in signature packages.
	AlgorithmRSAPSS = "RSA-PSS"

	// pssTrailer is the last byte of every encoded message.
	pssTrailer = 0xbc

	// keyLengthPrefix is the size of the big-endian length before each
	// integer in a key body.
	keyLengthPrefix = 4
)

const (
	// KeyWrapVersion is the format version of sealed private keys.
	KeyWrapVersion = 1
	// KeyWrapSaltSize is the size of the random PBKDF2 salt.
	KeyWrapSaltSize = 16
	// KeyWrapIterations is the PBKDF2 iteration count.
	KeyWrapIterations = 100000
	// KeyWrapContext is the HKDF info string for deriving the AES key.
	KeyWrapContext = "vaultsandbox:docsign:key-at-rest:v1"

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16
)
