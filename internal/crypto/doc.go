// Package crypto implements the RSA-PSS document signature engine used by
// docsign: key pair generation, PSS encoding with MGF1, signing and
// verification, the text envelope for keys, and the password-based wrapper
// that protects private keys at rest.
//
// # Algorithm Suite
//
//   - RSA with public exponent 65537. Primes come from the Miller–Rabin
//     search in internal/numtheory; the private exponent is the modular
//     inverse of E modulo (P-1)(Q-1).
//
//   - RSASSA-PSS with a 32-byte salt and MGF1. The digest primitive is
//     SHA3-256 by default; SHA-256 and SHAKE256 truncated to 256 bits are
//     available as [SHA256] and [SHAKE256]. All three produce 32-byte
//     digests, so the encoded message layout is the same for each.
//
//   - PBKDF2-HMAC-SHA-256 (100 000 iterations), HKDF-SHA-512 and
//     AES-256-GCM for sealing private keys with a password.
//
// # Encoded Message Layout
//
// For a modulus of modBits bits the encoded message EM is
// emLen = ceil(modBits/8) bytes:
//
//	EM = maskedDB || H || 0xbc
//	DB = 0x00...00 || 0x01 || salt
//	maskedDB = DB XOR MGF1(H, len(DB))
//	H = Hash(0x00 x 8 || Hash(document) || salt)
//
// The leftmost 8*emLen - (modBits-1) bits of maskedDB are cleared so the
// integer value of EM is always below the modulus. The signature is
// EM^D mod N written as exactly emLen big-endian bytes.
//
// # Security Notes
//
// Verification processes untrusted input and never panics on it. Malformed
// signatures return [ErrMalformedSignature]; well-formed signatures that do
// not match the document return [ErrSignatureInvalid].
//
// The big-integer arithmetic is not constant-time. Keep private keys sealed
// at rest and never log them.
package crypto
