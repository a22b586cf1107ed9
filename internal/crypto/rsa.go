package crypto

import (
	"fmt"
	"io"
	"math/big"
)

// SignPSS hashes document with h and signs it with priv using RSASSA-PSS.
// The signature is exactly priv.Size() bytes.
func SignPSS(h Hash, priv *PrivateKey, document []byte, saltLen int, rng io.Reader) ([]byte, error) {
	if !h.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHash, h)
	}
	return SignDigestPSS(h, priv, h.Sum(document), saltLen, rng)
}

// SignDigestPSS signs a precomputed digest with priv using RSASSA-PSS.
func SignDigestPSS(h Hash, priv *PrivateKey, digest []byte, saltLen int, rng io.Reader) ([]byte, error) {
	if err := priv.validate(); err != nil {
		return nil, err
	}

	modBits := priv.N.BitLen()
	em, err := EncodePSS(h, digest, modBits, saltLen, rng)
	if err != nil {
		return nil, err
	}

	m := new(big.Int).SetBytes(em)
	s := new(big.Int).Exp(m, priv.D, priv.N)

	return s.FillBytes(make([]byte, priv.Size())), nil
}

// VerifyPSS checks an RSASSA-PSS signature over document.
//
// It returns nil for a valid signature, ErrMalformedSignature when the
// signature cannot be decoded, ErrSignatureInvalid when it decodes but does
// not match, and ErrInvalidKey for an unusable public key. It never panics on
// attacker-controlled signature bytes.
func VerifyPSS(h Hash, pub *PublicKey, document, sig []byte, saltLen int) error {
	if !h.Available() {
		return fmt.Errorf("%w: %s", ErrUnknownHash, h)
	}
	return VerifyDigestPSS(h, pub, h.Sum(document), sig, saltLen)
}

// VerifyDigestPSS checks an RSASSA-PSS signature over a precomputed digest.
func VerifyDigestPSS(h Hash, pub *PublicKey, digest, sig []byte, saltLen int) error {
	if err := pub.validate(); err != nil {
		return err
	}

	emLen := pub.Size()
	if len(sig) != emLen {
		return fmt.Errorf("%w: length %d, want %d", ErrMalformedSignature, len(sig), emLen)
	}

	s := new(big.Int).SetBytes(sig)
	if s.Cmp(pub.N) >= 0 {
		return fmt.Errorf("%w: value not below modulus", ErrMalformedSignature)
	}

	m := new(big.Int).Exp(s, pub.E, pub.N)
	em := m.FillBytes(make([]byte, emLen))

	return VerifyPSSEncoding(h, em, digest, pub.N.BitLen(), saltLen)
}
