package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/cloudflare/circl/xof"
	"golang.org/x/crypto/sha3"
)

// Hash identifies the digest primitive used for document hashing, for the
// PSS M' hash and inside MGF1.
type Hash uint8

const (
	// SHA3_256 is SHA3-256 (FIPS 202). It is the default.
	SHA3_256 Hash = iota + 1
	// SHA256 is SHA-256 (FIPS 180-4).
	SHA256
	// SHAKE256 is SHAKE256 (FIPS 202) with 256 bits of output.
	SHAKE256
)

// DefaultHash is the hash used when none is configured.
const DefaultHash = SHA3_256

var hashNames = map[Hash]string{
	SHA3_256: "SHA3-256",
	SHA256:   "SHA-256",
	SHAKE256: "SHAKE256-256",
}

// String returns the canonical name carried in signature packages.
func (h Hash) String() string {
	if name, ok := hashNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hash(%d)", uint8(h))
}

// Available reports whether h is a supported hash.
func (h Hash) Available() bool {
	_, ok := hashNames[h]
	return ok
}

// Size returns the digest size in bytes.
func (h Hash) Size() int {
	return DigestSize
}

// New returns a new hash.Hash computing h. It panics if h is not available,
// like crypto.Hash.New.
func (h Hash) New() hash.Hash {
	switch h {
	case SHA3_256:
		return sha3.New256()
	case SHA256:
		return sha256.New()
	case SHAKE256:
		return &shakeHash{x: xof.SHAKE256.New()}
	}
	panic("crypto: requested hash function " + h.String() + " is unavailable")
}

// Sum returns the digest of data.
func (h Hash) Sum(data []byte) []byte {
	d := h.New()
	d.Write(data)
	return d.Sum(nil)
}

// ParseHash returns the Hash with the given canonical name.
func ParseHash(name string) (Hash, error) {
	for h, n := range hashNames {
		if n == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHash, name)
}

// shakeHash adapts a SHAKE256 XOF to hash.Hash with a fixed 32-byte output.
type shakeHash struct {
	x xof.XOF
}

func (s *shakeHash) Write(p []byte) (int, error) { return s.x.Write(p) }

func (s *shakeHash) Sum(b []byte) []byte {
	out := make([]byte, DigestSize)
	// Reading from a clone leaves the running state writable.
	if _, err := io.ReadFull(s.x.Clone(), out); err != nil {
		panic("crypto: shake256 read failed: " + err.Error())
	}
	return append(b, out...)
}

func (s *shakeHash) Reset() { s.x.Reset() }

func (s *shakeHash) Size() int { return DigestSize }

// BlockSize returns the SHAKE256 rate in bytes.
func (s *shakeHash) BlockSize() int { return 136 }
