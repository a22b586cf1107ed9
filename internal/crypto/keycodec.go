package crypto

import (
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"math/big"
	"strings"
)

// KeyTag names the kind of key held in a text envelope.
type KeyTag string

const (
	// TagPublic marks an envelope holding (N, E).
	TagPublic KeyTag = "PUBLIC"
	// TagPrivate marks an envelope holding (N, D).
	TagPrivate KeyTag = "PRIVATE"
)

const pemTypeSuffix = " KEY"

// MarshalKey encodes the modulus n and exponent x in the text envelope
//
//	-----BEGIN <TAG> KEY-----
//	base64(len(n) || n || len(x) || x)
//	-----END <TAG> KEY-----
//
// where each length is a 4-byte big-endian byte count and each integer is
// big-endian without leading zeros.
func MarshalKey(n, x *big.Int, tag KeyTag) (string, error) {
	if tag != TagPublic && tag != TagPrivate {
		return "", fmt.Errorf("%w: unknown tag %q", ErrMalformedKeyEncoding, tag)
	}
	if !positive(n) || !positive(x) {
		return "", ErrInvalidKey
	}

	nb := n.Bytes()
	xb := x.Bytes()
	body := make([]byte, 0, 2*keyLengthPrefix+len(nb)+len(xb))
	body = appendLengthPrefixed(body, nb)
	body = appendLengthPrefixed(body, xb)

	block := &pem.Block{Type: string(tag) + pemTypeSuffix, Bytes: body}
	return string(pem.EncodeToMemory(block)), nil
}

// UnmarshalKey decodes a text envelope produced by MarshalKey. Text outside
// the envelope other than whitespace, PEM headers, unknown tags, zero values
// and truncated or oversized bodies are rejected with ErrMalformedKeyEncoding.
func UnmarshalKey(text string) (n, x *big.Int, tag KeyTag, err error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "-----BEGIN ") {
		return nil, nil, "", fmt.Errorf("%w: missing BEGIN line", ErrMalformedKeyEncoding)
	}

	block, rest := pem.Decode([]byte(trimmed))
	if block == nil {
		return nil, nil, "", fmt.Errorf("%w: invalid envelope", ErrMalformedKeyEncoding)
	}
	if len(strings.TrimSpace(string(rest))) != 0 {
		return nil, nil, "", fmt.Errorf("%w: trailing data after END line", ErrMalformedKeyEncoding)
	}
	if len(block.Headers) != 0 {
		return nil, nil, "", fmt.Errorf("%w: unexpected headers", ErrMalformedKeyEncoding)
	}

	name, ok := strings.CutSuffix(block.Type, pemTypeSuffix)
	tag = KeyTag(name)
	if !ok || (tag != TagPublic && tag != TagPrivate) {
		return nil, nil, "", fmt.Errorf("%w: unknown tag %q", ErrMalformedKeyEncoding, block.Type)
	}

	body := block.Bytes
	nb, body, err := readLengthPrefixed(body)
	if err != nil {
		return nil, nil, "", err
	}
	xb, body, err := readLengthPrefixed(body)
	if err != nil {
		return nil, nil, "", err
	}
	if len(body) != 0 {
		return nil, nil, "", fmt.Errorf("%w: %d trailing body bytes", ErrMalformedKeyEncoding, len(body))
	}

	n = new(big.Int).SetBytes(nb)
	x = new(big.Int).SetBytes(xb)
	if n.Sign() == 0 || x.Sign() == 0 {
		return nil, nil, "", fmt.Errorf("%w: zero integer", ErrMalformedKeyEncoding)
	}

	return n, x, tag, nil
}

// MarshalPublicKey encodes pub with the PUBLIC tag.
func MarshalPublicKey(pub *PublicKey) (string, error) {
	if err := pub.validate(); err != nil {
		return "", err
	}
	return MarshalKey(pub.N, pub.E, TagPublic)
}

// MarshalPrivateKey encodes priv with the PRIVATE tag.
func MarshalPrivateKey(priv *PrivateKey) (string, error) {
	if err := priv.validate(); err != nil {
		return "", err
	}
	return MarshalKey(priv.N, priv.D, TagPrivate)
}

// ParsePublicKey decodes a PUBLIC envelope.
func ParsePublicKey(text string) (*PublicKey, error) {
	n, e, tag, err := UnmarshalKey(text)
	if err != nil {
		return nil, err
	}
	if tag != TagPublic {
		return nil, fmt.Errorf("%w: expected %s key, got %s", ErrMalformedKeyEncoding, TagPublic, tag)
	}
	return &PublicKey{N: n, E: e}, nil
}

// ParsePrivateKey decodes a PRIVATE envelope.
func ParsePrivateKey(text string) (*PrivateKey, error) {
	n, d, tag, err := UnmarshalKey(text)
	if err != nil {
		return nil, err
	}
	if tag != TagPrivate {
		return nil, fmt.Errorf("%w: expected %s key, got %s", ErrMalformedKeyEncoding, TagPrivate, tag)
	}
	return &PrivateKey{N: n, D: d}, nil
}

func appendLengthPrefixed(dst, b []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

func readLengthPrefixed(b []byte) (value, rest []byte, err error) {
	if len(b) < keyLengthPrefix {
		return nil, nil, fmt.Errorf("%w: truncated length prefix", ErrMalformedKeyEncoding)
	}
	size := binary.BigEndian.Uint32(b)
	b = b[keyLengthPrefix:]
	if size == 0 || uint64(size) > uint64(len(b)) {
		return nil, nil, fmt.Errorf("%w: integer length %d out of range", ErrMalformedKeyEncoding, size)
	}
	return b[:size], b[size:], nil
}
