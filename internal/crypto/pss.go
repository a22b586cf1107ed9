package crypto

import (
	"crypto/subtle"
	"fmt"
	"io"
)

var pssPrefix = make([]byte, 8)

// EncodePSS builds the PSS encoded message for digest under a modulus of
// modBits bits, using a fresh saltLen-byte salt drawn from rng (nil selects
// crypto/rand). Two calls with the same digest return different messages.
//
// The result is exactly ceil(modBits/8) bytes. ErrEncodingTooShort is
// returned when the modulus cannot hold the digest, the salt and the two
// framing bytes.
func EncodePSS(h Hash, digest []byte, modBits, saltLen int, rng io.Reader) ([]byte, error) {
	if !h.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHash, h)
	}
	hLen := h.Size()
	if len(digest) != hLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidDigestSize, len(digest), hLen)
	}
	if saltLen < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSaltLength, saltLen)
	}

	emLen := (modBits + 7) / 8
	emBits := modBits - 1
	if modBits < 2 || (emBits+7)/8 < hLen+saltLen+2 {
		return nil, fmt.Errorf("%w: %d-bit modulus, need %d bytes", ErrEncodingTooShort, modBits, hLen+saltLen+2)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(randSource(rng), salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	mPrimeHash := pssHash(h, digest, salt)

	em := make([]byte, emLen)
	dbLen := emLen - hLen - 1
	db := em[:dbLen]
	db[dbLen-saltLen-1] = 0x01
	copy(db[dbLen-saltLen:], salt)

	mgf1XOR(db, h, mPrimeHash)
	db[0] &= topBitsMask(emLen, emBits)

	copy(em[dbLen:], mPrimeHash)
	em[emLen-1] = pssTrailer

	return em, nil
}

// VerifyPSSEncoding checks that em is a valid PSS encoding of digest for a
// modulus of modBits bits. With saltLen set to SaltLengthAuto the salt is
// whatever follows the first 0x01 byte of DB; otherwise its length must equal
// saltLen.
//
// All structural checks and the final hash comparison are evaluated before
// deciding, without early exits. ErrMalformedSignature reports a bad length,
// trailer, padding or separator; ErrSignatureInvalid reports a hash mismatch.
// em is not modified.
func VerifyPSSEncoding(h Hash, em, digest []byte, modBits, saltLen int) error {
	if !h.Available() {
		return fmt.Errorf("%w: %s", ErrUnknownHash, h)
	}
	hLen := h.Size()
	emLen := (modBits + 7) / 8
	emBits := modBits - 1

	minLen := hLen + 2
	if saltLen > 0 {
		minLen += saltLen
	}
	if modBits < 2 || len(em) != emLen || len(digest) != hLen || (emBits+7)/8 < minLen {
		return ErrMalformedSignature
	}

	em = append([]byte(nil), em...)
	dbLen := emLen - hLen - 1
	db := em[:dbLen]
	mHash := em[dbLen : emLen-1]
	mask := topBitsMask(emLen, emBits)

	good := subtle.ConstantTimeByteEq(em[emLen-1], pssTrailer)
	good &= subtle.ConstantTimeByteEq(db[0]&^mask, 0)

	mgf1XOR(db, h, mHash)
	db[0] &= mask

	// Find the first 0x01; every byte before it must be zero.
	lookingForIndex := 1
	index := 0
	invalid := 0
	for i, b := range db {
		isZero := subtle.ConstantTimeByteEq(b, 0x00)
		isOne := subtle.ConstantTimeByteEq(b, 0x01)
		index = subtle.ConstantTimeSelect(lookingForIndex&isOne, i, index)
		lookingForIndex = subtle.ConstantTimeSelect(isOne, 0, lookingForIndex)
		invalid = subtle.ConstantTimeSelect(lookingForIndex&^isZero, 1, invalid)
	}
	good &= subtle.ConstantTimeEq(int32(lookingForIndex), 0)
	good &= subtle.ConstantTimeEq(int32(invalid), 0)
	if saltLen >= 0 {
		good &= subtle.ConstantTimeEq(int32(dbLen-index-1), int32(saltLen))
	}

	salt := db[index+1:]
	hashOK := subtle.ConstantTimeCompare(mHash, pssHash(h, digest, salt))

	if good != 1 {
		return ErrMalformedSignature
	}
	if hashOK != 1 {
		return ErrSignatureInvalid
	}
	return nil
}

// pssHash returns Hash(0x00 x 8 || digest || salt).
func pssHash(h Hash, digest, salt []byte) []byte {
	d := h.New()
	d.Write(pssPrefix)
	d.Write(digest)
	d.Write(salt)
	return d.Sum(nil)
}

// topBitsMask returns the mask that clears the leftmost 8*emLen - emBits bits
// of the first byte.
func topBitsMask(emLen, emBits int) byte {
	return byte(0xff >> uint(8*emLen-emBits))
}
