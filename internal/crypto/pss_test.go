package crypto

import (
	"bytes"
	"errors"
	"testing"
)

// buildEM assembles an encoded message by hand so tests can corrupt DB
// before masking.
func buildEM(h Hash, digest, salt []byte, modBits int, mutate func(db []byte)) []byte {
	emLen := (modBits + 7) / 8
	hLen := h.Size()
	dbLen := emLen - hLen - 1

	mPrimeHash := pssHash(h, digest, salt)
	db := make([]byte, dbLen)
	db[dbLen-len(salt)-1] = 0x01
	copy(db[dbLen-len(salt):], salt)
	if mutate != nil {
		mutate(db)
	}
	mgf1XOR(db, h, mPrimeHash)
	db[0] &= topBitsMask(emLen, modBits-1)

	em := append(db, mPrimeHash...)
	return append(em, pssTrailer)
}

func TestEncodePSS_Layout(t *testing.T) {
	const modBits = 1024
	digest := SHA3_256.Sum([]byte("document"))
	salt := bytes.Repeat([]byte{0x5a}, DefaultSaltSize)

	em, err := EncodePSS(SHA3_256, digest, modBits, DefaultSaltSize, bytes.NewReader(salt))
	if err != nil {
		t.Fatalf("EncodePSS() error = %v", err)
	}

	if len(em) != 128 {
		t.Fatalf("len(EM) = %d, want 128", len(em))
	}
	if em[len(em)-1] != 0xbc {
		t.Errorf("trailer = %#x, want 0xbc", em[len(em)-1])
	}
	if em[0]&0x80 != 0 {
		t.Error("top bit of EM is set")
	}

	h := em[len(em)-33 : len(em)-1]
	if !bytes.Equal(h, pssHash(SHA3_256, digest, salt)) {
		t.Error("H does not equal Hash(0x00*8 || digest || salt)")
	}

	db := append([]byte(nil), em[:len(em)-33]...)
	mgf1XOR(db, SHA3_256, h)
	db[0] &= 0x7f

	sep := len(db) - DefaultSaltSize - 1
	for i := 0; i < sep; i++ {
		if db[i] != 0 {
			t.Fatalf("DB[%d] = %#x, want zero padding", i, db[i])
		}
	}
	if db[sep] != 0x01 {
		t.Errorf("separator = %#x, want 0x01", db[sep])
	}
	if !bytes.Equal(db[sep+1:], salt) {
		t.Error("salt not found after separator")
	}

	if !bytes.Equal(em, buildEM(SHA3_256, digest, salt, modBits, nil)) {
		t.Error("EncodePSS differs from hand-built encoding")
	}
}

func TestEncodePSS_NonDeterministic(t *testing.T) {
	digest := SHA3_256.Sum([]byte("same digest"))

	em1, err := EncodePSS(SHA3_256, digest, 1024, DefaultSaltSize, nil)
	if err != nil {
		t.Fatalf("EncodePSS() error = %v", err)
	}
	em2, err := EncodePSS(SHA3_256, digest, 1024, DefaultSaltSize, nil)
	if err != nil {
		t.Fatalf("EncodePSS() error = %v", err)
	}

	if bytes.Equal(em1, em2) {
		t.Error("two encodings of the same digest are identical")
	}
	for i, em := range [][]byte{em1, em2} {
		if err := VerifyPSSEncoding(SHA3_256, em, digest, 1024, DefaultSaltSize); err != nil {
			t.Errorf("encoding %d does not verify: %v", i, err)
		}
	}
}

func TestEncodePSS_ModulusSizes(t *testing.T) {
	digest := SHA256.Sum([]byte("sizes"))

	for _, modBits := range []int{MinSigningKeyBits, 523, 527, 528, 529, 536, 1023, 1024, 1025, 2047, 2048, 2049} {
		em, err := EncodePSS(SHA256, digest, modBits, DefaultSaltSize, testRand(uint64(modBits)))
		if err != nil {
			t.Fatalf("EncodePSS(modBits=%d) error = %v", modBits, err)
		}
		if len(em) != (modBits+7)/8 {
			t.Errorf("modBits=%d: len(EM) = %d", modBits, len(em))
		}
		// EM as an integer has fewer than modBits bits.
		if lead := bitLen(em); lead >= modBits {
			t.Errorf("modBits=%d: EM has %d bits", modBits, lead)
		}
		if err := VerifyPSSEncoding(SHA256, em, digest, modBits, DefaultSaltSize); err != nil {
			t.Errorf("modBits=%d: VerifyPSSEncoding() error = %v", modBits, err)
		}
	}
}

func bitLen(b []byte) int {
	for i, c := range b {
		if c != 0 {
			n := 0
			for ; c != 0; c >>= 1 {
				n++
			}
			return (len(b)-i-1)*8 + n
		}
	}
	return 0
}

func TestEncodePSS_TooShort(t *testing.T) {
	digest := SHA3_256.Sum([]byte("x"))

	for _, modBits := range []int{0, 1, 256, 512, MinSigningKeyBits - 1} {
		_, err := EncodePSS(SHA3_256, digest, modBits, DefaultSaltSize, nil)
		if !errors.Is(err, ErrEncodingTooShort) {
			t.Errorf("modBits=%d: expected ErrEncodingTooShort, got %v", modBits, err)
		}
	}

	// A shorter salt fits in a smaller modulus.
	if _, err := EncodePSS(SHA3_256, digest, 512, 8, nil); err != nil {
		t.Errorf("512-bit modulus with 8-byte salt: %v", err)
	}
}

func TestEncodePSS_InvalidArguments(t *testing.T) {
	if _, err := EncodePSS(SHA3_256, []byte("short"), 1024, DefaultSaltSize, nil); !errors.Is(err, ErrInvalidDigestSize) {
		t.Errorf("expected ErrInvalidDigestSize, got %v", err)
	}
	digest := SHA3_256.Sum(nil)
	if _, err := EncodePSS(SHA3_256, digest, 1024, -1, nil); !errors.Is(err, ErrInvalidSaltLength) {
		t.Errorf("expected ErrInvalidSaltLength, got %v", err)
	}
	want := errors.New("rng down")
	if _, err := EncodePSS(SHA3_256, digest, 1024, DefaultSaltSize, errReader{want}); !errors.Is(err, want) {
		t.Errorf("expected rng error, got %v", err)
	}
}

func TestVerifyPSSEncoding_Failures(t *testing.T) {
	const modBits = 1024
	digest := SHA3_256.Sum([]byte("document"))
	salt := bytes.Repeat([]byte{0x11}, DefaultSaltSize)
	valid := buildEM(SHA3_256, digest, salt, modBits, nil)

	if err := VerifyPSSEncoding(SHA3_256, valid, digest, modBits, DefaultSaltSize); err != nil {
		t.Fatalf("valid encoding rejected: %v", err)
	}

	tests := []struct {
		name   string
		em     func() []byte
		digest []byte
		want   error
	}{
		{
			name: "bad trailer",
			em: func() []byte {
				em := append([]byte(nil), valid...)
				em[len(em)-1] = 0xbd
				return em
			},
			want: ErrMalformedSignature,
		},
		{
			name: "top bit set",
			em: func() []byte {
				em := append([]byte(nil), valid...)
				em[0] |= 0x80
				return em
			},
			want: ErrMalformedSignature,
		},
		{
			name: "non-zero padding",
			em: func() []byte {
				return buildEM(SHA3_256, digest, salt, modBits, func(db []byte) { db[5] = 0x07 })
			},
			want: ErrMalformedSignature,
		},
		{
			name: "missing separator",
			em: func() []byte {
				return buildEM(SHA3_256, digest, salt, modBits, func(db []byte) { db[len(db)-DefaultSaltSize-1] = 0x00 })
			},
			want: ErrMalformedSignature,
		},
		{
			name: "separator replaced",
			em: func() []byte {
				return buildEM(SHA3_256, digest, salt, modBits, func(db []byte) { db[len(db)-DefaultSaltSize-1] = 0x02 })
			},
			want: ErrMalformedSignature,
		},
		{
			name: "wrong length",
			em: func() []byte {
				return valid[1:]
			},
			want: ErrMalformedSignature,
		},
		{
			name:   "different digest",
			em:     func() []byte { return valid },
			digest: SHA3_256.Sum([]byte("other document")),
			want:   ErrSignatureInvalid,
		},
		{
			name: "flipped hash byte",
			em: func() []byte {
				em := append([]byte(nil), valid...)
				em[len(em)-2] ^= 0x01
				return em
			},
			want: ErrMalformedSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := digest
			if tt.digest != nil {
				d = tt.digest
			}
			err := VerifyPSSEncoding(SHA3_256, tt.em(), d, modBits, DefaultSaltSize)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyPSSEncoding_FlippedHashIsRejected(t *testing.T) {
	// Changing H changes the unmasked DB, so the exact error depends on the
	// resulting bytes; it must never be accepted.
	const modBits = 1024
	digest := SHA3_256.Sum([]byte("document"))
	valid := buildEM(SHA3_256, digest, bytes.Repeat([]byte{0x22}, DefaultSaltSize), modBits, nil)

	for i := len(valid) - 33; i < len(valid)-1; i++ {
		em := append([]byte(nil), valid...)
		em[i] ^= 0x40
		if err := VerifyPSSEncoding(SHA3_256, em, digest, modBits, SaltLengthAuto); err == nil {
			t.Fatalf("flip at byte %d accepted", i)
		}
	}
}

func TestVerifyPSSEncoding_SaltLength(t *testing.T) {
	const modBits = 1024
	digest := SHA256.Sum([]byte("salted"))
	em := buildEM(SHA256, digest, bytes.Repeat([]byte{0x33}, 20), modBits, nil)

	if err := VerifyPSSEncoding(SHA256, em, digest, modBits, SaltLengthAuto); err != nil {
		t.Errorf("auto salt length: %v", err)
	}
	if err := VerifyPSSEncoding(SHA256, em, digest, modBits, 20); err != nil {
		t.Errorf("matching salt length: %v", err)
	}
	if err := VerifyPSSEncoding(SHA256, em, digest, modBits, DefaultSaltSize); !errors.Is(err, ErrMalformedSignature) {
		t.Errorf("mismatched salt length: expected ErrMalformedSignature, got %v", err)
	}

	empty := buildEM(SHA256, digest, nil, modBits, nil)
	if err := VerifyPSSEncoding(SHA256, empty, digest, modBits, 0); err != nil {
		t.Errorf("empty salt: %v", err)
	}
}

func TestVerifyPSSEncoding_DoesNotModifyInput(t *testing.T) {
	digest := SHA3_256.Sum([]byte("immutable"))
	em, err := EncodePSS(SHA3_256, digest, 1024, DefaultSaltSize, nil)
	if err != nil {
		t.Fatalf("EncodePSS() error = %v", err)
	}
	orig := append([]byte(nil), em...)

	_ = VerifyPSSEncoding(SHA3_256, em, digest, 1024, DefaultSaltSize)
	if !bytes.Equal(em, orig) {
		t.Error("VerifyPSSEncoding modified its input")
	}
}
