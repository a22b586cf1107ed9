package crypto

import (
	"context"
	mrand "math/rand/v2"
	"sync"
	"testing"
)

func testRand(seed uint64) *mrand.ChaCha8 {
	var s [32]byte
	for i := 0; i < 8; i++ {
		s[i] = byte(seed >> (8 * i))
	}
	return mrand.NewChaCha8(s)
}

var (
	sharedKeyOnce sync.Once
	sharedKey     *KeyPair
	sharedKeyErr  error
)

// testKeyPair returns a 1024-bit key pair shared by the tests in this package.
func testKeyPair(t testing.TB) *KeyPair {
	t.Helper()
	sharedKeyOnce.Do(func() {
		sharedKey, _, sharedKeyErr = GenerateKeyPair(context.Background(), 1024, KeyGenOptions{
			Rounds:  20,
			Workers: 4,
		})
	})
	if sharedKeyErr != nil {
		t.Fatalf("GenerateKeyPair() error = %v", sharedKeyErr)
	}
	return sharedKey
}

// errReader fails every read.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
