//go:build integration

package integration

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/vaultsandbox/docsign"
)

// The SHA-256 profile is plain RSASSA-PSS and must agree with crypto/rsa in
// both directions.
func TestIntegration_StdlibInterop(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		t.Fatalf("rsa.GenerateKey() error = %v", err)
	}
	pub := &docsign.PublicKey{N: key.N, E: big.NewInt(int64(key.E))}
	priv := &docsign.PrivateKey{N: key.N, D: key.D}
	opts := &rsa.PSSOptions{SaltLength: docsign.DefaultSaltLength, Hash: crypto.SHA256}

	s := newSigner(t, docsign.WithHash(docsign.SHA256))
	doc := []byte("interop document")
	digest := sha256.Sum256(doc)

	sig, err := s.Sign(doc, priv)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if err := rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig, opts); err != nil {
		t.Errorf("rsa.VerifyPSS() error = %v", err)
	}

	stdSig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], opts)
	if err != nil {
		t.Fatalf("rsa.SignPSS() error = %v", err)
	}
	if r := s.Verify(doc, stdSig, pub); !r.Valid {
		t.Errorf("Verify() = %+v", r)
	}
}
