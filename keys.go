package docsign

import (
	"context"
	"time"

	"github.com/vaultsandbox/docsign/internal/crypto"
)

// KeyPair is an RSA key pair produced by Signer.GenerateKeyPair.
type KeyPair = crypto.KeyPair

// PublicKey is an RSA public key (N, E).
type PublicKey = crypto.PublicKey

// PrivateKey is an RSA private key (N, D).
type PrivateKey = crypto.PrivateKey

// Hash selects the digest used for documents, PSS and MGF1.
type Hash = crypto.Hash

// Supported hashes. All produce 32-byte digests.
const (
	SHA3_256 = crypto.SHA3_256
	SHA256   = crypto.SHA256
	SHAKE256 = crypto.SHAKE256
)

// ParseHash returns the hash with the given name, such as "SHA3-256".
func ParseHash(name string) (Hash, error) {
	return crypto.ParseHash(name)
}

// MarshalPublicKey encodes pub as a "PUBLIC KEY" text envelope.
func MarshalPublicKey(pub *PublicKey) (string, error) {
	return crypto.MarshalPublicKey(pub)
}

// MarshalPrivateKey encodes priv as a "PRIVATE KEY" text envelope. The result
// is unprotected; use SealPrivateKey for storage.
func MarshalPrivateKey(priv *PrivateKey) (string, error) {
	return crypto.MarshalPrivateKey(priv)
}

// ParsePublicKey decodes a "PUBLIC KEY" text envelope.
func ParsePublicKey(text string) (*PublicKey, error) {
	return crypto.ParsePublicKey(text)
}

// ParsePrivateKey decodes a "PRIVATE KEY" text envelope.
func ParsePrivateKey(text string) (*PrivateKey, error) {
	return crypto.ParsePrivateKey(text)
}

// SealPrivateKey encrypts priv under password for storage at rest.
func (s *Signer) SealPrivateKey(ctx context.Context, priv *PrivateKey, password []byte) (string, error) {
	start := time.Now()
	sealed, err := crypto.SealPrivateKey(priv, password, s.cfg.rand)

	event := &AuditEvent{EventType: EventKeySeal, Result: ResultSuccess}
	if err != nil {
		event.Result = ResultFailure
		event.Reason = err.Error()
	}
	s.emit(ctx, event)

	if err != nil {
		return "", err
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Sealed private key")
	return sealed, nil
}

// OpenPrivateKey decrypts a key sealed with SealPrivateKey. A wrong password
// and a corrupt blob both return ErrDecryptionFailed.
func (s *Signer) OpenPrivateKey(ctx context.Context, sealed string, password []byte) (*PrivateKey, error) {
	priv, err := crypto.OpenPrivateKey(sealed, password)

	event := &AuditEvent{EventType: EventKeyOpen, Result: ResultSuccess}
	if err != nil {
		event.Result = ResultFailure
		event.Reason = err.Error()
	}
	s.emit(ctx, event)

	if err != nil {
		return nil, err
	}
	return priv, nil
}
