package docsign

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultsandbox/docsign/internal/crypto"
)

// Verification reasons. The empty reason means the signature is valid.
const (
	ReasonMalformedSignature = "malformed signature"
	ReasonHashMismatch       = "hash mismatch"
	ReasonInvalidSignature   = "invalid signature"
	ReasonMalformedKey       = "malformed key"
	ReasonMalformedPackage   = "malformed package"
)

// VerificationResult is the outcome of a verification. Only Valid may gate
// access decisions; Reason is diagnostic.
type VerificationResult struct {
	Valid   bool
	Reason  string
	Details *VerificationDetails
}

// VerificationDetails describes a successfully verified package.
type VerificationDetails struct {
	DocumentID    string    `json:"documentId"`
	Sender        string    `json:"sender"`
	Receiver      string    `json:"receiver"`
	Timestamp     time.Time `json:"timestamp"`
	Algorithm     string    `json:"algorithm"`
	HashAlgorithm string    `json:"hashAlgorithm"`
}

// Err returns the sentinel error matching r.Reason, or nil when r is valid.
func (r VerificationResult) Err() error {
	if r.Valid {
		return nil
	}
	switch r.Reason {
	case ReasonMalformedSignature:
		return ErrMalformedSignature
	case ReasonHashMismatch:
		return ErrHashMismatch
	case ReasonMalformedKey:
		return ErrMalformedKeyEncoding
	case ReasonMalformedPackage:
		return ErrInvalidPackage
	default:
		return ErrSignatureInvalid
	}
}

func invalid(reason string) VerificationResult {
	return VerificationResult{Reason: reason}
}

// Signer generates key pairs, signs documents and verifies signatures. It
// holds configuration only and is safe for concurrent use when its random
// source is.
type Signer struct {
	cfg    *signerConfig
	logger zerolog.Logger
	audit  AuditLogger
}

// New creates a Signer with the given options.
func New(opts ...Option) (*Signer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	audit := cfg.audit
	if audit == nil {
		audit = NewAuditLogger(cfg.logger)
	}

	return &Signer{
		cfg:    cfg,
		logger: cfg.logger,
		audit:  audit,
	}, nil
}

// Hash returns the configured hash.
func (s *Signer) Hash() Hash {
	return s.cfg.hash
}

// GenerateKeyPair creates a new key pair of the configured size. Prime search
// honours ctx; wrap it with a timeout to bound the search.
func (s *Signer) GenerateKeyPair(ctx context.Context) (*KeyPair, error) {
	start := time.Now()

	kp, stats, err := crypto.GenerateKeyPair(ctx, s.cfg.keyBits, crypto.KeyGenOptions{
		Rounds:  s.cfg.rounds,
		Workers: s.cfg.workers,
		Rand:    s.cfg.rand,
	})
	if err != nil {
		s.logger.Error().Err(err).Int("bits", s.cfg.keyBits).Msg("Failed to generate key pair")
		s.emit(ctx, &AuditEvent{
			EventType: EventKeyGenerate,
			Result:    ResultFailure,
			Reason:    err.Error(),
			Details:   map[string]any{"bits": s.cfg.keyBits},
		})
		return nil, &KeyGenerationError{Bits: s.cfg.keyBits, Err: err}
	}

	s.logger.Debug().
		Int("bits", s.cfg.keyBits).
		Int("attempts", stats.Attempts).
		Int64("candidates", stats.Candidates).
		Dur("duration", time.Since(start)).
		Msg("Generated key pair")
	s.emit(ctx, &AuditEvent{
		EventType: EventKeyGenerate,
		Result:    ResultSuccess,
		Details:   map[string]any{"bits": s.cfg.keyBits},
	})

	return kp, nil
}

// Sign hashes document and signs it with priv. The signature is exactly
// priv.Size() bytes and differs on every call.
func (s *Signer) Sign(document []byte, priv *PrivateKey) ([]byte, error) {
	return s.signDigest(s.cfg.hash.Sum(document), priv)
}

func (s *Signer) signDigest(digest []byte, priv *PrivateKey) ([]byte, error) {
	sig, err := crypto.SignDigestPSS(s.cfg.hash, priv, digest, s.cfg.saltLength, s.cfg.rand)
	if err != nil {
		return nil, &SignError{Stage: signStage(err), Err: err}
	}
	return sig, nil
}

// Verify checks sig over document against pub. Untrusted input never yields
// an error; failures are reported through the result.
func (s *Signer) Verify(document, sig []byte, pub *PublicKey) VerificationResult {
	return s.verifyDigest(s.cfg.hash, s.cfg.hash.Sum(document), sig, pub)
}

func (s *Signer) verifyDigest(h Hash, digest, sig []byte, pub *PublicKey) VerificationResult {
	err := crypto.VerifyDigestPSS(h, pub, digest, sig, s.cfg.verifySalt)
	switch {
	case err == nil:
		return VerificationResult{Valid: true}
	case errors.Is(err, crypto.ErrInvalidKey):
		return invalid(ReasonMalformedKey)
	case errors.Is(err, crypto.ErrMalformedSignature):
		return invalid(ReasonMalformedSignature)
	default:
		return invalid(ReasonInvalidSignature)
	}
}
