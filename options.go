package docsign

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultsandbox/docsign/internal/crypto"
)

const (
	// DefaultKeyBits is the modulus size of generated key pairs.
	DefaultKeyBits = crypto.DefaultKeyBits
	// DefaultPrimalityRounds is the Miller–Rabin round count used for key
	// generation. It is well above the tester's own default of 5.
	DefaultPrimalityRounds = 40
	// DefaultSaltLength is the PSS salt length in bytes.
	DefaultSaltLength = crypto.DefaultSaltSize
	// SaltLengthAuto makes verification accept any salt length.
	SaltLengthAuto = crypto.SaltLengthAuto
)

// signerConfig holds configuration for the signer.
type signerConfig struct {
	keyBits    int
	rounds     int
	hash       Hash
	saltLength int
	verifySalt int
	rand       io.Reader
	workers    int
	logger     zerolog.Logger
	audit      AuditLogger
	clock      func() time.Time
}

func defaultConfig() *signerConfig {
	return &signerConfig{
		keyBits:    DefaultKeyBits,
		rounds:     DefaultPrimalityRounds,
		hash:       crypto.DefaultHash,
		saltLength: DefaultSaltLength,
		verifySalt: DefaultSaltLength,
		workers:    runtime.NumCPU(),
		logger:     zerolog.Nop(),
		clock:      time.Now,
	}
}

// validate checks the combined configuration.
func (c *signerConfig) validate() error {
	var problems []string

	if c.keyBits < crypto.MinKeyBits {
		problems = append(problems, fmt.Sprintf("key size %d is below the minimum of %d bits", c.keyBits, crypto.MinKeyBits))
	}
	if c.rounds < 1 {
		problems = append(problems, fmt.Sprintf("primality rounds must be positive, got %d", c.rounds))
	}
	if !c.hash.Available() {
		problems = append(problems, fmt.Sprintf("unknown hash %s", c.hash))
	}
	if c.saltLength < 0 {
		problems = append(problems, fmt.Sprintf("salt length must not be negative, got %d", c.saltLength))
	}
	if c.verifySalt < SaltLengthAuto {
		problems = append(problems, fmt.Sprintf("invalid verification salt length %d", c.verifySalt))
	}
	if c.workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be positive, got %d", c.workers))
	}
	if c.clock == nil {
		problems = append(problems, "clock is required")
	}

	// A generated modulus may come out one bit short.
	if c.keyBits >= crypto.MinKeyBits && c.saltLength >= 0 {
		if need := minSigningBits(c.saltLength); c.keyBits < need {
			problems = append(problems, fmt.Sprintf("key size %d cannot hold a %d-byte salt, need at least %d bits", c.keyBits, c.saltLength, need))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

// minSigningBits returns the smallest key size whose generated moduli can
// always carry a PSS encoding with a saltLen-byte salt.
func minSigningBits(saltLen int) int {
	return 8*(crypto.DigestSize+saltLen+1) + 3
}

// Option configures the signer.
type Option func(*signerConfig)

// WithKeyBits sets the modulus size of generated key pairs.
// Default: 2048
func WithKeyBits(bits int) Option {
	return func(c *signerConfig) {
		c.keyBits = bits
	}
}

// WithPrimalityRounds sets the Miller–Rabin round count for key generation.
// Default: 40
func WithPrimalityRounds(rounds int) Option {
	return func(c *signerConfig) {
		c.rounds = rounds
	}
}

// WithHash sets the hash used for documents, PSS and MGF1.
// Default: SHA3-256
func WithHash(h Hash) Option {
	return func(c *signerConfig) {
		c.hash = h
	}
}

// WithSaltLength sets the PSS salt length used for signing and the salt
// length enforced during verification.
// Default: 32
func WithSaltLength(n int) Option {
	return func(c *signerConfig) {
		c.saltLength = n
		c.verifySalt = n
	}
}

// WithAnySaltLength makes verification accept signatures with any salt
// length. Signing still uses the configured salt length.
func WithAnySaltLength() Option {
	return func(c *signerConfig) {
		c.verifySalt = SaltLengthAuto
	}
}

// WithRandReader sets the random source for key generation, salts, document
// ids and sealing. It must be safe for concurrent use when the signer is
// shared between goroutines.
// Default: crypto/rand
func WithRandReader(r io.Reader) Option {
	return func(c *signerConfig) {
		c.rand = r
	}
}

// WithWorkers sets the number of goroutines racing on prime candidates.
// Default: runtime.NumCPU()
func WithWorkers(n int) Option {
	return func(c *signerConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger. Key material is never logged.
// Default: zerolog.Nop()
func WithLogger(logger zerolog.Logger) Option {
	return func(c *signerConfig) {
		c.logger = logger
	}
}

// WithAuditLogger sets the sink for audit events.
// Default: events are written to the logger at info level.
func WithAuditLogger(audit AuditLogger) Option {
	return func(c *signerConfig) {
		c.audit = audit
	}
}

// WithClock sets the time source for package timestamps and audit events.
func WithClock(now func() time.Time) Option {
	return func(c *signerConfig) {
		c.clock = now
	}
}
