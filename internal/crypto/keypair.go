package crypto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/vaultsandbox/docsign/internal/numtheory"
)

// PublicKey is an RSA public key (N, E).
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// Size returns the signature and encoded message length in bytes.
func (k *PublicKey) Size() int {
	return (k.N.BitLen() + 7) / 8
}

// Equal reports whether k and x hold the same values.
func (k *PublicKey) Equal(x *PublicKey) bool {
	if k == nil || x == nil {
		return k == x
	}
	return bigEqual(k.N, x.N) && bigEqual(k.E, x.E)
}

func (k *PublicKey) validate() error {
	if k == nil || !positive(k.N) || !positive(k.E) {
		return ErrInvalidKey
	}
	return nil
}

// PrivateKey is an RSA private key (N, D).
type PrivateKey struct {
	N *big.Int
	D *big.Int
}

// Size returns the signature and encoded message length in bytes.
func (k *PrivateKey) Size() int {
	return (k.N.BitLen() + 7) / 8
}

// Equal reports whether k and x hold the same values.
func (k *PrivateKey) Equal(x *PrivateKey) bool {
	if k == nil || x == nil {
		return k == x
	}
	return bigEqual(k.N, x.N) && bigEqual(k.D, x.D)
}

func (k *PrivateKey) validate() error {
	if k == nil || !positive(k.N) || !positive(k.D) {
		return ErrInvalidKey
	}
	return nil
}

// KeyPair is a freshly generated RSA key pair. N = P*Q for two distinct
// primes of Bits/2 bits, E is coprime to (P-1)(Q-1) and D is the inverse of
// E modulo (P-1)(Q-1).
//
// The primes are kept unexported; the engine never retains a KeyPair after
// returning it.
type KeyPair struct {
	N    *big.Int
	E    *big.Int
	D    *big.Int
	Bits int

	p, q *big.Int
}

// PublicKey returns the public half (N, E).
func (kp *KeyPair) PublicKey() *PublicKey {
	return &PublicKey{N: new(big.Int).Set(kp.N), E: new(big.Int).Set(kp.E)}
}

// PrivateKey returns the private half (N, D).
func (kp *KeyPair) PrivateKey() *PrivateKey {
	return &PrivateKey{N: new(big.Int).Set(kp.N), D: new(big.Int).Set(kp.D)}
}

// KeyGenOptions tunes key generation.
type KeyGenOptions struct {
	// Rounds is the Miller–Rabin round count per candidate. Zero selects
	// numtheory.DefaultRounds; key generation should use more.
	Rounds int
	// Workers is the number of goroutines racing on prime candidates.
	Workers int
	// Rand is the random source; nil selects crypto/rand.
	Rand io.Reader
}

// KeyGenStats reports how much work a key generation took.
type KeyGenStats struct {
	// Attempts counts prime pairs drawn; a pair is redrawn when E is not
	// coprime to (P-1)(Q-1).
	Attempts int
	// Candidates counts prime candidates drawn across all attempts.
	Candidates int64
}

// GenerateKeyPair creates an RSA key pair with a bits-bit modulus (the
// product may come out one bit shorter). Prime pairs for which E is not
// invertible are discarded and redrawn.
//
// The search honours ctx; callers wanting a deadline should set one on ctx.
func GenerateKeyPair(ctx context.Context, bits int, opts KeyGenOptions) (*KeyPair, *KeyGenStats, error) {
	if bits < MinKeyBits {
		return nil, nil, fmt.Errorf("%w: %d bits, minimum %d", ErrInvalidKeySize, bits, MinKeyBits)
	}

	e := big.NewInt(PublicExponent)
	pBits := bits / 2
	qBits := bits - pBits
	stats := &KeyGenStats{}

	for {
		stats.Attempts++

		p, q, err := drawPrimes(ctx, pBits, qBits, opts, stats)
		if err != nil {
			return nil, stats, err
		}

		pm1 := new(big.Int).Sub(p, bigOne)
		qm1 := new(big.Int).Sub(q, bigOne)
		phi := new(big.Int).Mul(pm1, qm1)

		if e.Cmp(phi) >= 0 || numtheory.GCD(e, phi).Cmp(bigOne) != 0 {
			continue
		}

		d, err := numtheory.ModInverse(e, phi)
		if errors.Is(err, numtheory.ErrNoInverse) {
			continue
		}
		if err != nil {
			return nil, stats, err
		}

		return &KeyPair{
			N:    new(big.Int).Mul(p, q),
			E:    e,
			D:    d,
			Bits: bits,
			p:    p,
			q:    q,
		}, stats, nil
	}
}

func drawPrimes(ctx context.Context, pBits, qBits int, opts KeyGenOptions, stats *KeyGenStats) (*big.Int, *big.Int, error) {
	cfg := numtheory.SearchConfig{
		Bits:    pBits,
		Rounds:  opts.Rounds,
		Workers: opts.Workers,
		Rand:    randSource(opts.Rand),
	}

	if pBits == qBits {
		res, err := numtheory.FindPrimes(ctx, 2, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("prime search: %w", err)
		}
		stats.Candidates += res.Candidates
		return res.Primes[0], res.Primes[1], nil
	}

	// Different lengths guarantee P != Q.
	pRes, err := numtheory.FindPrimes(ctx, 1, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("prime search: %w", err)
	}
	stats.Candidates += pRes.Candidates

	cfg.Bits = qBits
	qRes, err := numtheory.FindPrimes(ctx, 1, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("prime search: %w", err)
	}
	stats.Candidates += qRes.Candidates

	return pRes.Primes[0], qRes.Primes[0], nil
}

var bigOne = big.NewInt(1)

func positive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
