package numtheory

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
	"sync/atomic"
)

// Candidate draws a random odd integer of exactly bits bits: the most
// significant bit and the least significant bit are both set.
func Candidate(rng io.Reader, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitLength, bits)
	}
	if rng == nil {
		rng = rand.Reader
	}

	b := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, fmt.Errorf("draw candidate: %w", err)
	}

	excess := uint(len(b)*8 - bits)
	b[0] &= byte(0xff >> excess)
	b[0] |= byte(0x80 >> excess)
	b[len(b)-1] |= 1

	return new(big.Int).SetBytes(b), nil
}

// SearchConfig configures a concurrent prime search.
type SearchConfig struct {
	// Bits is the exact bit length of every prime returned.
	Bits int
	// Rounds is the Miller–Rabin round count applied to each candidate.
	Rounds int
	// Workers is the number of goroutines testing candidates. Values below
	// one are treated as one.
	Workers int
	// Rand is the random source for candidates and witnesses. nil selects
	// crypto/rand. It does not need to be safe for concurrent use.
	Rand io.Reader
}

// SearchResult is the outcome of FindPrimes.
type SearchResult struct {
	// Primes holds distinct probable primes in the order they were found.
	Primes []*big.Int
	// Candidates is the number of candidates drawn across all workers,
	// including those still in flight when the search was stopped.
	Candidates int64
}

// FindPrimes searches for count distinct probable primes of cfg.Bits bits.
//
// Workers race on independent candidates; the first acceptances win and the
// remaining workers are cancelled once count primes have been collected. Each
// candidate is drawn with a single locked read, so stopping a worker never
// leaves a partially consumed draw behind. The search stops early with the
// context's error if ctx is done, or with the first random-source error.
func FindPrimes(ctx context.Context, count int, cfg SearchConfig) (*SearchResult, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	src := cfg.Rand
	if src == nil {
		src = rand.Reader
	}
	rng := &lockedReader{r: src}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan *big.Int)
	errc := make(chan error, workers)

	var (
		wg         sync.WaitGroup
		candidates atomic.Int64
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				c, err := Candidate(rng, cfg.Bits)
				if err != nil {
					errc <- err
					return
				}
				candidates.Add(1)

				ok, err := IsProbablePrime(c, cfg.Rounds, rng)
				if err != nil {
					errc <- err
					return
				}
				if !ok {
					continue
				}

				select {
				case found <- c:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	stop := func() {
		cancel()
		wg.Wait()
	}

	primes := make([]*big.Int, 0, count)
	for len(primes) < count {
		select {
		case p := <-found:
			if !containsInt(primes, p) {
				primes = append(primes, p)
			}
		case err := <-errc:
			stop()
			return nil, err
		case <-ctx.Done():
			err := ctx.Err()
			stop()
			return nil, err
		}
	}
	stop()

	return &SearchResult{Primes: primes, Candidates: candidates.Load()}, nil
}

func containsInt(xs []*big.Int, v *big.Int) bool {
	for _, x := range xs {
		if x.Cmp(v) == 0 {
			return true
		}
	}
	return false
}

// lockedReader serializes reads so that a reader that is not safe for
// concurrent use can be shared by search workers. Every Read fills p
// completely or fails.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return io.ReadFull(l.r, p)
}
