package numtheory

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// DefaultRounds is the number of Miller–Rabin rounds used when the caller
// passes a non-positive round count. The false-positive bound is 4^-rounds;
// key generation should ask for considerably more.
const DefaultRounds = 5

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsProbablePrime runs the Miller–Rabin test on n with the given number of
// independent rounds, drawing witnesses uniformly from [2, n-2] using rng.
//
// Values below 2 and all even values are rejected, 2 included. A false result
// is definitive; a true result is wrong with probability at most 4^-rounds.
// An error is returned only when rng fails.
func IsProbablePrime(n *big.Int, rounds int, rng io.Reader) (bool, error) {
	if n.Cmp(two) < 0 || n.Bit(0) == 0 {
		return false, nil
	}
	if n.Cmp(three) == 0 {
		return true, nil
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if rng == nil {
		rng = rand.Reader
	}

	nm1 := new(big.Int).Sub(n, one)
	r := nm1.TrailingZeroBits()
	d := new(big.Int).Rsh(nm1, r)

	// a = 2 + uniform[0, n-3)
	bound := new(big.Int).Sub(n, three)
	x := new(big.Int)

	for i := 0; i < rounds; i++ {
		a, err := rand.Int(rng, bound)
		if err != nil {
			return false, fmt.Errorf("draw witness: %w", err)
		}
		a.Add(a, two)

		x.Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
			continue
		}

		witnessed := true
		for j := uint(1); j < r; j++ {
			x.Mul(x, x).Mod(x, n)
			if x.Cmp(nm1) == 0 {
				witnessed = false
				break
			}
		}
		if witnessed {
			return false, nil
		}
	}

	return true, nil
}
