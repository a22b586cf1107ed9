package numtheory

import "math/big"

// GCD returns the greatest common divisor of a and b using the iterative
// Euclidean algorithm. The result is always non-negative.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x.Mod(x, y)
		x, y = y, x
	}
	return x
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b), for
// non-negative a and b.
//
// The coefficients are those of the textbook recursion
//
//	egcd(0, b) = (b, 0, 1)
//	egcd(a, b) = (g, y1 - (b/a)*x1, x1) where (g, x1, y1) = egcd(b mod a, a)
//
// evaluated without recursion: the quotients are recorded on the way down and
// the coefficients are rebuilt on the way back up.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	ra := new(big.Int).Set(a)
	rb := new(big.Int).Set(b)

	var quotients []*big.Int
	for ra.Sign() != 0 {
		q, r := new(big.Int).QuoRem(rb, ra, new(big.Int))
		quotients = append(quotients, q)
		ra, rb = r, ra
	}

	g = rb
	x = big.NewInt(0)
	y = big.NewInt(1)
	tmp := new(big.Int)
	for i := len(quotients) - 1; i >= 0; i-- {
		// (x, y) <- (y - q*x, x)
		tmp.Mul(quotients[i], x)
		nx := new(big.Int).Sub(y, tmp)
		x, y = nx, x
	}
	return g, x, y
}

// ModInverse returns x in [0, m) such that a*x ≡ 1 (mod m).
//
// a may be negative or larger than m; it is reduced first. ErrNoInverse is
// returned when gcd(a, m) != 1 and ErrInvalidModulus when m <= 0.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	ar := new(big.Int).Mod(a, m)
	g, x, _ := ExtendedGCD(ar, m)
	if g.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}

	// x may be negative; Mod brings it back into [0, m).
	return x.Mod(x, m), nil
}
