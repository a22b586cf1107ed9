package numtheory

import "errors"

var (
	// ErrNoInverse is returned when a modular inverse does not exist because
	// the operands are not coprime.
	ErrNoInverse = errors.New("modular inverse does not exist")

	// ErrInvalidModulus is returned when the modulus is not positive.
	ErrInvalidModulus = errors.New("modulus must be positive")

	// ErrInvalidBitLength is returned when a prime candidate is requested
	// with fewer than two bits.
	ErrInvalidBitLength = errors.New("invalid bit length")
)
