// Package numtheory provides the number-theoretic building blocks used for
// RSA key generation: a Miller–Rabin probabilistic primality test, iterative
// Euclidean gcd and modular inverse, and a concurrent random prime search.
//
// All functions take an explicit random source. Passing nil selects
// crypto/rand; tests inject deterministic readers for reproducible runs.
//
// None of the arithmetic here is constant-time.
package numtheory
