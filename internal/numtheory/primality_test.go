package numtheory

import (
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand/v2"
	"testing"
)

// errReader fails every read.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func testRand(seed uint64) *mrand.ChaCha8 {
	var s [32]byte
	s[0] = byte(seed)
	s[1] = byte(seed >> 8)
	return mrand.NewChaCha8(s)
}

func TestIsProbablePrime_KnownPrimes(t *testing.T) {
	m521 := new(big.Int).Lsh(one, 521)
	m521.Sub(m521, one)

	p512, err := rand.Prime(rand.Reader, 512)
	if err != nil {
		t.Fatalf("rand.Prime() error = %v", err)
	}

	tests := []struct {
		name string
		n    *big.Int
	}{
		{"3", big.NewInt(3)},
		{"5", big.NewInt(5)},
		{"97", big.NewInt(97)},
		{"7919", big.NewInt(7919)},
		{"65537", big.NewInt(65537)},
		{"2^521-1", m521},
		{"random 512-bit prime", p512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, rounds := range []int{5, 20, 40} {
				ok, err := IsProbablePrime(tt.n, rounds, nil)
				if err != nil {
					t.Fatalf("IsProbablePrime() error = %v", err)
				}
				if !ok {
					t.Errorf("IsProbablePrime(%s, %d) = false, want true", tt.name, rounds)
				}
			}
		})
	}
}

func TestIsProbablePrime_RejectsSmallAndEven(t *testing.T) {
	for _, n := range []int64{-7, -1, 0, 1, 2, 4, 100, 65536} {
		ok, err := IsProbablePrime(big.NewInt(n), 5, errReader{errors.New("must not be read")})
		if err != nil {
			t.Fatalf("IsProbablePrime(%d) error = %v", n, err)
		}
		if ok {
			t.Errorf("IsProbablePrime(%d) = true, want false", n)
		}
	}
}

func TestIsProbablePrime_Composites(t *testing.T) {
	const trials = 1000
	// 4^-5 per trial gives an expected count below one false positive.
	const maxFalsePositives = 10

	composites := []int64{9, 15, 21, 91, 561, 1105, 1729, 7917, 7921}
	rng := testRand(42)

	for _, c := range composites {
		n := big.NewInt(c)
		falsePositives := 0
		for i := 0; i < trials; i++ {
			ok, err := IsProbablePrime(n, 5, rng)
			if err != nil {
				t.Fatalf("IsProbablePrime(%d) error = %v", c, err)
			}
			if ok {
				falsePositives++
			}
		}
		if falsePositives > maxFalsePositives {
			t.Errorf("IsProbablePrime(%d): %d false positives in %d trials", c, falsePositives, trials)
		}
	}
}

func TestIsProbablePrime_LargeComposite(t *testing.T) {
	p, _ := rand.Prime(rand.Reader, 256)
	q, _ := rand.Prime(rand.Reader, 256)
	n := new(big.Int).Mul(p, q)

	ok, err := IsProbablePrime(n, 20, nil)
	if err != nil {
		t.Fatalf("IsProbablePrime() error = %v", err)
	}
	if ok {
		t.Error("product of two primes reported prime")
	}
}

func TestIsProbablePrime_DefaultRounds(t *testing.T) {
	ok, err := IsProbablePrime(big.NewInt(7919), 0, testRand(1))
	if err != nil {
		t.Fatalf("IsProbablePrime() error = %v", err)
	}
	if !ok {
		t.Error("IsProbablePrime(7919, 0) = false, want true")
	}
}

func TestIsProbablePrime_Deterministic(t *testing.T) {
	n := big.NewInt(561)
	for seed := uint64(0); seed < 20; seed++ {
		a, _ := IsProbablePrime(n, 1, testRand(seed))
		b, _ := IsProbablePrime(n, 1, testRand(seed))
		if a != b {
			t.Fatalf("seed %d: results differ for identical random streams", seed)
		}
	}
}

func TestIsProbablePrime_RandError(t *testing.T) {
	want := errors.New("entropy exhausted")
	_, err := IsProbablePrime(big.NewInt(7919), 5, errReader{want})
	if !errors.Is(err, want) {
		t.Errorf("expected wrapped rng error, got %v", err)
	}
}
