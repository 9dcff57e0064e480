package matcher

import (
	"math/bits"
	"math/rand"

	"github.com/reclink-dev/reclink/domain"
)

// mersennePrimes holds 2^n - 1 for the prime-yielding exponents up to 61,
// in ascending order. The family modulus is the smallest entry covering
// the vocabulary id space.
var mersennePrimes = []uint64{
	3,                   // 2^2 - 1
	7,                   // 2^3 - 1
	31,                  // 2^5 - 1
	127,                 // 2^7 - 1
	8191,                // 2^13 - 1
	131071,              // 2^17 - 1
	524287,              // 2^19 - 1
	2147483647,          // 2^31 - 1
	2305843009213693951, // 2^61 - 1
}

// HashFamily is a family of k independent affine maps
// h_i(x) = (a_i*x + b_i) mod p over a prime p >= vocabulary size, with
// a_i != 0. Each map is a permutation of [0, p): distinct ids never
// collide, which is what makes the MinHash agreement fraction an
// unbiased Jaccard estimator.
type HashFamily struct {
	a     []uint64
	b     []uint64
	prime uint64
}

// NewHashFamily generates k hash functions over a vocabulary id space of
// the given size. The same seed always yields the same family.
func NewHashFamily(k int, vocabularySize int, seed int64) (*HashFamily, error) {
	if k <= 0 {
		return nil, domain.NewInvalidParameterError("hash family size must be > 0")
	}
	if vocabularySize < 0 {
		return nil, domain.NewInvalidParameterError("vocabulary size must be >= 0")
	}

	prime := mersennePrimeAtLeast(uint64(vocabularySize))

	rng := rand.New(rand.NewSource(seed))
	f := &HashFamily{
		a:     make([]uint64, k),
		b:     make([]uint64, k),
		prime: prime,
	}
	for i := 0; i < k; i++ {
		f.a[i] = uint64(rng.Int63n(int64(prime-1))) + 1 // a in [1, p)
		f.b[i] = uint64(rng.Int63n(int64(prime)))       // b in [0, p)
	}
	return f, nil
}

// Size returns the number of functions in the family
func (f *HashFamily) Size() int {
	return len(f.a)
}

// Prime returns the family modulus
func (f *HashFamily) Prime() uint64 {
	return f.prime
}

// Hash applies the i-th function to a vocabulary id
func (f *HashFamily) Hash(i int, x TokenID) uint64 {
	// a*x needs 128-bit intermediate precision for the 2^61-1 modulus.
	// a, x < p < 2^64 keeps the high word below p, so Div64 cannot panic.
	hi, lo := bits.Mul64(f.a[i], uint64(x))
	_, rem := bits.Div64(hi, lo, f.prime)
	return (rem + f.b[i]) % f.prime
}

// mersennePrimeAtLeast returns the smallest listed Mersenne prime >= n,
// falling back to the largest entry for id spaces beyond 2^61-1
func mersennePrimeAtLeast(n uint64) uint64 {
	for _, p := range mersennePrimes {
		if p >= n {
			return p
		}
	}
	return mersennePrimes[len(mersennePrimes)-1]
}
