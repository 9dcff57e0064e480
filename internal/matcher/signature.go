package matcher

import "math"

// Signature is a MinHash signature: one minimum hash value per function
// in the family, in family order.
type Signature []uint64

// EmptySetSentinel fills every row of an empty token set's signature.
// Family hash values are always < 2^61, so the sentinel can never occur
// for a non-empty set and two empty records never share a band.
const EmptySetSentinel = uint64(math.MaxUint64)

// ComputeSignature computes the MinHash signature of a token set: the
// i-th entry is the minimum of h_i over the set's ids.
func ComputeSignature(set TokenSet, family *HashFamily) Signature {
	k := family.Size()
	sig := make(Signature, k)
	for i := range sig {
		sig[i] = EmptySetSentinel
	}

	for _, id := range set {
		for i := 0; i < k; i++ {
			if h := family.Hash(i, id); h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// EstimateJaccard returns the fraction of rows on which two signatures
// agree. For signatures computed with the same family this is an
// unbiased estimator of the Jaccard similarity of the underlying sets.
// Sentinel rows (empty sets) never count as agreement.
func EstimateJaccard(sig1, sig2 Signature) float64 {
	n := len(sig1)
	if len(sig2) < n {
		n = len(sig2)
	}
	if n == 0 {
		return 0.0
	}

	match := 0
	for i := 0; i < n; i++ {
		if sig1[i] == sig2[i] && sig1[i] != EmptySetSentinel {
			match++
		}
	}
	return float64(match) / float64(n)
}
