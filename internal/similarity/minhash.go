package similarity

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// MinHasher builds MinHash signatures over shingle sets. Permutations are
// derived from a fixed seed, so signatures are reproducible across runs.
type MinHasher struct {
	seeds []uint64
}

// NewMinHasher creates a hasher with numPerm permutations.
func NewMinHasher(numPerm int, seed uint64) *MinHasher {
	seeds := make([]uint64, numPerm)
	state := seed
	for i := range seeds {
		state += 0x9e3779b97f4a7c15
		seeds[i] = mix64(state)
	}
	return &MinHasher{seeds: seeds}
}

// Signature returns the MinHash signature of the distinct shingles. An empty
// set has a nil signature.
func (m *MinHasher) Signature(shingles []string) []uint64 {
	if len(shingles) == 0 {
		return nil
	}

	sig := make([]uint64, len(m.seeds))
	for i := range sig {
		sig[i] = math.MaxUint64
	}

	seen := make(map[uint64]struct{}, len(shingles))
	for _, s := range shingles {
		h := xxhash.Sum64String(s)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		for i, seed := range m.seeds {
			if v := mix64(h ^ seed); v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// Jaccard estimates the Jaccard similarity of the sets behind two
// signatures as the fraction of equal slots. Empty sets score 0.
func Jaccard(a, b []uint64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(a))
}

// mix64 is the splitmix64 finaliser.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
