package similarity

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Refiner names accepted in FuzzyConfig.Refiner.
const (
	RefinerMinHash     = "minhash"
	RefinerJaroWinkler = "jaro-winkler"
)

// refiner scores candidate pairs that passed the cosine filter. row is
// called once per left name and returns a scorer over right positions in
// [0, 1].
type refiner interface {
	row(name string) func(right int32) float64
}

func newRefiner(cfg Config, right []string) (refiner, error) {
	switch cfg.Fuzzy.Refiner {
	case RefinerMinHash, "":
		return newMinHashRefiner(cfg, right), nil
	case RefinerJaroWinkler:
		return newJaroWinklerRefiner(right), nil
	default:
		return nil, fmt.Errorf("unknown refiner %q", cfg.Fuzzy.Refiner)
	}
}

type minHashRefiner struct {
	ngram  int
	hasher *MinHasher
	sigs   [][]uint64
}

func newMinHashRefiner(cfg Config, right []string) *minHashRefiner {
	r := &minHashRefiner{
		ngram:  cfg.Cosine.NGram,
		hasher: NewMinHasher(cfg.Fuzzy.NumPerm, cfg.Fuzzy.Seed),
		sigs:   make([][]uint64, len(right)),
	}
	for i, name := range right {
		r.sigs[i] = r.hasher.Signature(Shingles(name, r.ngram))
	}
	return r
}

func (r *minHashRefiner) row(name string) func(int32) float64 {
	sig := r.hasher.Signature(Shingles(name, r.ngram))
	return func(right int32) float64 {
		return Jaccard(sig, r.sigs[right])
	}
}

type jaroWinklerRefiner struct {
	right []string
}

func newJaroWinklerRefiner(right []string) *jaroWinklerRefiner {
	lowered := make([]string, len(right))
	for i, name := range right {
		lowered[i] = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	}
	return &jaroWinklerRefiner{right: lowered}
}

func (r *jaroWinklerRefiner) row(name string) func(int32) float64 {
	left := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	return func(right int32) float64 {
		return float64(edlib.JaroWinklerSimilarity(left, r.right[right]))
	}
}
