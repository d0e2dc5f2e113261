package match

import (
	"sort"

	"github.com/nestauk/createch/internal/similarity"
)

// Selector reduces a stream of scored pairs to the best pair per left
// index. Among equal scores the first pair seen is kept.
type Selector struct {
	best map[int]similarity.Pair
	seen int
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{best: make(map[int]similarity.Pair)}
}

// Add folds a batch of pairs into the running maxima. It never fails; the
// error return lets it be passed straight to spill.Store.Scan.
func (s *Selector) Add(pairs []similarity.Pair) error {
	for _, p := range pairs {
		s.seen++
		cur, ok := s.best[p.Left]
		if !ok || p.Score > cur.Score {
			s.best[p.Left] = p
		}
	}
	return nil
}

// Len returns the number of distinct left indices seen.
func (s *Selector) Len() int { return len(s.best) }

// Seen returns the number of pairs folded in.
func (s *Selector) Seen() int { return s.seen }

// Results returns the best pair of every left index whose score is at least
// threshold, ordered by left index.
func (s *Selector) Results(threshold float64) []similarity.Pair {
	out := make([]similarity.Pair, 0, len(s.best))
	for _, p := range s.best {
		if p.Score >= threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Left < out[j].Left })
	return out
}
