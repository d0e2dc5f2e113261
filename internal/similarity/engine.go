// Package similarity computes approximate name similarity between two name
// lists. A TF-IDF cosine filter over character n-grams narrows the right-hand
// candidates for every left name, then a refinement measure (a MinHash
// Jaccard estimate by default) scores the survivors. Pairs are produced in
// bounded chunks of left rows so the cross product is never held in memory.
package similarity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidConfig is returned for configurations the engine cannot run.
var ErrInvalidConfig = errors.New("invalid similarity config")

// CosineConfig controls the coarse candidate filter.
type CosineConfig struct {
	NGram     int     `yaml:"ngram" validate:"gte=1,lte=8"`
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
}

// FuzzyConfig controls the refinement stage.
type FuzzyConfig struct {
	NumPerm int    `yaml:"numPerm" validate:"gte=1"`
	Seed    uint64 `yaml:"seed"`
	Refiner string `yaml:"refiner" validate:"omitempty,oneof=minhash jaro-winkler"`
}

// Config holds engine parameters
type Config struct {
	Cosine    CosineConfig `yaml:"cosine"`
	Fuzzy     FuzzyConfig  `yaml:"fuzzy"`
	ChunkSize int          `yaml:"chunkSize" validate:"gte=1"`
	Workers   int          `yaml:"workers" validate:"gte=1"`
}

// DefaultConfig returns the defaults used by the batch matcher.
func DefaultConfig() Config {
	return Config{
		Cosine: CosineConfig{
			NGram:     3,
			Threshold: 0.2,
		},
		Fuzzy: FuzzyConfig{
			NumPerm: 128,
			Seed:    1,
			Refiner: RefinerMinHash,
		},
		ChunkSize: 1000,
		Workers:   1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Cosine.NGram < 1:
		return fmt.Errorf("%w: ngram must be positive", ErrInvalidConfig)
	case c.Cosine.Threshold < 0 || c.Cosine.Threshold > 1:
		return fmt.Errorf("%w: cosine threshold %v outside [0, 1]", ErrInvalidConfig, c.Cosine.Threshold)
	case c.Fuzzy.NumPerm < 1:
		return fmt.Errorf("%w: numPerm must be positive", ErrInvalidConfig)
	case c.ChunkSize < 1:
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidConfig)
	}
	return nil
}

// Pair is a scored candidate: positions into the left and right lists and a
// similarity in [0, 100].
type Pair struct {
	Left  int
	Right int
	Score float64
}

// Chunk is the set of pairs produced for one block of left rows, ordered by
// left then right position.
type Chunk struct {
	Seq   int
	Start int
	End   int
	Pairs []Pair
}

// Engine scores name lists
type Engine struct {
	cfg Config
}

// NewEngine creates an engine after checking the configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Index is a prepared left/right comparison. Stream can be called any number
// of times and yields the same chunks each time.
type Index struct {
	cfg     Config
	left    []string
	vocab   *vocabulary
	right   *invertedIndex
	refine  refiner
	nRight  int
	workers int
}

// Prepare fits the vocabulary on both lists and indexes the right-hand side.
func (e *Engine) Prepare(left, right []string) (*Index, error) {
	idx := &Index{
		cfg:     e.cfg,
		left:    left,
		nRight:  len(right),
		workers: e.cfg.Workers,
	}
	if len(left) == 0 || len(right) == 0 {
		return idx, nil
	}

	idx.vocab = fitVocabulary(e.cfg.Cosine.NGram, left, right)
	idx.right = buildIndex(idx.vocab, right)

	r, err := newRefiner(e.cfg, right)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	idx.refine = r
	return idx, nil
}

// Chunks returns how many chunks Stream will yield.
func (ix *Index) Chunks() int {
	if ix.nRight == 0 || len(ix.left) == 0 {
		return 0
	}
	return (len(ix.left) + ix.cfg.ChunkSize - 1) / ix.cfg.ChunkSize
}

// Stream yields the scored pairs chunk by chunk. Returning an error from fn
// stops the stream and returns that error.
func (ix *Index) Stream(ctx context.Context, fn func(Chunk) error) error {
	n := ix.Chunks()
	if n == 0 {
		return nil
	}

	accs := make([]*accumulator, ix.workers)
	for i := range accs {
		accs[i] = newAccumulator(ix.nRight)
	}

	for seq := 0; seq < n; seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := seq * ix.cfg.ChunkSize
		end := min(start+ix.cfg.ChunkSize, len(ix.left))

		pairs, err := ix.scoreRows(ctx, start, end, accs)
		if err != nil {
			return err
		}
		if err := fn(Chunk{Seq: seq, Start: start, End: end, Pairs: pairs}); err != nil {
			return err
		}
	}
	return nil
}

// scoreRows scores left rows [start, end). Rows are split into contiguous
// blocks, one per worker, and the blocks are concatenated in order.
func (ix *Index) scoreRows(ctx context.Context, start, end int, accs []*accumulator) ([]Pair, error) {
	rows := end - start
	workers := min(len(accs), rows)
	blockSize := (rows + workers - 1) / workers

	blocks := make([][]Pair, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		from := start + w*blockSize
		to := min(from+blockSize, end)
		if from >= to {
			continue
		}
		w := w
		g.Go(func() error {
			var out []Pair
			for row := from; row < to; row++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = ix.scoreRow(row, accs[w], out)
			}
			blocks[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	pairs := make([]Pair, 0, total)
	for _, b := range blocks {
		pairs = append(pairs, b...)
	}
	return pairs, nil
}

func (ix *Index) scoreRow(row int, acc *accumulator, out []Pair) []Pair {
	name := ix.left[row]
	vec := ix.vocab.vector(name)
	if len(vec.terms) == 0 {
		return out
	}

	var refined func(int32) float64
	acc.cosine(ix.right, vec, func(right int32, cos float64) {
		if cos < ix.cfg.Cosine.Threshold {
			return
		}
		if refined == nil {
			refined = ix.refine.row(name)
		}
		out = append(out, Pair{
			Left:  row,
			Right: int(right),
			Score: combine(cos, refined(right)),
		})
	})
	return out
}

// combine averages the cosine and refined similarities on a 0 to 100 scale.
func combine(cos, refined float64) float64 {
	s := 100 * (cos + refined) / 2
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
