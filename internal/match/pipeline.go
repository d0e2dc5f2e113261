// Package match turns two lists of organisation names into a table of best
// matches: names are optionally cleaned, scored in chunks that are spilled to
// disk, reduced to the best pair per left record and joined back to their
// records.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/nestauk/createch/internal/logging"
	"github.com/nestauk/createch/internal/metrics"
	"github.com/nestauk/createch/internal/normalize"
	"github.com/nestauk/createch/internal/records"
	"github.com/nestauk/createch/internal/similarity"
	"github.com/nestauk/createch/internal/spill"
)

// Config holds the matching parameters of a run.
type Config struct {
	TestMode      bool    `yaml:"testMode"`
	TestModeRows  int     `yaml:"testModeRows" validate:"gte=0"`
	CleanNames    bool    `yaml:"cleanNames"`
	Threshold     float64 `yaml:"threshold" validate:"gte=0,lte=100"`
	ScanChunkSize int     `yaml:"scanChunkSize" validate:"gte=1"`
	TmpDir        string  `yaml:"tmpDir"`
	KeepTmp       bool    `yaml:"keepTmp"`

	Similarity similarity.Config `yaml:",inline"`
}

// DefaultConfig returns the standard run parameters.
func DefaultConfig() Config {
	return Config{
		TestModeRows:  10000,
		Threshold:     33,
		ScanChunkSize: spill.DefaultScanBatch,
		TmpDir:        ".",
		Similarity:    similarity.DefaultConfig(),
	}
}

// Summary describes a finished pipeline run.
type Summary struct {
	RunID        string
	LeftRecords  int
	RightRecords int
	Chunks       int
	PairsScored  int
	Matched      int
	Unmatched    int
	AverageScore float64

	NormalizeTime time.Duration
	ScoreTime     time.Duration
	SelectTime    time.Duration
	AssembleTime  time.Duration
	TotalTime     time.Duration
}

// Pipeline runs the normalize, score, select and assemble stages in order.
// There is no retry or checkpointing; any stage error aborts the run.
type Pipeline struct {
	cfg     Config
	engine  *similarity.Engine
	clock   clockwork.Clock
	metrics *metrics.Metrics
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for stage timings.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithMetrics records run counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a pipeline for cfg.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	engine, err := similarity.NewEngine(cfg.Similarity)
	if err != nil {
		return nil, fmt.Errorf("failed to create similarity engine: %w", err)
	}
	p := &Pipeline{
		cfg:    cfg,
		engine: engine,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run matches left against right. Scored pairs are spilled to a store inside
// ws and removed with it.
func (p *Pipeline) Run(ctx context.Context, ws *spill.Workspace, left, right []records.NameRecord) ([]Row, *Summary, error) {
	start := p.clock.Now()
	summary := &Summary{
		RunID:        ws.RunID,
		LeftRecords:  len(left),
		RightRecords: len(right),
	}
	if p.metrics != nil {
		p.metrics.LeftRecords.Set(float64(len(left)))
		p.metrics.RightRecords.Set(float64(len(right)))
	}

	done := logging.Timing(p.clock, "normalize")
	if p.cfg.CleanNames {
		left = records.WithNames(left, normalize.Names(records.Names(left)))
		right = records.WithNames(right, normalize.Names(records.Names(right)))
	}
	summary.NormalizeTime = p.observe("normalize", done())

	store, err := spill.OpenStore(ws.Path("pairs.db"))
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("error closing spill store")
		}
	}()

	done = logging.Timing(p.clock, "score")
	if err := p.score(ctx, store, left, right); err != nil {
		return nil, nil, err
	}
	summary.Chunks = store.Chunks()
	summary.ScoreTime = p.observe("score", done())

	done = logging.Timing(p.clock, "select")
	sel := NewSelector()
	if err := store.Scan(p.cfg.ScanChunkSize, sel.Add); err != nil {
		return nil, nil, fmt.Errorf("failed to scan spilled pairs: %w", err)
	}
	if sel.Seen() != store.Pairs() {
		return nil, nil, fmt.Errorf("%w: scanned %d pairs, spilled %d", spill.ErrCorruptChunk, sel.Seen(), store.Pairs())
	}
	summary.PairsScored = sel.Seen()
	selected := sel.Results(p.cfg.Threshold)
	summary.SelectTime = p.observe("select", done())

	done = logging.Timing(p.clock, "assemble")
	rows, err := Assemble(left, right, selected)
	if err != nil {
		return nil, nil, err
	}
	summary.AssembleTime = p.observe("assemble", done())

	summary.Matched = len(rows)
	summary.Unmatched = len(left) - len(rows)
	if len(rows) > 0 {
		var total float64
		for _, r := range rows {
			total += r.Score
		}
		summary.AverageScore = total / float64(len(rows))
	}
	summary.TotalTime = p.clock.Since(start)

	if p.metrics != nil {
		p.metrics.MatchesWritten.Add(float64(len(rows)))
	}

	log.Info().
		Str("run", summary.RunID).
		Int("left", summary.LeftRecords).
		Int("right", summary.RightRecords).
		Int("pairs", summary.PairsScored).
		Int("matched", summary.Matched).
		Dur("took", summary.TotalTime).
		Msg("matching complete")

	return rows, summary, nil
}

func (p *Pipeline) score(ctx context.Context, store *spill.Store, left, right []records.NameRecord) error {
	idx, err := p.engine.Prepare(records.Names(left), records.Names(right))
	if err != nil {
		return fmt.Errorf("failed to prepare similarity index: %w", err)
	}

	total := idx.Chunks()
	return idx.Stream(ctx, func(c similarity.Chunk) error {
		if err := store.Append(c); err != nil {
			return err
		}
		if p.metrics != nil {
			p.metrics.ChunksSpilled.Inc()
			p.metrics.PairsScored.Add(float64(len(c.Pairs)))
		}
		log.Debug().
			Int("chunk", c.Seq+1).
			Int("of", total).
			Int("pairs", len(c.Pairs)).
			Msg("spilled chunk")
		return nil
	})
}

func (p *Pipeline) observe(stage string, d time.Duration) time.Duration {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, d)
	}
	return d
}
