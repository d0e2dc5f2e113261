package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/config"
	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/metrics"
)

// createMatchCmd creates the batch matching command
func createMatchCmd(a *app) *cobra.Command {
	var (
		namesY      string
		namesX      string
		output      string
		metricsFile string
		flags       matchFlags
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match the y names against the x names",
		Long: `Scores every y name against the x names, keeps the best x match per y name
and writes the pairs scoring at least the threshold to a CSV table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			full := a.cfg
			flags.apply(cmd, &full.Match)
			if err := config.Validate(full); err != nil {
				return err
			}
			cfg := full.Match

			m := metrics.New()
			job := &match.Job{
				Config:     cfg,
				Fs:         a.fs,
				NamesY:     namesY,
				NamesX:     namesX,
				OutputPath: output,
				Options:    []match.Option{match.WithMetrics(m)},
			}
			summary, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}

			if metricsFile != "" {
				if err := m.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}

			printSummary(summary, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&namesY, "names-y", "outputs/.cache/gtr_names.json", "JSON {id: name} file of names to match")
	cmd.Flags().StringVar(&namesX, "names-x", "outputs/.cache/company_names.json", "JSON {id: name} file of names to match against")
	cmd.Flags().StringVar(&output, "output", "outputs/matches.csv", "Output CSV path")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this node exporter textfile")
	flags.register(cmd)

	return cmd
}

// matchFlags mirrors match.Config; only flags given on the command line
// override the loaded configuration.
type matchFlags struct {
	testMode           bool
	cleanNames         bool
	threshold          float64
	candidateThreshold float64
	chunkSize          int
	scanChunkSize      int
	workers            int
	tmpDir             string
	keepTmp            bool
	ngram              int
	numPerm            int
	seed               uint64
	refiner            string
}

func (f *matchFlags) register(cmd *cobra.Command) {
	d := match.DefaultConfig()
	fl := cmd.Flags()
	fl.BoolVar(&f.testMode, "test-mode", d.TestMode, "Only use the first test-mode rows of each input")
	fl.BoolVar(&f.cleanNames, "clean-names", d.CleanNames, "Normalise names before matching")
	fl.Float64Var(&f.threshold, "threshold", d.Threshold, "Minimum score (0-100) for a match to be kept")
	fl.Float64Var(&f.candidateThreshold, "candidate-threshold", d.Similarity.Cosine.Threshold, "Minimum cosine similarity (0-1) for a pair to be scored")
	fl.IntVar(&f.chunkSize, "chunk-size", d.Similarity.ChunkSize, "Y names scored per spilled chunk")
	fl.IntVar(&f.scanChunkSize, "scan-chunk-size", d.ScanChunkSize, "Pairs read per batch when selecting top matches")
	fl.IntVar(&f.workers, "workers", d.Similarity.Workers, "Goroutines scoring names within a chunk")
	fl.StringVar(&f.tmpDir, "tmp-dir", d.TmpDir, "Directory for the temporary run workspace")
	fl.BoolVar(&f.keepTmp, "keep-tmp", d.KeepTmp, "Keep the temporary workspace after the run")
	fl.IntVar(&f.ngram, "ngram", d.Similarity.Cosine.NGram, "Character n-gram size")
	fl.IntVar(&f.numPerm, "num-perm", d.Similarity.Fuzzy.NumPerm, "MinHash permutations")
	fl.Uint64Var(&f.seed, "seed", d.Similarity.Fuzzy.Seed, "MinHash seed")
	fl.StringVar(&f.refiner, "refiner", d.Similarity.Fuzzy.Refiner, "Refinement measure (minhash, jaro-winkler)")
}

func (f *matchFlags) apply(cmd *cobra.Command, cfg *match.Config) {
	changed := cmd.Flags().Changed
	if changed("test-mode") {
		cfg.TestMode = f.testMode
	}
	if changed("clean-names") {
		cfg.CleanNames = f.cleanNames
	}
	if changed("threshold") {
		cfg.Threshold = f.threshold
	}
	if changed("candidate-threshold") {
		cfg.Similarity.Cosine.Threshold = f.candidateThreshold
	}
	if changed("chunk-size") {
		cfg.Similarity.ChunkSize = f.chunkSize
	}
	if changed("scan-chunk-size") {
		cfg.ScanChunkSize = f.scanChunkSize
	}
	if changed("workers") {
		cfg.Similarity.Workers = f.workers
	}
	if changed("tmp-dir") {
		cfg.TmpDir = f.tmpDir
	}
	if changed("keep-tmp") {
		cfg.KeepTmp = f.keepTmp
	}
	if changed("ngram") {
		cfg.Similarity.Cosine.NGram = f.ngram
	}
	if changed("num-perm") {
		cfg.Similarity.Fuzzy.NumPerm = f.numPerm
	}
	if changed("seed") {
		cfg.Similarity.Fuzzy.Seed = f.seed
	}
	if changed("refiner") {
		cfg.Similarity.Fuzzy.Refiner = f.refiner
	}
}

func printSummary(s *match.Summary, output string) {
	fmt.Printf("\n=== Matching Complete ===\n")
	fmt.Printf("Run ID: %s\n", s.RunID)
	fmt.Printf("Y names: %d\n", s.LeftRecords)
	fmt.Printf("X names: %d\n", s.RightRecords)
	fmt.Printf("Pairs scored: %d (%d chunks)\n", s.PairsScored, s.Chunks)
	fmt.Printf("Matched: %d\n", s.Matched)
	fmt.Printf("Unmatched: %d\n", s.Unmatched)
	if s.Matched > 0 {
		fmt.Printf("Average score: %.2f\n", s.AverageScore)
	}
	fmt.Printf("Processing time: %v\n", s.TotalTime)
	fmt.Printf("Output: %s\n", output)
}
