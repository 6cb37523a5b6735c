package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/minhashlsh/internal/config"
	"github.com/ludo-technologies/minhashlsh/lsh"
	"github.com/ludo-technologies/minhashlsh/service"
)

// StatsOptions holds the flags read directly by runStats.
type StatsOptions struct {
	configPath  string
	shingleSize int
}

// NewStatsCmd builds an index over the given corpus patterns and prints
// its band layout plus bucket occupancy, exercising Index.GetCounts.
func NewStatsCmd() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats [flags] <pattern>...",
		Short: "Report band-bucket occupancy for a freshly built index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a TOML/YAML index config file")
	cmd.Flags().Int("num-perm", 128, "number of minhash permutations")
	cmd.Flags().Uint64("seed", 0, "deterministic seed")
	cmd.Flags().Float64("threshold", 0.9, "target Jaccard similarity threshold")
	cmd.Flags().Float64("weight-fp", 0.5, "false-positive weight for band optimization")
	cmd.Flags().Float64("weight-fn", 0.5, "false-negative weight for band optimization")
	cmd.Flags().IntVar(&opts.shingleSize, "shingle-size", service.DefaultShingleSize, "word shingle window size")

	return cmd
}

func runStats(cmd *cobra.Command, patterns []string, opts *StatsOptions) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	paths, err := service.ExpandGlobs(patterns)
	if err != nil {
		return err
	}

	idx, err := lsh.NewWithOptions[string](cfg.NumPerm, &lsh.Weights{FP: cfg.WeightFP, FN: cfg.WeightFN}, &cfg.Threshold)
	if err != nil {
		return err
	}

	if _, err := service.IndexFiles(idx, func(fs service.FileSketch) string { return fs.Path }, paths, cfg, opts.shingleSize, nil); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "keys=%d bands=%d rows=%d threshold=%.3f weights=(fp=%.2f,fn=%.2f)\n",
		idx.Len(), idx.Params().B, idx.Params().R, idx.Threshold(), idx.Weights().FP, idx.Weights().FN)

	for i, band := range idx.GetCounts() {
		nonEmpty := 0
		maxBucket := 0
		for pair := band.Counts.Oldest(); pair != nil; pair = pair.Next() {
			nonEmpty++
			if pair.Value > maxBucket {
				maxBucket = pair.Value
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  band %d: buckets=%d max_bucket_size=%d\n", i, nonEmpty, maxBucket)
	}
	return nil
}
