package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ludo-technologies/minhashlsh/internal/config"
	"github.com/ludo-technologies/minhashlsh/lsh"
	"github.com/ludo-technologies/minhashlsh/service"
)

// BuildOptions holds the flags read directly by runBuild; the index
// tuning flags (num-perm, seed, threshold, weight-fp, weight-fn) are
// read by config.Load straight off the cobra FlagSet instead of being
// bound to struct fields here.
type BuildOptions struct {
	configPath  string
	shingleSize int
}

// NewBuildCmd ingests a set of files matched by glob patterns, shingles
// each into word n-grams, builds one minhash sketch per file, and
// inserts every sketch into a freshly constructed lsh.Index, printing a
// summary of what was indexed.
func NewBuildCmd() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build [flags] <pattern>...",
		Short: "Ingest files and build a similarity index",
		Long: `build expands one or more glob patterns into a set of files,
computes a MinHash sketch per file from its word shingles, and inserts
every sketch into a new similarity index.

Examples:
  minhashlsh build "docs/**/*.md"
  minhashlsh build --threshold 0.85 --num-perm 64 "src/**/*.go"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, opts)
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

func runBuild(cmd *cobra.Command, patterns []string, opts *BuildOptions) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			fmt.Fprintf(cmd.ErrOrStderr(), "explicit flag: %s\n", f.Name)
		})
	}

	paths, err := service.ExpandGlobs(patterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no files matched")
		return nil
	}

	idx, err := lsh.NewWithOptions[string](cfg.NumPerm, &lsh.Weights{FP: cfg.WeightFP, FN: cfg.WeightFN}, &cfg.Threshold)
	if err != nil {
		return err
	}

	progress := service.NewBuildProgress(cmd.ErrOrStderr(), len(paths))
	results, err := service.IndexFiles(idx, func(fs service.FileSketch) string { return fs.Path }, paths, cfg, opts.shingleSize, progress)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d/%d files (bands=%d rows=%d)\n",
		len(results), len(paths), idx.Params().B, idx.Params().R)
	return nil
}
