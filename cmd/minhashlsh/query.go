package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/minhashlsh/internal/config"
	"github.com/ludo-technologies/minhashlsh/lsh"
	"github.com/ludo-technologies/minhashlsh/service"
)

// QueryOptions holds the flags read directly by runQuery.
type QueryOptions struct {
	configPath  string
	query       string
	shingleSize int
}

// NewQueryCmd builds an index over the given corpus patterns, then
// reports which corpus members are LSH candidates for an ad-hoc query
// (a literal string via --query, or else the first file the corpus
// patterns expand to). It exists to exercise Index.Query end-to-end
// without requiring a separate persisted index, since the library
// keeps no on-disk representation.
func NewQueryCmd() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [flags] <corpus-pattern>...",
		Short: "Query a freshly built index for similarity candidates",
		Long: `query builds an index over files matched by the corpus patterns,
then finds candidate matches for either a literal query string
(--query) or, absent that, the first file the corpus patterns expand
to. That file is indexed too, so it is listed among its own candidates.

Examples:
  minhashlsh query --query "the quick brown fox" "docs/**/*.md"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a TOML/YAML index config file")
	cmd.Flags().StringVar(&opts.query, "query", "", "literal text to query with, instead of a file")
	cmd.Flags().Int("num-perm", 128, "number of minhash permutations")
	cmd.Flags().Uint64("seed", 0, "deterministic seed")
	cmd.Flags().Float64("threshold", 0.9, "target Jaccard similarity threshold")
	cmd.Flags().Float64("weight-fp", 0.5, "false-positive weight for band optimization")
	cmd.Flags().Float64("weight-fn", 0.5, "false-negative weight for band optimization")
	cmd.Flags().IntVar(&opts.shingleSize, "shingle-size", service.DefaultShingleSize, "word shingle window size")

	return cmd
}

func runQuery(cmd *cobra.Command, patterns []string, opts *QueryOptions) error {
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

	tokens := service.Shingle(opts.query, opts.shingleSize)
	if opts.query == "" && len(paths) > 0 {
		fileTokens, err := service.ShingleFile(paths[0], opts.shingleSize)
		if err != nil {
			return err
		}
		tokens = fileTokens
	}

	sketch, err := service.BuildSketch(tokens, cfg)
	if err != nil {
		return err
	}

	candidates, err := idx.Query(sketch)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(cmd.OutOrStdout(), "%d candidate(s):\n%s\n", len(keys), strings.Join(keys, "\n"))
	return nil
}
