package main

import (
	"os"

	"github.com/ludo-technologies/minhashlsh/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "minhashlsh",
	Short: "A minhash / banded-LSH similarity search index",
	Long: `minhashlsh builds approximate similarity search indexes over
arbitrary hashable elements using MinHash sketches and banded
Locality-Sensitive Hashing.

Features:
  • Deterministic MinHash signatures with optional seeding
  • Weighted (b, r) band-layout optimization for a target threshold
  • Concurrent-safe, generic-keyed index with bucket inspection`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
