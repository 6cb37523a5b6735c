// Package config loads the CLI-facing IndexConfig from defaults, an
// optional TOML or YAML file, and process flags, in that precedence
// order, mirroring the teacher's defaults-then-file-then-flags merge.
package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/minhashlsh/domain"
)

// IndexConfig is the set of parameters needed to construct an
// lsh.Index: the minhash signature length, an optional deterministic
// seed, the similarity threshold, and the false-positive/false-negative
// weighting used to pick the band layout.
type IndexConfig struct {
	NumPerm   int     `mapstructure:"num_perm" yaml:"num_perm" json:"num_perm" toml:"num_perm"`
	Seed      *uint64 `mapstructure:"seed" yaml:"seed,omitempty" json:"seed,omitempty" toml:"seed,omitempty"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold" toml:"threshold"`
	WeightFP  float64 `mapstructure:"weight_fp" yaml:"weight_fp" json:"weight_fp" toml:"weight_fp"`
	WeightFN  float64 `mapstructure:"weight_fn" yaml:"weight_fn" json:"weight_fn" toml:"weight_fn"`
}

// DefaultIndexConfig returns the spec's built-in defaults.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		NumPerm:   domain.DefaultNumPerm,
		Threshold: domain.DefaultThreshold,
		WeightFP:  domain.DefaultWeightFP,
		WeightFN:  domain.DefaultWeightFN,
	}
}

// Load builds an IndexConfig starting from DefaultIndexConfig, then
// overlaying a config file (if path is non-empty; TOML or YAML is
// chosen by file extension), then overlaying any flags the caller has
// explicitly set on flags.
func Load(path string, flags *pflag.FlagSet) (IndexConfig, error) {
	cfg := DefaultIndexConfig()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return IndexConfig{}, err
		}
		cfg = fileCfg
	}

	if flags != nil {
		if err := applyFlags(&cfg, flags); err != nil {
			return IndexConfig{}, err
		}
	}

	return cfg, nil
}

func loadFile(path string) (IndexConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IndexConfig{}, domain.NewConfigError("failed to read config file "+path, err)
	}

	cfg := DefaultIndexConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return IndexConfig{}, domain.NewConfigError("failed to parse TOML config "+path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return IndexConfig{}, domain.NewConfigError("failed to parse YAML config "+path, err)
		}
	default:
		return IndexConfig{}, domain.NewConfigError("unsupported config extension for "+path, nil)
	}
	return cfg, nil
}

// applyFlags overlays only the flags the user explicitly set, via
// viper's BindPFlag, onto cfg — unset flags keep whatever the file or
// default already produced.
func applyFlags(cfg *IndexConfig, flags *pflag.FlagSet) error {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return domain.NewConfigError("failed to bind flags", err)
	}

	if flags.Changed("num-perm") {
		cfg.NumPerm = v.GetInt("num-perm")
	}
	if flags.Changed("seed") {
		seed := v.GetUint64("seed")
		cfg.Seed = &seed
	}
	if flags.Changed("threshold") {
		cfg.Threshold = v.GetFloat64("threshold")
	}
	if flags.Changed("weight-fp") {
		cfg.WeightFP = v.GetFloat64("weight-fp")
	}
	if flags.Changed("weight-fn") {
		cfg.WeightFN = v.GetFloat64("weight-fn")
	}
	return nil
}
