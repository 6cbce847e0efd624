package pipeline

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	climbnotes "climb-analyzer"
)

// FileConfig represents the optional TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
}

// AnalysisConfig maps the analysis constants. Nil fields keep defaults.
type AnalysisConfig struct {
	GravityMPS2        *float64 `toml:"gravity-mps2"`
	BaselineThresholdN *float64 `toml:"baseline-threshold-n"`
	PlateauGapMS       *float64 `toml:"plateau-gap-ms"`
	BodyMassKG         *float64 `toml:"body-mass-kg"`
}

// LoadConfig reads a TOML config from the given path. A missing file is
// not an error; an empty path returns the zero config.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays the file values onto an analysis config.
func (fc FileConfig) Apply(cfg climbnotes.Config) climbnotes.Config {
	if fc.Analysis.GravityMPS2 != nil {
		cfg.GravityMPS2 = *fc.Analysis.GravityMPS2
	}
	if fc.Analysis.BaselineThresholdN != nil {
		cfg.BaselineThresholdN = *fc.Analysis.BaselineThresholdN
	}
	if fc.Analysis.PlateauGapMS != nil {
		cfg.PlateauGapMS = *fc.Analysis.PlateauGapMS
	}
	if fc.Analysis.BodyMassKG != nil {
		cfg.BodyMassKG = *fc.Analysis.BodyMassKG
	}
	return cfg
}
