package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/vvka-141/pgcsv/internal/config"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// loadFileConfig loads .env and the config file. An explicit path must exist;
// the default pgcsv.yaml in the working directory is optional and a missing
// one returns a nil config.
func loadFileConfig(explicitPath string) (*config.FileConfig, error) {
	_ = godotenv.Load()

	if explicitPath != "" {
		cfg, err := config.Load(explicitPath)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("config file %s not found: %w", explicitPath, pgcsv.ErrInvalidConfig)
		}
		return cfg, err
	}

	cfg, err := config.LoadFromDir(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.FileName, err)
	}
	return cfg, nil
}

// resolveEffectiveTimeout returns the flag value when set, then the config
// file's. Zero means the run has no deadline.
func resolveEffectiveTimeout(fileCfg *config.FileConfig, flagTimeout time.Duration) (time.Duration, error) {
	if flagTimeout != 0 {
		return flagTimeout, nil
	}
	fromFile, err := fileCfg.TimeoutDuration()
	if err != nil {
		return 0, err
	}
	if fromFile != 0 {
		return fromFile, nil
	}
	return 0, nil
}
