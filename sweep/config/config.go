package config

import (
	"errors"
	"fmt"
	"strings"

	internal "github.com/ZanzyTHEbar/dupesweep/sweep"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Scan        ScanConfig        `mapstructure:"scan"`
	Disposition DispositionConfig `mapstructure:"disposition"`
	Log         LogConfig         `mapstructure:"log"`
}

// ScanConfig stores duplicate detection settings.
type ScanConfig struct {
	Root                string   `mapstructure:"root"`
	Workers             int      `mapstructure:"workers"`
	BlockSize           int      `mapstructure:"blockSize"`
	SimilarityThreshold float64  `mapstructure:"similarityThreshold"`
	MinSize             int64    `mapstructure:"minSize"`
	IgnoreFile          string   `mapstructure:"ignoreFile"`
	IgnorePatterns      []string `mapstructure:"ignorePatterns"`
}

// DispositionConfig stores how duplicate extras are handled.
type DispositionConfig struct {
	Mode         string `mapstructure:"mode"`
	TrashDirName string `mapstructure:"trashDirName"`
	Conflict     string `mapstructure:"conflict"`
	DryRun       bool   `mapstructure:"dryRun"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from file or environment variables.
// An empty configPath searches the working directory and the default config path.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(internal.DefaultAppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // e.g. scan.workers becomes DUPESWEEP_SCAN_WORKERS

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshalling plain defaults cannot fail
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.root", "")
	v.SetDefault("scan.workers", internal.DefaultHashWorkers)
	v.SetDefault("scan.blockSize", internal.DefaultHashBlockSize)
	v.SetDefault("scan.similarityThreshold", internal.DefaultSimilarityThreshold)
	v.SetDefault("scan.minSize", 0)
	v.SetDefault("scan.ignoreFile", internal.DefaultIgnoreFileName)
	v.SetDefault("scan.ignorePatterns", []string{})

	v.SetDefault("disposition.mode", "")
	v.SetDefault("disposition.trashDirName", internal.DefaultTrashDirName)
	v.SetDefault("disposition.conflict", "rename")
	v.SetDefault("disposition.dryRun", false)

	v.SetDefault("log.level", internal.DefaultLogLevel)
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1, got %d", c.Scan.Workers)
	}
	if c.Scan.BlockSize < 1 {
		return fmt.Errorf("scan.blockSize must be positive, got %d", c.Scan.BlockSize)
	}
	if c.Scan.SimilarityThreshold <= 0 || c.Scan.SimilarityThreshold > 1 {
		return fmt.Errorf("scan.similarityThreshold must be within (0,1], got %v", c.Scan.SimilarityThreshold)
	}
	if c.Scan.MinSize < 0 {
		return fmt.Errorf("scan.minSize cannot be negative, got %d", c.Scan.MinSize)
	}
	if strings.TrimSpace(c.Disposition.TrashDirName) == "" {
		return fmt.Errorf("disposition.trashDirName cannot be empty")
	}
	if strings.ContainsAny(c.Disposition.TrashDirName, `/\`) {
		return fmt.Errorf("disposition.trashDirName must be a single directory name, got %q", c.Disposition.TrashDirName)
	}
	return nil
}
