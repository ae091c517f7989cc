// Package config loads application configuration from config.yaml and
// SUBSIDY_* environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/guayas-agro/subsidy-etl/internal/db"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Stage      StageConfig      `yaml:"stage" mapstructure:"stage"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the PostgreSQL backend.
type StoreConfig struct {
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PipelineConfig configures the operational normalization pipeline.
// Batch sizes default higher for the high-volume benefit types
// (seeds, fertilizer) and lower for plants and mechanization.
type PipelineConfig struct {
	BatchSize map[string]int `yaml:"batch_size" mapstructure:"batch_size"`
	DryRun    bool           `yaml:"dry_run" mapstructure:"dry_run"`
}

// BatchSizeFor returns the configured batch size for a benefit type,
// falling back to the smallest configured default.
func (p PipelineConfig) BatchSizeFor(benefitType string) int {
	if n, ok := p.BatchSize[benefitType]; ok && n > 0 {
		return n
	}
	return 500
}

// ValidationConfig configures row-level validation behavior.
type ValidationConfig struct {
	// StrictNationalID enables the Ecuadorian cedula checksum. When off,
	// only presence and basic shape are enforced.
	StrictNationalID bool `yaml:"strict_national_id" mapstructure:"strict_national_id"`
}

// StageConfig configures the staging workbook loader.
type StageConfig struct {
	SheetIndex int `yaml:"sheet_index" mapstructure:"sheet_index"`
	SkipRows   int `yaml:"skip_rows" mapstructure:"skip_rows"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SUBSIDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.pool.max_conns", 8)
	v.SetDefault("store.pool.min_conns", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.batch_size.seeds", 1000)
	v.SetDefault("pipeline.batch_size.fertilizer", 1000)
	v.SetDefault("pipeline.batch_size.plants", 500)
	v.SetDefault("pipeline.batch_size.mechanization", 500)
	v.SetDefault("pipeline.dry_run", false)
	v.SetDefault("validation.strict_national_id", false)
	v.SetDefault("stage.sheet_index", 0)
	v.SetDefault("stage.skip_rows", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
