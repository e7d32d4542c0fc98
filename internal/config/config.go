// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Model    ModelConfig    `yaml:"model" mapstructure:"model"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the flat-file inputs and outputs.
type DataConfig struct {
	RawDir    string `yaml:"raw_dir" mapstructure:"raw_dir"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// GenerateConfig controls synthetic data generation.
type GenerateConfig struct {
	Seed         int64  `yaml:"seed" mapstructure:"seed"`
	Customers    int    `yaml:"customers" mapstructure:"customers"`
	Transactions int    `yaml:"transactions" mapstructure:"transactions"`
	Alerts       int    `yaml:"alerts" mapstructure:"alerts"`
	ScenarioPath string `yaml:"scenario_path" mapstructure:"scenario_path"`
}

// ModelConfig holds logistic regression hyperparameters.
type ModelConfig struct {
	MaxIter int     `yaml:"max_iter" mapstructure:"max_iter"`
	Tol     float64 `yaml:"tol" mapstructure:"tol"`
	L2      float64 `yaml:"l2" mapstructure:"l2"`
}

// ReportConfig controls score output rendering.
type ReportConfig struct {
	HistogramBins int `yaml:"histogram_bins" mapstructure:"histogram_bins"`
	TopN          int `yaml:"top_n" mapstructure:"top_n"`
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
	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.output_dir", "data/outputs")
	v.SetDefault("generate.seed", 42)
	v.SetDefault("generate.customers", 500)
	v.SetDefault("generate.transactions", 5000)
	v.SetDefault("generate.alerts", 1000)
	v.SetDefault("model.max_iter", 1000)
	v.SetDefault("model.tol", 1e-8)
	v.SetDefault("model.l2", 1.0)
	v.SetDefault("report.histogram_bins", 20)
	v.SetDefault("report.top_n", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks that configuration values the pipeline depends on are sane.
func (c *Config) Validate() error {
	if c.Generate.Customers <= 0 {
		return eris.Errorf("config: generate.customers must be positive (got %d)", c.Generate.Customers)
	}
	if c.Generate.Alerts <= 0 {
		return eris.Errorf("config: generate.alerts must be positive (got %d)", c.Generate.Alerts)
	}
	if c.Generate.Transactions < 0 {
		return eris.Errorf("config: generate.transactions must be non-negative (got %d)", c.Generate.Transactions)
	}
	if c.Model.MaxIter <= 0 {
		return eris.Errorf("config: model.max_iter must be positive (got %d)", c.Model.MaxIter)
	}
	if c.Model.L2 < 0 {
		return eris.Errorf("config: model.l2 must be non-negative (got %g)", c.Model.L2)
	}
	if c.Report.HistogramBins <= 0 {
		return eris.Errorf("config: report.histogram_bins must be positive (got %d)", c.Report.HistogramBins)
	}
	return nil
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
