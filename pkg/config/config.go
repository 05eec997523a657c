// Package config loads the bot configuration from an optional YAML file
// overlaid on environment variables, with sane defaults. Credentials come
// from the environment only (a .env file is honored by the entrypoint);
// everything else can live in the file.
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// APIConfig is the exchange credential set and endpoint.
type APIConfig struct {
	BaseURL    string
	Key        string
	Secret     string
	Passphrase string
}

// Config is the resolved bot configuration.
type Config struct {
	API APIConfig

	Product         string
	Granularity     int // candle bucket width, seconds
	DataDelay       int // exchange-side candle publication lag, seconds
	ErrorBackoff    int // sleep after a failed cycle, seconds
	SettlementDelay int // wait before fetching fills, seconds
	FastPeriod      int
	SlowPeriod      int

	LogLevel string
	LogFile  string
	DryRun   bool
}

// configFile mirrors the YAML layout.
type configFile struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Product         string `yaml:"product"`
	Granularity     int    `yaml:"granularity"`
	DataDelay       int    `yaml:"data_delay"`
	ErrorBackoff    int    `yaml:"error_backoff"`
	SettlementDelay int    `yaml:"settlement_delay"`
	FastPeriod      int    `yaml:"fast_period"`
	SlowPeriod      int    `yaml:"slow_period"`
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
	DryRun          bool   `yaml:"dry_run"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment overrides for credentials and ad-hoc tuning.
// Missing credentials fail validation; that is an unrecovered startup error
// by design.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Product:         "BTC-USD",
		Granularity:     360,
		DataDelay:       300,
		ErrorBackoff:    60,
		SettlementDelay: 2,
		FastPeriod:      12,
		SlowPeriod:      26,
		LogLevel:        "info",
	}

	if path != "" {
		var file configFile
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
		applyFile(cfg, &file)
	}

	cfg.API.BaseURL = getEnv("COINBASE_API_URL", cfg.API.BaseURL)
	cfg.API.Key = os.Getenv("COINBASE_API_KEY")
	cfg.API.Secret = os.Getenv("COINBASE_API_SECRET")
	cfg.API.Passphrase = os.Getenv("COINBASE_API_PASSPHRASE")

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DryRun = parseBoolEnv("DRY_RUN", cfg.DryRun)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, file *configFile) {
	if file.API.BaseURL != "" {
		cfg.API.BaseURL = file.API.BaseURL
	}
	if file.Product != "" {
		cfg.Product = file.Product
	}
	if file.Granularity > 0 {
		cfg.Granularity = file.Granularity
	}
	if file.DataDelay > 0 {
		cfg.DataDelay = file.DataDelay
	}
	if file.ErrorBackoff > 0 {
		cfg.ErrorBackoff = file.ErrorBackoff
	}
	if file.SettlementDelay > 0 {
		cfg.SettlementDelay = file.SettlementDelay
	}
	if file.FastPeriod > 0 {
		cfg.FastPeriod = file.FastPeriod
	}
	if file.SlowPeriod > 0 {
		cfg.SlowPeriod = file.SlowPeriod
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		cfg.LogFile = file.LogFile
	}
	if file.DryRun {
		cfg.DryRun = true
	}
}

// Validate checks the parts the process cannot run without.
func (c *Config) Validate() error {
	if c.API.Key == "" || c.API.Secret == "" || c.API.Passphrase == "" {
		return errors.New("COINBASE_API_KEY, COINBASE_API_SECRET and COINBASE_API_PASSPHRASE must be set")
	}
	if c.Granularity <= 0 {
		return errors.New("granularity must be positive")
	}
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 {
		return errors.New("EMA periods must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
