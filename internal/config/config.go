// Package config loads runtime configuration from a YAML file, falling back
// to defaults that mirror the conventional repository layout.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	RawDataDir   string        `yaml:"raw_data_dir"`
	DictDir      string        `yaml:"dict_dir"`
	DatabasePath string        `yaml:"database_path"`
	HTTPAddr     string        `yaml:"http_addr"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	CacheSize    int           `yaml:"cache_size"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		RawDataDir:   "data/raw/VIOLBR-PARQUET",
		DictDir:      "data/config/TAB_SINANONLINE",
		DatabasePath: "data/processed/sinan.duckdb",
		HTTPAddr:     ":8501",
		QueryTimeout: 30 * time.Second,
		CacheSize:    64,
	}
}

// UnmarshalYAML accepts Go duration notation ("30s", "2m") for
// query_timeout, which yaml.v3 does not decode into time.Duration natively.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		RawDataDir   string `yaml:"raw_data_dir"`
		DictDir      string `yaml:"dict_dir"`
		DatabasePath string `yaml:"database_path"`
		HTTPAddr     string `yaml:"http_addr"`
		QueryTimeout string `yaml:"query_timeout"`
		CacheSize    *int   `yaml:"cache_size"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.RawDataDir != "" {
		c.RawDataDir = raw.RawDataDir
	}
	if raw.DictDir != "" {
		c.DictDir = raw.DictDir
	}
	if raw.DatabasePath != "" {
		c.DatabasePath = raw.DatabasePath
	}
	if raw.HTTPAddr != "" {
		c.HTTPAddr = raw.HTTPAddr
	}
	if raw.QueryTimeout != "" {
		d, err := time.ParseDuration(raw.QueryTimeout)
		if err != nil {
			return fmt.Errorf("query_timeout: %w", err)
		}
		c.QueryTimeout = d
	}
	if raw.CacheSize != nil {
		c.CacheSize = *raw.CacheSize
	}
	return nil
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	return cfg, nil
}
