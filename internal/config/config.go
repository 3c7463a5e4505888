// Package config loads client configuration from defaults, an optional
// YAML file, and CAREERMATE_* environment variables, in increasing
// precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "CAREERMATE_"

// Config holds everything the CLI and SDK wiring need.
type Config struct {
	BaseURL     string        `koanf:"base_url"`
	DataDir     string        `koanf:"data_dir"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	DefaultCity string        `koanf:"default_city"`
	LogLevel    string        `koanf:"log_level"`
}

// StorePath is the localstore file location under the data dir.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "store.json")
}

func defaults() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.Wrap(err, "[config] resolve home directory")
	}
	return Config{
		BaseURL:     "http://localhost:8000",
		DataDir:     filepath.Join(home, ".config", "careermate"),
		HTTPTimeout: 30 * time.Second,
		DefaultCity: "London",
		LogLevel:    "info",
	}, nil
}

// Load reads configPath (optional; defaults to config.yaml under the data
// dir) and applies environment overrides on top.
//
//	CAREERMATE_BASE_URL     -> base_url
//	CAREERMATE_HTTP_TIMEOUT -> http_timeout
func Load(configPath string) (*Config, error) {
	cfg, err := defaults()
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if configPath == "" {
		configPath = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if blob, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(blob), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "[config] parse config file")
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "[config] load environment")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "[config] unmarshal")
	}
	return &cfg, nil
}
