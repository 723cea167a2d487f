// Package config loads gg settings from defaults, a YAML file, .env files
// and GG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Merge strategies for auto-resolving simulated conflicts.
const (
	StrategyOurs   = "ours"
	StrategyTheirs = "theirs"
)

// Config holds all gg settings.
type Config struct {
	// Dir is the working tree root; the repository lives in Dir/.gg.
	Dir           string `mapstructure:"dir"`
	Author        string `mapstructure:"author"`
	BloomBits     uint64 `mapstructure:"bloom_bits"`
	Seed          uint64 `mapstructure:"seed"` // 0 seeds from the clock
	LogLevel      string `mapstructure:"log_level"`
	MergeStrategy string `mapstructure:"merge_strategy"`
	LogLimit      int    `mapstructure:"log_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dir:           ".",
		Author:        "gg",
		BloomBits:     1024,
		LogLevel:      "info",
		MergeStrategy: StrategyOurs,
		LogLimit:      20,
	}
}

func (c *Config) values() map[string]any {
	return map[string]any{
		"dir":            c.Dir,
		"author":         c.Author,
		"bloom_bits":     c.BloomBits,
		"seed":           c.Seed,
		"log_level":      c.LogLevel,
		"merge_strategy": c.MergeStrategy,
		"log_limit":      c.LogLimit,
	}
}

// Load reads the configuration. An explicit path that does not exist is an
// error; otherwise missing files fall back to defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	for k, val := range cfg.values() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("GG")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".gg")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env.local then .env. Variables already set win.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.MergeStrategy != StrategyOurs && c.MergeStrategy != StrategyTheirs {
		return fmt.Errorf("config: merge_strategy must be %q or %q, got %q", StrategyOurs, StrategyTheirs, c.MergeStrategy)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.LogLimit < 0 {
		return fmt.Errorf("config: log_limit must not be negative")
	}
	return nil
}

// Level is the parsed log level, Info when unparseable.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Rand returns the random source for commit ids and skip-list levels.
// Equal non-zero seeds yield equal sequences; Seed 0 seeds from the clock.
func (c *Config) Rand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Write saves c as YAML to path.
func Write(path string, c *Config) error {
	v := viper.New()
	for k, val := range c.values() {
		if k == "dir" {
			continue
		}
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
