package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DataDir is the per-project directory holding the attempt database.
const DataDir = ".essaysim"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the essay similarity tool.
type Config struct {
	Grading   GradingConfig   `yaml:"grading" toml:"grading"`
	Pipeline  PipelineConfig  `yaml:"pipeline" toml:"pipeline"`
	Languages LanguagesConfig `yaml:"languages" toml:"languages"`
	Batch     BatchConfig     `yaml:"batch" toml:"batch"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Cache     CacheConfig     `yaml:"cache" toml:"cache"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// GradingConfig holds the question settings used to band scores.
type GradingConfig struct {
	UpperCorrectness float64  `yaml:"upper_correctness" toml:"upper_correctness"`
	LowerCorrectness float64  `yaml:"lower_correctness" toml:"lower_correctness"`
	Language         string   `yaml:"language" toml:"language"`
	StatItems        []string `yaml:"stat_items" toml:"stat_items"` // e.g. "words", "fogindex"
}

// PipelineConfig toggles the similarity stages.
type PipelineConfig struct {
	TFIDF            bool    `yaml:"tfidf" toml:"tfidf"`
	LSA              bool    `yaml:"lsa" toml:"lsa"`
	Energy           float64 `yaml:"energy" toml:"energy"`
	MaxSVDIterations int     `yaml:"max_svd_iterations" toml:"max_svd_iterations"` // 0 = 75·max(m,n)
	MaxVocabulary    int     `yaml:"max_vocabulary" toml:"max_vocabulary"`         // 0 = unlimited
}

// LanguagesConfig points at extra language assets.
type LanguagesConfig struct {
	AssetDir string `yaml:"asset_dir" toml:"asset_dir"`
}

// BatchConfig holds batch grading configuration.
type BatchConfig struct {
	Includes []string `yaml:"includes" toml:"includes"`
	Excludes []string `yaml:"excludes" toml:"excludes"`
	Workers  int      `yaml:"workers" toml:"workers"`
}

// StoreConfig controls attempt history.
type StoreConfig struct {
	Record bool `yaml:"record" toml:"record"`
}

// CacheConfig holds score cache configuration.
type CacheConfig struct {
	Size   int `yaml:"size" toml:"size"`
	TTLSec int `yaml:"ttl_sec" toml:"ttl_sec"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr               string `yaml:"addr" toml:"addr"`
	ReadTimeoutSec     int    `yaml:"read_timeout_sec" toml:"read_timeout_sec"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec" toml:"write_timeout_sec"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec" toml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Env   string `yaml:"env" toml:"env"` // "prod", "local", "dev"
	Level string `yaml:"level" toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Grading: GradingConfig{
			UpperCorrectness: 0.8,
			LowerCorrectness: 0.5,
			Language:         "en",
			StatItems:        []string{},
		},
		Pipeline: PipelineConfig{
			TFIDF:         true,
			LSA:           true,
			Energy:        0.9,
			MaxVocabulary: 5000,
		},
		Batch: BatchConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/" + DataDir + "/**"},
			Workers:  4,
		},
		Cache: CacheConfig{
			Size:   1024,
			TTLSec: 600,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			ReadTimeoutSec:     10,
			WriteTimeoutSec:    10,
			ShutdownTimeoutSec: 5,
		},
		Logging: LoggingConfig{
			Env:   "local",
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML or, for *.toml paths, TOML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory. It looks for
// essaysim.yaml, essaysim.toml and .essaysim/config.yaml in that order.
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "essaysim.yaml"),
		filepath.Join(dir, "essaysim.toml"),
		filepath.Join(dir, DataDir, "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return DefaultConfig(), nil
}

// Save saves configuration, as TOML for *.toml paths and YAML otherwise.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	g := c.Grading
	if g.LowerCorrectness < 0 || g.UpperCorrectness > 1 || g.LowerCorrectness > g.UpperCorrectness {
		return fmt.Errorf("%w: correctness thresholds must satisfy 0 <= lower (%v) <= upper (%v) <= 1",
			ErrInvalidConfig, g.LowerCorrectness, g.UpperCorrectness)
	}
	if strings.TrimSpace(g.Language) == "" {
		return fmt.Errorf("%w: grading.language is empty", ErrInvalidConfig)
	}
	if c.Pipeline.Energy <= 0 || c.Pipeline.Energy > 1 {
		return fmt.Errorf("%w: pipeline.energy %v not in (0, 1]", ErrInvalidConfig, c.Pipeline.Energy)
	}
	if c.Pipeline.MaxVocabulary < 0 || c.Pipeline.MaxSVDIterations < 0 {
		return fmt.Errorf("%w: pipeline limits must not be negative", ErrInvalidConfig)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Cache.Size < 0 || c.Cache.TTLSec < 0 {
		return fmt.Errorf("%w: cache size and ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}

// StoreDBPath returns the path to the attempt database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, DataDir, "attempts.db")
}

// EnsureDataDir ensures the .essaysim directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDir), 0755)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
