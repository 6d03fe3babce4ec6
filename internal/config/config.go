// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package config loads Interleaf configuration using Koanf v2 with
// layered sources: struct defaults, then an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/interleaf/config.yaml",
	"/etc/interleaf/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "INTERLEAF_CONFIG_PATH"

// envPrefix is the prefix for all Interleaf environment variables.
const envPrefix = "INTERLEAF_"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Training  TrainingConfig  `koanf:"training"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimit caps requests per client IP per minute; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the foundational rating and item tables.
type DataConfig struct {
	// Dir is the directory holding book_ratings.csv, movie_ratings.csv,
	// books.csv and movies.csv.
	Dir string `koanf:"dir"`
}

// ArtifactsConfig locates persisted model artifacts.
type ArtifactsConfig struct {
	// Dir is the directory scanned for trained model weight files.
	Dir string `koanf:"dir"`
}

// TrainingConfig holds hyperparameters shared by the model families.
type TrainingConfig struct {
	// EmbeddingDim is the latent dimension for collaborative and
	// co-occurrence embeddings. Both domains share it so the
	// cross-domain translators stay meaningful.
	EmbeddingDim int `koanf:"embedding_dim"`

	// HiddenDim is the hidden layer width of the content regressor.
	// Translator layers are sized by EmbeddingDim instead.
	HiddenDim int `koanf:"hidden_dim"`

	// Epochs is the number of passes over each training set.
	Epochs int `koanf:"epochs"`

	// BatchSize is the mini-batch size.
	BatchSize int `koanf:"batch_size"`

	// LearningRate is the SGD step size.
	LearningRate float64 `koanf:"learning_rate"`

	// Window is the co-occurrence context window.
	Window int `koanf:"window"`

	// NegativeSamples is the number of uniform negatives drawn per
	// positive co-occurrence pair.
	NegativeSamples int `koanf:"negative_samples"`

	// Seed drives all training-time randomness for reproducibility.
	Seed int64 `koanf:"seed"`

	// Timeout bounds a full retrain run.
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig holds serving-side limits.
type RecommendConfig struct {
	// TopK is the per-family list length before merging.
	TopK int `koanf:"top_k"`

	// MaxK caps client-requested K values.
	MaxK int `koanf:"max_k"`
}

// CacheConfig configures the badger-backed response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all defaults applied. These match
// the hyperparameters the models were originally tuned with.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute, // retrain is synchronous
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       300,
		},
		Data:      DataConfig{Dir: "data"},
		Artifacts: ArtifactsConfig{Dir: "outputs"},
		Training: TrainingConfig{
			EmbeddingDim:    64,
			HiddenDim:       64,
			Epochs:          5,
			BatchSize:       64,
			LearningRate:    0.01,
			Window:          2,
			NegativeSamples: 1,
			Seed:            42,
			Timeout:         30 * time.Minute,
		},
		Recommend: RecommendConfig{
			TopK: 10,
			MaxK: 100,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// INTERLEAF_* environment variables, in increasing priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// INTERLEAF_SERVER_PORT -> server.port, INTERLEAF_TRAINING_EMBEDDING_DIM
	// -> training.embedding_dim, and so on. Only the first underscore
	// separates the section from the key.
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envTransform maps INTERLEAF_SECTION_SOME_KEY to section.some_key.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the configuration for values that would make the
// pipeline produce nonsense rather than fail loudly.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit %d must not be negative", c.Server.RateLimit)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir must not be empty")
	}
	if c.Training.EmbeddingDim < 1 {
		return fmt.Errorf("training.embedding_dim %d must be positive", c.Training.EmbeddingDim)
	}
	if c.Training.HiddenDim < 1 {
		return fmt.Errorf("training.hidden_dim %d must be positive", c.Training.HiddenDim)
	}
	if c.Training.Epochs < 1 {
		return fmt.Errorf("training.epochs %d must be positive", c.Training.Epochs)
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size %d must be positive", c.Training.BatchSize)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate %f must be positive", c.Training.LearningRate)
	}
	if c.Training.Window < 1 {
		return fmt.Errorf("training.window %d must be positive", c.Training.Window)
	}
	if c.Training.NegativeSamples < 0 {
		return fmt.Errorf("training.negative_samples %d must not be negative", c.Training.NegativeSamples)
	}
	if c.Recommend.TopK < 1 {
		return fmt.Errorf("recommend.top_k %d must be positive", c.Recommend.TopK)
	}
	if c.Recommend.MaxK < c.Recommend.TopK {
		return fmt.Errorf("recommend.max_k %d must be >= top_k %d", c.Recommend.MaxK, c.Recommend.TopK)
	}
	return nil
}
