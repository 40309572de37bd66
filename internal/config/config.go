package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds the optional results database settings
type DatabaseConfig struct {
	URL string // empty disables persistence
}

// ServerConfig holds the results API settings
type ServerConfig struct {
	Port string
}

// AnalysisConfig holds the enrichment defaults; every value can be
// overridden per run from the CLI
type AnalysisConfig struct {
	Metric          string
	PermutationType string
	MinSize         int
	MaxSize         int
	PermutationNum  int
	Weight          float64
	Seed            uint64
	Threads         int
	Ascending       bool
	GraphNum        int
}

// Load builds configuration from the environment, reading .env when present
func Load() (*Config, error) {
	// missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnv("API_PORT", "8080"),
		},
		Analysis: AnalysisConfig{
			Metric:          getEnv("GSEA_METRIC", "signal_to_noise"),
			PermutationType: getEnv("GSEA_PERMUTATION_TYPE", "phenotype"),
			MinSize:         getEnvInt("GSEA_MIN_SIZE", 15),
			MaxSize:         getEnvInt("GSEA_MAX_SIZE", 500),
			PermutationNum:  getEnvInt("GSEA_PERMUTATION_NUM", 1000),
			Weight:          getEnvFloat("GSEA_WEIGHT", 1.0),
			Seed:            uint64(getEnvInt("GSEA_SEED", 123)),
			Threads:         getEnvInt("GSEA_THREADS", 1),
			Ascending:       getEnvBool("GSEA_ASCENDING", false),
			GraphNum:        getEnvInt("GSEA_GRAPH_NUM", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.MinSize > c.Analysis.MaxSize {
		return errors.ConfigInvalid("GSEA_MIN_SIZE must be <= GSEA_MAX_SIZE")
	}
	if c.Analysis.Threads < 1 {
		return errors.ConfigInvalid("GSEA_THREADS must be >= 1")
	}
	// negative permutation counts degrade to 0, matching the reference tool
	if c.Analysis.PermutationNum < 0 {
		c.Analysis.PermutationNum = 0
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
