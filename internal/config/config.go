package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Generation GenerationConfig `yaml:"generation"`
	Limits     LimitsConfig     `yaml:"limits"`
	Tracking   TrackingConfig   `yaml:"tracking"`
	Settings   SettingsConfig   `yaml:"settings"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the postgres connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	URL string `yaml:"url"`
}

// GenerationConfig holds AI email generation settings
type GenerationConfig struct {
	Provider        string  `yaml:"provider"` // "anthropic" or "bedrock"
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	AnthropicModel  string  `yaml:"anthropic_model"`
	BedrockModelID  string  `yaml:"bedrock_model_id"`
	BedrockRegion   string  `yaml:"bedrock_region"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	MaxTokens       int     `yaml:"max_tokens"`
	InputRate       float64 `yaml:"input_rate"`  // $ per 1K prompt tokens
	OutputRate      float64 `yaml:"output_rate"` // $ per 1K completion tokens
}

// Timeout returns the generation call timeout.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// LimitsConfig holds the daily AI usage budget
type LimitsConfig struct {
	DailyGenerations int     `yaml:"daily_generations"`
	DailyTokens      int     `yaml:"daily_tokens"`
	DailyCostUSD     float64 `yaml:"daily_cost_usd"`
}

// TrackingConfig holds engagement tracking settings
type TrackingConfig struct {
	SigningKey string `yaml:"signing_key"`
	BaseURL    string `yaml:"base_url"`
}

// SettingsConfig holds settings-store behavior
type SettingsConfig struct {
	FlushDelaySeconds int `yaml:"flush_delay_seconds"`
	CacheTTLSeconds   int `yaml:"cache_ttl_seconds"`
}

// FlushDelay returns the debounce quiet period before a durable flush.
func (s SettingsConfig) FlushDelay() time.Duration {
	return time.Duration(s.FlushDelaySeconds) * time.Second
}

// CacheTTL returns the redis cache entry lifetime.
func (s SettingsConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file falls back to defaults plus env overrides.
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "anthropic"
	}
	if cfg.Generation.AnthropicModel == "" {
		cfg.Generation.AnthropicModel = "claude-sonnet-4-20250514"
	}
	if cfg.Generation.BedrockModelID == "" {
		cfg.Generation.BedrockModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	if cfg.Generation.BedrockRegion == "" {
		cfg.Generation.BedrockRegion = "us-east-1"
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 2000
	}
	if cfg.Generation.InputRate == 0 {
		cfg.Generation.InputRate = 0.003
	}
	if cfg.Generation.OutputRate == 0 {
		cfg.Generation.OutputRate = 0.015
	}
	if cfg.Limits.DailyGenerations == 0 {
		cfg.Limits.DailyGenerations = 500
	}
	if cfg.Limits.DailyTokens == 0 {
		cfg.Limits.DailyTokens = 2000000
	}
	if cfg.Limits.DailyCostUSD == 0 {
		cfg.Limits.DailyCostUSD = 50.0
	}
	if cfg.Tracking.BaseURL == "" {
		cfg.Tracking.BaseURL = "http://localhost:8080"
	}
	if cfg.Settings.FlushDelaySeconds == 0 {
		cfg.Settings.FlushDelaySeconds = 5
	}
	if cfg.Settings.CacheTTLSeconds == 0 {
		cfg.Settings.CacheTTLSeconds = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so secrets can live in .env locally and in real env vars in
// production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Generation.AnthropicAPIKey = v
	}
	if v := os.Getenv("GENERATION_PROVIDER"); v != "" {
		cfg.Generation.Provider = v
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Generation.BedrockModelID = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Generation.BedrockRegion = v
	}
	if v := os.Getenv("TRACKING_SIGNING_KEY"); v != "" {
		cfg.Tracking.SigningKey = v
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("DAILY_GENERATION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.DailyGenerations = n
		}
	}
	if v := os.Getenv("DAILY_COST_LIMIT_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Limits.DailyCostUSD = f
		}
	}

	return cfg, nil
}
