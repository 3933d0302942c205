package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/pipeline-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Pipeline configuration
	PipelineCfg PipelineConfig `envPrefix:"PIPELINE_"`

	// Run registry configuration
	RunRegistryCfg RunRegistryConfig `envPrefix:"RUN_REGISTRY_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	CompletionEndpoint string               `env:"COMPLETION_ENDPOINT,notEmpty"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// PipelineConfig holds pipeline execution defaults and limits
type PipelineConfig struct {
	DefaultConcurrency int `env:"DEFAULT_CONCURRENCY" envDefault:"2"`
	MaxConcurrency     int `env:"MAX_CONCURRENCY" envDefault:"16"`
	SafetyMarginChars  int `env:"SAFETY_MARGIN_CHARS" envDefault:"500"`
	MaxInputChars      int `env:"MAX_INPUT_CHARS" envDefault:"2000000"`
}

// RunRegistryConfig holds run retention settings
type RunRegistryConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.PipelineCfg.MaxConcurrency < 1 || cfg.PipelineCfg.MaxConcurrency > 64 {
		return fmt.Errorf("PIPELINE_MAX_CONCURRENCY must be between 1 and 64, got %d", cfg.PipelineCfg.MaxConcurrency)
	}

	if cfg.PipelineCfg.DefaultConcurrency < 1 || cfg.PipelineCfg.DefaultConcurrency > cfg.PipelineCfg.MaxConcurrency {
		return fmt.Errorf("PIPELINE_DEFAULT_CONCURRENCY must be between 1 and PIPELINE_MAX_CONCURRENCY(%d), got %d",
			cfg.PipelineCfg.MaxConcurrency, cfg.PipelineCfg.DefaultConcurrency)
	}

	if cfg.PipelineCfg.SafetyMarginChars < 0 {
		return fmt.Errorf("PIPELINE_SAFETY_MARGIN_CHARS must not be negative, got %d", cfg.PipelineCfg.SafetyMarginChars)
	}

	if cfg.RunRegistryCfg.TTL < time.Minute {
		return fmt.Errorf("RUN_REGISTRY_TTL must be at least 1m, got %s", cfg.RunRegistryCfg.TTL)
	}

	if !cfg.EnableMocks && cfg.LLMConnectorCfg.Url == "" {
		return fmt.Errorf("LLM_SERVICE_URL is required when mocks are disabled")
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
