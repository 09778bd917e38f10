package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Text-generation collaborator. The provider is chosen here and passed
	// explicitly into the pipeline constructor; nothing reads the process
	// environment at call time.
	LLMProvider       string  `mapstructure:"LLM_PROVIDER"`
	LLMModel          string  `mapstructure:"LLM_MODEL"`
	LLMAPIKey         string  `mapstructure:"LLM_API_KEY"`
	LLMBaseURL        string  `mapstructure:"LLM_BASE_URL"`
	LLMTimeoutSeconds int     `mapstructure:"LLM_TIMEOUT_SECONDS"`
	LLMTemperature    float64 `mapstructure:"LLM_TEMPERATURE"`

	// Claims above this approved amount are always routed to manual review.
	HighValueThreshold float64 `mapstructure:"HIGH_VALUE_THRESHOLD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("LLM_PROVIDER", "none")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 30)
	v.SetDefault("LLM_TEMPERATURE", 0.1)
	v.SetDefault("HIGH_VALUE_THRESHOLD", 50000)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("LLM_PROVIDER")
	v.BindEnv("LLM_MODEL")
	v.BindEnv("LLM_API_KEY")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("LLM_TIMEOUT_SECONDS")
	v.BindEnv("LLM_TEMPERATURE")
	v.BindEnv("HIGH_VALUE_THRESHOLD")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// LLMTimeout returns the per-call deadline for the text-generation backend.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. The server requires
// a database; the adjudicate CLI path does not, so DATABASE_URL is checked by
// the commands that need it rather than here.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLMProvider) {
	case "", "none", "openai", "anthropic":
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"openai\", \"anthropic\", or \"none\", got %q", c.LLMProvider)
	}
	if provider := strings.ToLower(c.LLMProvider); provider == "openai" || provider == "anthropic" {
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required when LLM_PROVIDER is %q", c.LLMProvider)
		}
	}
	if c.HighValueThreshold <= 0 {
		return fmt.Errorf("HIGH_VALUE_THRESHOLD must be positive, got %v", c.HighValueThreshold)
	}
	return nil
}
