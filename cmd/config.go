package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const credentialsEnvSource = "GC_CLIENT_ID / GC_CLIENT_SECRET"

// Config is read from the environment once at startup. Client credentials
// are optional here: without them every request fails with a configuration
// error.
type Config struct {
	ClientID         string        `env:"GC_CLIENT_ID"`
	ClientSecret     string        `env:"GC_CLIENT_SECRET"`
	CredentialsParam string        `env:"GC_CREDENTIALS_PARAM"`
	Environment      string        `env:"GC_ENVIRONMENT,default=mypurecloud.ie" validate:"required,hostname"`
	AuthBaseURL      string        `env:"GC_AUTH_BASE_URL" validate:"omitempty,url"`
	APIBaseURL       string        `env:"GC_API_BASE_URL" validate:"omitempty,url"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT,default=10s" validate:"gt=0"`
	LocalAddr        string        `env:"LOCAL_ADDR"`
	LogLevel         string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

func loadConfig(environ []string) (Config, error) {
	es, err := env.EnvironToEnvSet(environ)
	if err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Environment = strings.Trim(strings.TrimSpace(cfg.Environment), ".")
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) authBaseURL() string {
	if c.AuthBaseURL != "" {
		return c.AuthBaseURL
	}
	return "https://login." + c.Environment
}

func (c Config) apiBaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return "https://api." + c.Environment
}

func (c Config) slogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
