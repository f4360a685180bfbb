package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outbound-lead-lookup/internal/integrations/credentials"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, "mypurecloud.ie", cfg.Environment)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "https://login.mypurecloud.ie", cfg.authBaseURL())
	require.Equal(t, "https://api.mypurecloud.ie", cfg.apiBaseURL())
	require.Equal(t, slog.LevelInfo, cfg.slogLevel())
	require.Empty(t, cfg.ClientID)
	require.Empty(t, cfg.LocalAddr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig([]string{
		"GC_CLIENT_ID=id",
		"GC_CLIENT_SECRET=secret",
		"GC_ENVIRONMENT=usw2.pure.cloud",
		"GC_API_BASE_URL=http://localhost:9000",
		"HTTP_TIMEOUT=3s",
		"LOG_LEVEL=DEBUG",
		"LOCAL_ADDR=:8080",
	})
	require.NoError(t, err)
	require.Equal(t, "id", cfg.ClientID)
	require.Equal(t, "secret", cfg.ClientSecret)
	require.Equal(t, "https://login.usw2.pure.cloud", cfg.authBaseURL())
	require.Equal(t, "http://localhost:9000", cfg.apiBaseURL())
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, slog.LevelDebug, cfg.slogLevel())
	require.Equal(t, ":8080", cfg.LocalAddr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string][]string{
		"auth url":     {"GC_AUTH_BASE_URL=not a url"},
		"environment":  {"GC_ENVIRONMENT="},
		"timeout":      {"HTTP_TIMEOUT=soon"},
		"zero timeout": {"HTTP_TIMEOUT=0s"},
		"log level":    {"LOG_LEVEL=verbose"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(environ)
			require.Error(t, err)
		})
	}
}

func TestCredentialSource_Environment(t *testing.T) {
	cfg, err := loadConfig([]string{"GC_CLIENT_ID=id", "GC_CLIENT_SECRET=secret"})
	require.NoError(t, err)

	source, err := credentialSource(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, credentials.Static{ID: "id", Secret: "secret", Source: credentialsEnvSource}, source)
}
