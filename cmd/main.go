package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"outbound-lead-lookup/handler"
	"outbound-lead-lookup/internal/extract"
	"outbound-lead-lookup/internal/integrations/credentials"
	"outbound-lead-lookup/internal/integrations/genesys"
	"outbound-lead-lookup/internal/integrations/paramstore"
	"outbound-lead-lookup/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := loadConfig(os.Environ())
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.slogLevel()}))
	slog.SetDefault(logger)

	// ---- Credential source ----
	source, err := credentialSource(ctx, cfg)
	if err != nil {
		logger.Error("failed to create credential source", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens, err := genesys.NewTokenCache(cfg.authBaseURL(), source,
		genesys.WithTokenHTTPClient(httpClient),
		genesys.WithTokenLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create token cache", "err", err)
		os.Exit(1)
	}
	api, err := genesys.NewClient(cfg.apiBaseURL(), tokens, genesys.WithHTTPClient(httpClient))
	if err != nil {
		logger.Error("failed to create platform client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	resolver, err := usecase.NewLeadResolver(api, extract.New(), logger)
	if err != nil {
		logger.Error("failed to create lead resolver", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(resolver, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if cfg.LocalAddr != "" {
		serveLocal(logger, cfg.LocalAddr, h)
		return
	}
	lambda.Start(h.Handle)
}

// credentialSource prefers Parameter Store when a parameter is configured and
// falls back to the environment otherwise.
func credentialSource(ctx context.Context, cfg Config) (genesys.CredentialSource, error) {
	if cfg.CredentialsParam == "" {
		return credentials.Static{ID: cfg.ClientID, Secret: cfg.ClientSecret, Source: credentialsEnvSource}, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	source, err := credentials.NewParamStore(params, cfg.CredentialsParam)
	if err != nil {
		return nil, err
	}
	return source, nil
}

func serveLocal(logger *slog.Logger, addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/api/lead", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("serving lead lookup", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("local server stopped", "err", err)
		os.Exit(1)
	}
}
