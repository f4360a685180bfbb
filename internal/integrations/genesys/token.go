package genesys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// expiryMargin treats a token as expired this long before the platform does.
const expiryMargin = 30 * time.Second

// ClientCredentials is an OAuth client id/secret pair. Source names where the
// pair came from and is only used in error messages.
type ClientCredentials struct {
	ID     string
	Secret string
	Source string
}

// CredentialSource supplies the client credentials used for the
// client-credentials grant.
type CredentialSource interface {
	ClientCredentials(ctx context.Context) (ClientCredentials, error)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenCache holds a single bearer token and refreshes it from the token
// endpoint when it is missing or within expiryMargin of expiring.
//
// Overlapping refreshes are not coordinated: each one performs its own grant
// and the last write wins. The mutex only guards the cached fields and is
// never held across a network call.
type TokenCache struct {
	tokenURL   string
	source     CredentialSource
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type TokenOption func(*TokenCache)

func WithTokenHTTPClient(httpClient *http.Client) TokenOption {
	return func(c *TokenCache) {
		c.httpClient = httpClient
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

func WithTokenLogger(logger *slog.Logger) TokenOption {
	return func(c *TokenCache) {
		c.logger = logger
	}
}

// NewTokenCache creates a cache that exchanges credentials from source at
// authBaseURL + "/oauth/token".
func NewTokenCache(authBaseURL string, source CredentialSource, opts ...TokenOption) (*TokenCache, error) {
	if source == nil {
		return nil, errors.New("genesys: credential source must not be nil")
	}
	base := strings.TrimRight(strings.TrimSpace(authBaseURL), "/")
	if base == "" {
		return nil, errors.New("genesys: auth base URL must not be empty")
	}
	c := &TokenCache{
		tokenURL:   base + "/oauth/token",
		source:     source,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Token returns the cached token, refreshing it first when needed.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}
	return c.Refresh(ctx)
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", false
	}
	if !c.now().Before(c.expiresAt.Add(-expiryMargin)) {
		return "", false
	}
	return c.token, true
}

// Invalidate drops the cached token if it is still token, so that a token
// replaced by a concurrent refresh is kept.
func (c *TokenCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.expiresAt = time.Time{}
	}
}

// Refresh performs a client-credentials grant unconditionally and stores the
// result.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	creds, err := c.source.ClientCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("genesys: load client credentials: %w", err)
	}
	if creds.ID == "" || creds.Secret == "" {
		return "", &ConfigurationError{Source: creds.Source}
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ID},
		"client_secret": {creds.Secret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("genesys: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genesys: token request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &AuthError{
			StatusCode: res.StatusCode,
			Status:     statusText(res.StatusCode, res.Status),
			Body:       string(buf),
		}
	}

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("genesys: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", &AuthError{
			StatusCode: res.StatusCode,
			Status:     statusText(res.StatusCode, res.Status),
			Body:       "token response has no access_token",
		}
	}

	expiresAt := c.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	c.mu.Lock()
	c.token = payload.AccessToken
	c.expiresAt = expiresAt
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "refreshed access token", "expires_in", payload.ExpiresIn, "source", creds.Source)
	return payload.AccessToken, nil
}
