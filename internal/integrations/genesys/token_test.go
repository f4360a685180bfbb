package genesys

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticSource struct {
	creds ClientCredentials
	err   error
}

func (s staticSource) ClientCredentials(_ context.Context) (ClientCredentials, error) {
	return s.creds, s.err
}

var validCreds = staticSource{creds: ClientCredentials{ID: "client", Secret: "secret", Source: "test"}}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTokenServer answers every grant with a numbered token valid for expiresIn seconds.
func newTokenServer(t *testing.T, expiresIn int, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "client", r.PostForm.Get("client_id"))
		require.Equal(t, "secret", r.PostForm.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCache(t *testing.T, srv *httptest.Server, clock *fakeClock, source CredentialSource) *TokenCache {
	t.Helper()
	c, err := NewTokenCache(srv.URL, source,
		WithClock(clock.Now),
		WithTokenHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func TestNewTokenCache_Validation(t *testing.T) {
	_, err := NewTokenCache("https://login.example.com", nil)
	require.ErrorContains(t, err, "must not be nil")

	_, err = NewTokenCache("  ", validCreds)
	require.ErrorContains(t, err, "must not be empty")

	c, err := NewTokenCache("https://login.example.com/", validCreds, WithTokenHTTPClient(nil), WithTokenLogger(nil))
	require.NoError(t, err)
	require.Equal(t, "https://login.example.com/oauth/token", c.tokenURL)
	require.NotNil(t, c.httpClient)
	require.NotNil(t, c.logger)
}

func TestToken_CachedWithinValidityWindow(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, 3600, &calls)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCache(t, srv, clock, validCreds)

	for i := 0; i < 5; i++ {
		tok, err := c.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "tok-1", tok)
		clock.Advance(10 * time.Minute)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "token endpoint must be hit once per validity window")
}

func TestToken_RefreshesInsideSafetyMargin(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, 300, &calls)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCache(t, srv, clock, validCreds)

	tok, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	// 1s before the margin starts the cached token is still served.
	clock.Advance(300*time.Second - expiryMargin - time.Second)
	tok, err = c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	// Exactly at the margin boundary the token counts as expired.
	clock.Advance(time.Second)
	tok, err = c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)

	tok, err = c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestToken_ShortLivedTokenIsNeverCached(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, 0, &calls)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newTestCache(t, srv, clock, validCreds)

	_, err := c.Token(context.Background())
	require.NoError(t, err)
	_, err = c.Token(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestToken_MissingCredentials(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, 3600, &calls)
	clock := &fakeClock{t: time.Now()}
	c := newTestCache(t, srv, clock, staticSource{creds: ClientCredentials{ID: "client", Source: "GC_CLIENT_ID / GC_CLIENT_SECRET"}})

	_, err := c.Token(context.Background())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, err.Error(), "GC_CLIENT_ID / GC_CLIENT_SECRET")
	require.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestToken_SourceError(t *testing.T) {
	srv := newTokenServer(t, 3600, new(int32))
	c := newTestCache(t, srv, &fakeClock{t: time.Now()}, staticSource{err: errors.New("ssm down")})

	_, err := c.Token(context.Background())
	require.ErrorContains(t, err, "ssm down")
	var cfgErr *ConfigurationError
	require.False(t, errors.As(err, &cfgErr))
}

func TestToken_EndpointRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	c := newTestCache(t, srv, &fakeClock{t: time.Now()}, validCreds)

	_, err := c.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusUnauthorized, authErr.HTTPStatusCode())
	require.Equal(t, "Unauthorized", authErr.Status)
	require.Contains(t, authErr.Body, "invalid_client")
}

func TestToken_EmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	c := newTestCache(t, srv, &fakeClock{t: time.Now()}, validCreds)

	_, err := c.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Contains(t, err.Error(), "no access_token")
}

func TestToken_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":`))
	}))
	t.Cleanup(srv.Close)
	c := newTestCache(t, srv, &fakeClock{t: time.Now()}, validCreds)

	_, err := c.Token(context.Background())
	require.ErrorContains(t, err, "decode token response")
}

func TestInvalidate_OnlyDropsMatchingToken(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, 3600, &calls)
	c := newTestCache(t, srv, &fakeClock{t: time.Now()}, validCreds)

	tok, err := c.Token(context.Background())
	require.NoError(t, err)

	c.Invalidate("some-older-token")
	again, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, tok, again)

	c.Invalidate(tok)
	fresh, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", fresh)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
