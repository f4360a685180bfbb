package genesys

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigurationError reports that client credentials are not configured.
// It is fatal for every request until the deployment is fixed.
type ConfigurationError struct {
	Source string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return "genesys: missing client id or client secret"
	}
	return fmt.Sprintf("genesys: missing client id or client secret (%s)", e.Source)
}

// AuthError captures a non-2xx answer from the token endpoint, or a 2xx
// answer that carried no token.
type AuthError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("genesys: token error: %d %s %s", e.StatusCode, e.Status, e.Body)
}

func (e *AuthError) HTTPStatusCode() int {
	return e.StatusCode
}

// APIError captures a non-2xx answer from the resource API.
type APIError struct {
	StatusCode int
	Status     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genesys: api error %d %s on %s: %s", e.StatusCode, e.Status, e.Path, e.Body)
}

func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// statusText strips the numeric code from an http.Response Status line.
func statusText(code int, status string) string {
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
}
