package usecase

import (
	"errors"
	"fmt"

	"outbound-lead-lookup/internal/integrations/genesys"
)

type ErrorCode string

const (
	ErrorMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrorExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrorConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	ErrorUpstreamAuth     ErrorCode = "UPSTREAM_AUTH_ERROR"
	ErrorUpstreamAPI      ErrorCode = "UPSTREAM_API_ERROR"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// classify wraps an integration failure with the code matching its type.
func classify(reason string, err error) *Error {
	var (
		cfgErr  *genesys.ConfigurationError
		authErr *genesys.AuthError
		apiErr  *genesys.APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		return newError(ErrorConfiguration, "missing_client_credentials", err)
	case errors.As(err, &authErr):
		return newError(ErrorUpstreamAuth, "token_rejected", err)
	case errors.As(err, &apiErr):
		return newError(ErrorUpstreamAPI, reason, err)
	default:
		return newError(ErrorInternal, reason, err)
	}
}
