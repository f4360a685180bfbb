// Package handler exposes the lead lookup as an API Gateway proxy endpoint.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"outbound-lead-lookup/internal/domain"
	"outbound-lead-lookup/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	conversationParam = "conversationId"

	missingConversationMessage = "Missing conversationId"
	extractionFailedMessage    = "Could not find contactId/contactListId in conversation payload."
	extractionFailedTip        = "Open browser devtools > Network/Console and share a redacted conversation payload so the key extraction rules can be extended."
	methodNotAllowedMessage    = "Method not allowed"
)

type LeadUseCase interface {
	Resolve(ctx context.Context, in usecase.ResolveInput) (domain.Lead, error)
}

type Handler struct {
	uc     LeadUseCase
	logger *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Tip   string `json:"tip,omitempty"`
}

func NewHandler(uc LeadUseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

// Handle never returns a Go error: every outcome is encoded in the response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	switch strings.ToUpper(req.HTTPMethod) {
	case http.MethodOptions:
		return respond(http.StatusNoContent, corrID, ""), nil
	case http.MethodGet:
	default:
		resp := respondJSON(http.StatusMethodNotAllowed, corrID, errorResponse{Error: methodNotAllowedMessage, Code: "METHOD_NOT_ALLOWED"})
		resp.Headers["Allow"] = "GET, OPTIONS"
		return resp, nil
	}

	lead, err := h.uc.Resolve(ctx, usecase.ResolveInput{ConversationID: queryParam(req, conversationParam)})
	if err != nil {
		return h.errorResponse(ctx, corrID, err), nil
	}
	return respondJSON(http.StatusOK, corrID, lead), nil
}

func (h *Handler) errorResponse(ctx context.Context, corrID string, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected_error", Err: err}
	}

	// Caller-facing outcomes keep the bare {error[, tip]} shape; code is only
	// added to server-side failures.
	var body errorResponse
	status := http.StatusInternalServerError
	switch ucErr.Code {
	case usecase.ErrorMissingParameter:
		status = http.StatusBadRequest
		body.Error = missingConversationMessage
	case usecase.ErrorExtractionFailed:
		status = http.StatusUnprocessableEntity
		body.Error = extractionFailedMessage
		body.Tip = extractionFailedTip
	default:
		body.Code = string(ucErr.Code)
		body.Error = ucErr.Reason
		if ucErr.Err != nil {
			body.Error = ucErr.Err.Error()
		}
	}

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "lead lookup failed",
		"correlation_id", corrID,
		"status", status,
		"code", ucErr.Code,
		"reason", ucErr.Reason,
		"err", ucErr.Err,
	)
	return respondJSON(status, corrID, body)
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func respond(status int, corrID, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    lo.Assign(corsHeaders(), map[string]string{correlationHeader: corrID}),
		Body:       body,
	}
}

func respondJSON(status int, corrID string, v any) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		buf = []byte(`{"error":"failed to encode response","code":"INTERNAL_ERROR"}`)
	}
	resp := respond(status, corrID, string(buf))
	resp.Headers["Content-Type"] = "application/json"
	return resp
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func queryParam(req events.APIGatewayProxyRequest, name string) string {
	if v, ok := req.QueryStringParameters[name]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(lo.FirstOrEmpty(req.MultiValueQueryStringParameters[name]))
}
