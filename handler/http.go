package handler

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/samber/lo"
)

// ServeHTTP runs Handle for a plain net/http request so the endpoint can be
// served outside Lambda.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := events.APIGatewayProxyRequest{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Headers:                         firstValues(r.Header),
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           firstValues(query),
		MultiValueQueryStringParameters: query,
	}

	resp, _ := h.Handle(r.Context(), req)
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}

func firstValues(in map[string][]string) map[string]string {
	return lo.MapValues(in, func(v []string, _ string) string {
		return lo.FirstOrEmpty(v)
	})
}
