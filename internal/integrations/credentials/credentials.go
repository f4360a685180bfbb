// Package credentials provides the client-credential sources the token cache
// can draw from.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"outbound-lead-lookup/internal/integrations/genesys"
)

// Static serves a fixed credential pair, normally read from the environment.
// Empty fields are passed through so the token cache can report them.
type Static struct {
	ID     string
	Secret string
	Source string
}

func (s Static) ClientCredentials(_ context.Context) (genesys.ClientCredentials, error) {
	return genesys.ClientCredentials{
		ID:     strings.TrimSpace(s.ID),
		Secret: strings.TrimSpace(s.Secret),
		Source: s.Source,
	}, nil
}

// JSONDecoder is satisfied by *paramstore.Client.
type JSONDecoder interface {
	DecodeJSON(ctx context.Context, name string, out any) error
}

type paramPayload struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// ParamStore reads the credential pair from a JSON parameter on every call.
// Calls only happen on token refresh, so rotated secrets are picked up on the
// next refresh.
type ParamStore struct {
	params JSONDecoder
	name   string
}

func NewParamStore(params JSONDecoder, name string) (*ParamStore, error) {
	if params == nil {
		return nil, errors.New("credentials: parameter store must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("credentials: parameter name must not be empty")
	}
	return &ParamStore{params: params, name: name}, nil
}

func (p *ParamStore) ClientCredentials(ctx context.Context) (genesys.ClientCredentials, error) {
	var payload paramPayload
	if err := p.params.DecodeJSON(ctx, p.name, &payload); err != nil {
		return genesys.ClientCredentials{}, fmt.Errorf("credentials: %w", err)
	}
	return genesys.ClientCredentials{
		ID:     strings.TrimSpace(payload.ClientID),
		Secret: strings.TrimSpace(payload.ClientSecret),
		Source: "parameter " + p.name,
	}, nil
}
