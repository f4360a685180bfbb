package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"outbound-lead-lookup/internal/domain"
)

type APIClient interface {
	Get(ctx context.Context, path string, out any) error
}

type IdentifierExtractor interface {
	Extract(conv domain.Conversation) domain.Identifiers
}

type ResolveInput struct {
	ConversationID string
}

// conversationAttempt is one upstream resource that may hold the
// conversation. Attempts are tried in order and the last failure is the one
// reported.
type conversationAttempt struct {
	name string
	path func(conversationID string) string
}

var conversationAttempts = []conversationAttempt{
	{name: "call", path: func(id string) string { return "/api/v2/conversations/calls/" + url.PathEscape(id) }},
	{name: "generic", path: func(id string) string { return "/api/v2/conversations/" + url.PathEscape(id) }},
}

func leadPath(ids domain.Identifiers) string {
	return "/api/v2/outbound/contactlists/" + url.PathEscape(ids.ContactListID) +
		"/contacts/" + url.PathEscape(ids.ContactID)
}

// LeadResolver resolves the outbound lead behind a conversation.
type LeadResolver struct {
	api       APIClient
	extractor IdentifierExtractor
	logger    *slog.Logger
}

func NewLeadResolver(api APIClient, extractor IdentifierExtractor, logger *slog.Logger) (*LeadResolver, error) {
	if api == nil {
		return nil, errors.New("usecase: api client must not be nil")
	}
	if extractor == nil {
		return nil, errors.New("usecase: identifier extractor must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadResolver{api: api, extractor: extractor, logger: logger}, nil
}

func (r *LeadResolver) Resolve(ctx context.Context, in ResolveInput) (domain.Lead, error) {
	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		return domain.Lead{}, newError(ErrorMissingParameter, "missing_conversation_id", nil)
	}

	conv, err := r.fetchConversation(ctx, convID)
	if err != nil {
		return domain.Lead{}, classify("conversation_fetch_error", err)
	}

	ids := r.extractor.Extract(conv)
	if !ids.Complete() {
		r.logger.InfoContext(ctx, "outbound identifiers not found on conversation",
			"conversation_id", convID,
			"has_contact_id", ids.ContactID != "",
			"has_contact_list_id", ids.ContactListID != "",
		)
		return domain.Lead{}, newError(ErrorExtractionFailed, "identifiers_not_found", nil)
	}

	var record json.RawMessage
	if err := r.api.Get(ctx, leadPath(ids), &record); err != nil {
		return domain.Lead{}, classify("lead_fetch_error", err)
	}

	return domain.Lead{
		ContactID:     ids.ContactID,
		ContactListID: ids.ContactListID,
		Record:        record,
	}, nil
}

func (r *LeadResolver) fetchConversation(ctx context.Context, convID string) (domain.Conversation, error) {
	var lastErr error
	for i, attempt := range conversationAttempts {
		var conv domain.Conversation
		err := r.api.Get(ctx, attempt.path(convID), &conv)
		if err == nil {
			return conv, nil
		}
		lastErr = err
		if i < len(conversationAttempts)-1 {
			r.logger.WarnContext(ctx, "conversation fetch failed, trying next resource",
				"conversation_id", convID,
				"resource", attempt.name,
				"err", err,
			)
		}
	}
	return domain.Conversation{}, lastErr
}
