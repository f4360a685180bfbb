package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Conversation is the subset of an upstream conversation resource the lookup
// reads. The upstream schema varies by conversation type, so both fields are
// optional and decoded leniently.
type Conversation struct {
	Participants Participants `json:"participants"`
	Attributes   Attributes   `json:"attributes"`
}

// Participant is a single conversation participant.
type Participant struct {
	Attributes Attributes `json:"attributes"`
}

// Participants decodes a JSON array of participants. A non-array value
// decodes to an empty list, and non-object entries contribute no attributes.
type Participants []Participant

func (p *Participants) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*p = nil
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return fmt.Errorf("domain: decode participants: %w", err)
	}
	out := make(Participants, 0, len(items))
	for i, item := range items {
		var part Participant
		if t := bytes.TrimSpace(item); len(t) > 0 && t[0] == '{' {
			if err := json.Unmarshal(t, &part); err != nil {
				return fmt.Errorf("domain: decode participant %d: %w", i, err)
			}
		}
		out = append(out, part)
	}
	*p = out
	return nil
}

// Identifiers are the outbound dialing identifiers found on a conversation.
// An empty field means the identifier was not found.
type Identifiers struct {
	ContactID     string
	ContactListID string
}

// Complete reports whether both identifiers were found.
func (i Identifiers) Complete() bool {
	return i.ContactID != "" && i.ContactListID != ""
}

// Lead is the resolved lead record together with the identifiers used to
// fetch it. Record is passed through exactly as the platform returned it.
type Lead struct {
	ContactID     string          `json:"contactId"`
	ContactListID string          `json:"contactListId"`
	Record        json.RawMessage `json:"lead"`
}
