// Package extract locates outbound dialing identifiers inside a conversation
// resource.
//
// The platform does not document where these identifiers live, and call
// conversations nest them differently from other conversation types. Instead
// of a strict schema the extractor scans attribute keys against a table of
// patterns:
//
//   - participant attributes are scanned first, participant by participant;
//   - conversation-level attributes are scanned after, with looser patterns.
//
// Within a scan the first matching key in document order wins for each
// identifier, and an identifier is never overwritten once set. Keys are
// compared case-insensitively and empty values never match.
package extract

import (
	"strings"

	"github.com/samber/lo"

	"outbound-lead-lookup/internal/domain"
)

// Scope selects which attribute maps a rule applies to.
type Scope int

const (
	ScopeParticipant Scope = iota
	ScopeConversation
)

// Target is the identifier a rule fills.
type Target int

const (
	TargetContactID Target = iota
	TargetContactListID
)

// Rule matches attribute keys for one target in one scope. A key matches when
// it equals Equals, or when it contains every term of Ordered in that order.
type Rule struct {
	Scope   Scope
	Target  Target
	Equals  string
	Ordered []string
}

func (r Rule) matches(key string) bool {
	key = strings.ToLower(key)
	if r.Equals != "" && key == strings.ToLower(r.Equals) {
		return true
	}
	if len(r.Ordered) == 0 {
		return false
	}
	pos := 0
	for _, term := range r.Ordered {
		i := strings.Index(key[pos:], strings.ToLower(term))
		if i < 0 {
			return false
		}
		pos += i + len(term)
	}
	return true
}

// DefaultRules covers the key spellings seen on call and non-call
// conversations.
var DefaultRules = []Rule{
	{Scope: ScopeParticipant, Target: TargetContactID, Ordered: []string{"outbound", "contact", "id"}},
	{Scope: ScopeParticipant, Target: TargetContactID, Equals: "contactId"},
	{Scope: ScopeParticipant, Target: TargetContactListID, Ordered: []string{"contactlist", "id"}},
	{Scope: ScopeParticipant, Target: TargetContactListID, Ordered: []string{"outbound", "contactlist"}},
	{Scope: ScopeConversation, Target: TargetContactID, Ordered: []string{"contactId"}},
	{Scope: ScopeConversation, Target: TargetContactListID, Ordered: []string{"contactListId"}},
	{Scope: ScopeConversation, Target: TargetContactListID, Ordered: []string{"contactlist"}},
}

// Extractor applies a fixed rule table. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	rules []Rule
}

// New returns an Extractor using rules. With no rules it uses DefaultRules.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Extractor{rules: append([]Rule(nil), rules...)}
}

// Extract scans conv and returns whatever identifiers it found. Missing
// identifiers are left empty; Extract never fails.
func (e *Extractor) Extract(conv domain.Conversation) domain.Identifiers {
	var found [2]string

	scan := func(scope Scope, attrs domain.Attributes) {
		scoped := lo.Filter(e.rules, func(r Rule, _ int) bool { return r.Scope == scope })
		for _, attr := range attrs {
			if attr.Value == "" {
				continue
			}
			for _, target := range []Target{TargetContactID, TargetContactListID} {
				if found[target] != "" {
					continue
				}
				if lo.SomeBy(scoped, func(r Rule) bool { return r.Target == target && r.matches(attr.Key) }) {
					found[target] = attr.Value
				}
			}
		}
	}

	for _, p := range conv.Participants {
		scan(ScopeParticipant, p.Attributes)
	}
	scan(ScopeConversation, conv.Attributes)

	return domain.Identifiers{
		ContactID:     found[TargetContactID],
		ContactListID: found[TargetContactListID],
	}
}
