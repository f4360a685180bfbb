package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attribute is one key/value pair of an upstream attribute map. Value is empty
// when the upstream value was not a JSON string.
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps an upstream attribute map in JSON document order so that
// scans over it are deterministic.
type Attributes []Attribute

// UnmarshalJSON decodes a JSON object preserving key order. Anything other
// than an object decodes to an empty list.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("domain: decode attributes: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		*a = nil
		return nil
	}

	var out Attributes
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("domain: decode attribute key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("domain: decode attribute %q: %w", key, err)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = ""
		}
		out = append(out, Attribute{Key: key, Value: value})
	}
	*a = out
	return nil
}
