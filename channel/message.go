// Package channel implements outbound webhook delivery: it serializes a message
// addressed to a platform user, signs the serialized bytes with the channel's
// shared secret, and POSTs the result to the channel's configured HTTP endpoint.
package channel

import "encoding/json"

// Message is an outbound webhook message. It is serialized exactly once per send;
// the signature header is computed over those exact bytes.
type Message struct {
	// UserID identifies the platform user the message is addressed to
	UserID string

	// Payload is the message content, serialized under the "messagePayload" key
	Payload any

	// Extra holds additional top-level properties to merge into the serialized
	// object, e.g. channel-specific routing fields. Keys in Extra take precedence
	// over the base fields.
	Extra map[string]any
}

func (m Message) MarshalJSON() ([]byte, error) {
	fields := map[string]any{
		"userId":         m.UserID,
		"messagePayload": m.Payload,
	}
	for k, v := range m.Extra {
		fields[k] = v
	}
	return json.Marshal(fields)
}
