package webhook

import (
	"encoding/json"
	"strings"
	"time"
)

// Event is a verified inbound delivery. It lives for one HTTP call; durable
// state is carried exclusively by the store.
type Event struct {
	ID         string
	Type       string
	OccurredAt time.Time
	Object     json.RawMessage
}

// ParseEvent decodes the provider event envelope from the raw payload bytes.
// Call only after signature verification; an undecodable body at this point
// is a malformed event, not an authentication problem.
func ParseEvent(payload []byte) (*Event, error) {
	var raw struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Created int64  `json:"created"`
		Data    struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &MalformedEventError{Reason: "invalid JSON payload"}
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, &MalformedEventError{Reason: "missing event type"}
	}

	occurredAt := time.Now().UTC()
	if raw.Created > 0 {
		occurredAt = time.Unix(raw.Created, 0).UTC()
	}
	return &Event{
		ID:         strings.TrimSpace(raw.ID),
		Type:       strings.TrimSpace(raw.Type),
		OccurredAt: occurredAt,
		Object:     raw.Data.Object,
	}, nil
}
