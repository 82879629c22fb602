package outbox

import (
	"encoding/json"
	"time"
)

// Event sources recorded on the envelope.
const (
	SourceAPI     = "api"
	SourceWebhook = "webhook"
	SourceCron    = "cron"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Source     string          `json:"source,omitempty"`
	Data       json.RawMessage `json:"data"`
}
