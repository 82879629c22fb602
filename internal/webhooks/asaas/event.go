package asaaswebhook

import (
	"encoding/json"
	"strings"

	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
)

const (
	EventPaymentCreated      = "PAYMENT_CREATED"
	EventPaymentReceived     = "PAYMENT_RECEIVED"
	EventPaymentConfirmed    = "PAYMENT_CONFIRMED"
	EventPaymentOverdue      = "PAYMENT_OVERDUE"
	EventPaymentRefunded     = "PAYMENT_REFUNDED"
	EventPaymentCanceled     = "PAYMENT_CANCELED"
	EventSubscriptionDeleted = "SUBSCRIPTION_DELETED"
	EventSubscriptionRenewed = "SUBSCRIPTION_RENEWED"
	EventSubscriptionUpdated = "SUBSCRIPTION_UPDATED"
)

// statusByEvent fills in the payment status when the payload omits it.
var statusByEvent = map[string]string{
	EventPaymentCreated:   "PENDING",
	EventPaymentReceived:  "RECEIVED",
	EventPaymentConfirmed: "CONFIRMED",
	EventPaymentOverdue:   "OVERDUE",
	EventPaymentRefunded:  "REFUNDED",
	EventPaymentCanceled:  "CANCELED",
}

// Event is one gateway webhook delivery. Nested objects are kept raw so the
// payment snapshot can be stored as received.
type Event struct {
	ID           string          `json:"id"`
	Event        string          `json:"event"`
	DateCreated  string          `json:"dateCreated"`
	Payment      json.RawMessage `json:"payment"`
	Subscription json.RawMessage `json:"subscription"`
}

// Parse decodes a webhook body.
func Parse(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload")
	}
	evt.Event = strings.ToUpper(strings.TrimSpace(evt.Event))
	if evt.Event == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event name is required")
	}
	return &evt, nil
}

func (e *Event) payment() (*asaas.Payment, error) {
	if isEmptyJSON(e.Payment) {
		return nil, nil
	}
	var p asaas.Payment
	if err := json.Unmarshal(e.Payment, &p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment object")
	}
	if strings.TrimSpace(p.Status) == "" {
		p.Status = statusByEvent[e.Event]
	}
	return &p, nil
}

func (e *Event) subscription() (*asaas.Subscription, error) {
	if isEmptyJSON(e.Subscription) {
		return nil, nil
	}
	var s asaas.Subscription
	if err := json.Unmarshal(e.Subscription, &s); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription object")
	}
	return &s, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
