package webhooks

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/marketbill-backend/api/responses"
	asaaswebhook "github.com/angelmondragon/marketbill-backend/internal/webhooks/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
)

const (
	AsaasTokenHeader    = "asaas-access-token"
	maxWebhookBodyBytes = 1 << 20
)

type AsaasWebhookService interface {
	Process(ctx context.Context, evt *asaaswebhook.Event) asaaswebhook.Result
}

type asaasAck struct {
	Received bool `json:"received"`
	asaaswebhook.Result
}

// AsaasWebhook receives gateway events. Every delivery is acknowledged with
// 200 whatever the outcome, so the gateway does not pause the queue or retry.
// When a token is configured, a delivery without the matching token is logged
// and acknowledged as ignored without being processed.
func AsaasWebhook(svc AsaasWebhookService, token string, logg *logger.Logger) http.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if len(expected) > 0 {
			got := []byte(strings.TrimSpace(r.Header.Get(AsaasTokenHeader)))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				logg.Warn(logg.WithField(ctx, "remote_addr", r.RemoteAddr), "ignoring asaas webhook with invalid token")
				responses.WriteSuccess(w, asaasAck{Received: true, Result: asaaswebhook.Result{Outcome: asaaswebhook.OutcomeIgnored, Message: "invalid webhook token"}})
				return
			}
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			logg.Error(ctx, "failed to read asaas webhook body", err)
			responses.WriteSuccess(w, asaasAck{Received: true, Result: asaaswebhook.Result{Outcome: asaaswebhook.OutcomeIgnored, Message: "unreadable body"}})
			return
		}

		evt, err := asaaswebhook.Parse(body)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "discarding malformed asaas webhook")
			responses.WriteSuccess(w, asaasAck{Received: true, Result: asaaswebhook.Result{Outcome: asaaswebhook.OutcomeIgnored, Message: err.Error()}})
			return
		}

		result := svc.Process(ctx, evt)
		responses.WriteSuccess(w, asaasAck{Received: true, Result: result})
	}
}
