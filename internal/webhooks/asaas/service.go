package asaaswebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/internal/payments"
	"github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
)

// Gateway fetches payments whose webhook payload lacks references.
type Gateway interface {
	GetPayment(ctx context.Context, id string, opts ...asaas.CallOption) (*asaas.Payment, json.RawMessage, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type handlerFunc func(ctx context.Context, evt *Event) (Result, error)

type ServiceParams struct {
	Owners        owners.Repository
	Subscriptions subscriptions.Repository
	Payments      payments.Repository
	Sync          *subscriptions.Sync
	Gateway       Gateway
	TxRunner      txRunner
	Outbox        outbox.Emitter
	// Guard is optional; without it redeliveries are processed again.
	Guard   *IdempotencyGuard
	Logger  *logger.Logger
	Metrics *metrics.BillingMetrics
}

// Service routes gateway webhook events to their handlers.
type Service struct {
	resolver resolver
	subs     subscriptions.Repository
	payments payments.Repository
	sync     *subscriptions.Sync
	gateway  Gateway
	tx       txRunner
	outbox   outbox.Emitter
	guard    *IdempotencyGuard
	logg     *logger.Logger
	metrics  *metrics.BillingMetrics
	handlers map[string]handlerFunc
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Owners == nil:
		return nil, fmt.Errorf("owners repository required")
	case params.Subscriptions == nil:
		return nil, fmt.Errorf("subscriptions repository required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payments repository required")
	case params.Sync == nil:
		return nil, fmt.Errorf("subscription sync required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("gateway client required")
	case params.TxRunner == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	s := &Service{
		resolver: resolver{owners: params.Owners, subs: params.Subscriptions},
		subs:     params.Subscriptions,
		payments: params.Payments,
		sync:     params.Sync,
		gateway:  params.Gateway,
		tx:       params.TxRunner,
		outbox:   params.Outbox,
		guard:    params.Guard,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}
	s.handlers = map[string]handlerFunc{
		EventPaymentCreated:      s.handlePayment,
		EventPaymentReceived:     s.handlePayment,
		EventPaymentConfirmed:    s.handlePayment,
		EventPaymentOverdue:      s.handlePayment,
		EventPaymentRefunded:     s.handlePayment,
		EventPaymentCanceled:     s.handlePayment,
		EventSubscriptionDeleted: s.handleSubscriptionDeleted,
		EventSubscriptionRenewed: s.handleSubscriptionRenewed,
		EventSubscriptionUpdated: s.handleSubscriptionUpdated,
	}
	return s, nil
}

// Process handles one delivery. It never returns an error: failures are
// logged and reported in the Result.
func (s *Service) Process(ctx context.Context, evt *Event) Result {
	if evt == nil {
		return Result{Outcome: OutcomeIgnored, Message: "empty event"}
	}
	ctx = s.logg.WithGatewayEvent(ctx, evt.Event, evt.ID)

	handler, ok := s.handlers[evt.Event]
	if !ok {
		s.logg.Warn(ctx, "unhandled gateway webhook event")
		return s.record(evt, Result{Outcome: OutcomeUnhandled, Message: "event " + evt.Event + " is not handled"})
	}

	marked := false
	if s.guard != nil && strings.TrimSpace(evt.ID) != "" {
		seen, err := s.guard.CheckAndMark(ctx, evt.ID)
		switch {
		case err != nil:
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "webhook idempotency check failed, processing anyway")
		case seen:
			s.logg.Info(ctx, "duplicate webhook delivery skipped")
			return s.record(evt, Result{Handled: true, Outcome: OutcomeDuplicate, Message: "event already processed"})
		default:
			marked = true
		}
	}

	res, err := handler(ctx, evt)
	if err != nil {
		s.logg.Error(ctx, "webhook processing failed", err)
		if marked {
			if delErr := s.guard.Delete(context.WithoutCancel(ctx), evt.ID); delErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", delErr.Error()), "failed to clear webhook idempotency mark")
			}
		}
		res = Result{Outcome: OutcomeFailed, Message: err.Error()}
	} else if res.Outcome == OutcomeUnassociated {
		s.logg.Warn(s.logg.WithField(ctx, "reason", res.Message), "webhook event not associated with any subscription")
	}
	return s.record(evt, res)
}

func (s *Service) record(evt *Event, res Result) Result {
	s.metrics.IncWebhookEvent(evt.Event, string(res.Outcome))
	return res
}
