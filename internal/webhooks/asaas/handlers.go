package asaaswebhook

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/internal/payments"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox/payloads"
)

func (s *Service) handlePayment(ctx context.Context, evt *Event) (Result, error) {
	p, err := evt.payment()
	if err != nil {
		return Result{}, err
	}
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return Result{Outcome: OutcomeIgnored, Message: "payment object missing"}, nil
	}
	raw := evt.Payment

	if strings.TrimSpace(p.Customer) == "" && strings.TrimSpace(p.Subscription) == "" {
		fetched, fetchedRaw, err := s.gateway.GetPayment(ctx, p.ID)
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(fetched.Status) == "" {
			fetched.Status = p.Status
		}
		p, raw = fetched, fetchedRaw
	}
	ctx = s.logg.WithField(ctx, "payment_id", p.ID)

	sub, via, err := s.resolver.resolve(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if sub == nil {
		return unassociated("no seller or shopper matched payment " + p.ID), nil
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"subscription_id": sub.ID.String(),
		"resolved_by":     string(via),
	})

	row := payments.FromGateway(p, raw, payments.OwnerOf(sub))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stored, err := s.payments.WithTx(tx).Upsert(ctx, row)
		if err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentStatusChanged,
			AggregateType: enums.AggregatePayment,
			AggregateID:   stored.ID,
			Source:        outbox.SourceWebhook,
			Data: payloads.PaymentStatusChangedEvent{
				PaymentID:  stored.ID,
				ExternalID: stored.ExternalID,
				OwnerType:  stored.OwnerType,
				OwnerID:    stored.OwnerID,
				Status:     stored.Status,
				Value:      stored.Value,
				DueDate:    p.DueDate,
				Event:      evt.Event,
			},
		}); err != nil {
			return err
		}
		if sub.DeletedAt.Valid {
			return nil
		}
		return s.sync.Apply(ctx, tx, sub, subscriptionFieldsForPayment(row), outbox.SourceWebhook, strings.ToLower(evt.Event))
	})
	if err != nil {
		return Result{}, err
	}
	s.logg.Info(ctx, "payment synced from webhook")
	return processed("payment " + p.ID + " is " + string(row.Status)), nil
}

// subscriptionFieldsForPayment derives the owning subscription's update from
// a payment status. A confirmed charge also advances next_due_date.
func subscriptionFieldsForPayment(p *models.Payment) map[string]any {
	status, ok := p.Status.SubscriptionStatus()
	if !ok {
		return nil
	}
	fields := map[string]any{"status": status}
	if p.Status == enums.PaymentStatusConfirmed && p.DueDate != nil {
		fields["next_due_date"] = *p.DueDate
	}
	return fields
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, evt *Event) (Result, error) {
	gw, err := evt.subscription()
	if err != nil {
		return Result{}, err
	}
	if gw == nil || strings.TrimSpace(gw.ID) == "" {
		return Result{Outcome: OutcomeIgnored, Message: "subscription object missing"}, nil
	}
	applied, err := s.sync.MarkDeleted(ctx, gw.ID, outbox.SourceWebhook, "gateway_deleted")
	if err != nil {
		return Result{}, err
	}
	if !applied {
		return Result{Handled: true, Outcome: OutcomeNoop, Message: "subscription " + gw.ID + " already deleted or unknown"}, nil
	}
	return processed("subscription " + gw.ID + " deleted"), nil
}

func (s *Service) handleSubscriptionRenewed(ctx context.Context, evt *Event) (Result, error) {
	return s.syncSubscription(ctx, evt, renewedFields)
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, evt *Event) (Result, error) {
	return s.syncSubscription(ctx, evt, updatedFields)
}

func (s *Service) syncSubscription(ctx context.Context, evt *Event, fieldsFor func(*asaas.Subscription) map[string]any) (Result, error) {
	gw, err := evt.subscription()
	if err != nil {
		return Result{}, err
	}
	if gw == nil || strings.TrimSpace(gw.ID) == "" {
		return Result{Outcome: OutcomeIgnored, Message: "subscription object missing"}, nil
	}
	sub, err := s.subs.FindByExternalID(ctx, gw.ID, false)
	if err != nil {
		return Result{}, err
	}
	if sub == nil {
		return unassociated("no live subscription for " + gw.ID), nil
	}
	fields := fieldsFor(gw)
	if len(fields) == 0 {
		return Result{Handled: true, Outcome: OutcomeNoop, Message: "nothing to update"}, nil
	}
	ctx = s.logg.WithField(ctx, "subscription_id", sub.ID.String())
	if err := s.sync.Apply(ctx, nil, sub, fields, outbox.SourceWebhook, strings.ToLower(evt.Event)); err != nil {
		return Result{}, err
	}
	return processed("subscription " + gw.ID + " synced"), nil
}

// renewedFields refreshes the schedule only.
func renewedFields(gw *asaas.Subscription) map[string]any {
	fields := map[string]any{}
	if due, err := format.ParseDate(gw.NextDueDate); err == nil {
		fields["next_due_date"] = due
	}
	if cycle, ok := format.NormalizeCycle(gw.Cycle); ok {
		fields["cycle"] = cycle
	}
	return fields
}

// updatedFields overwrites local state with the gateway's. The last event to
// arrive wins.
func updatedFields(gw *asaas.Subscription) map[string]any {
	fields := renewedFields(gw)
	if value := gw.Value.Decimal(); value.IsPositive() {
		fields["value"] = value
	}
	if status := strings.TrimSpace(gw.Status); status != "" {
		if strings.EqualFold(status, "ACTIVE") {
			fields["status"] = enums.SubscriptionStatusActive
		} else {
			fields["status"] = enums.SubscriptionStatusInactive
		}
	}
	if bt, err := enums.ParseBillingType(gw.BillingType); err == nil {
		fields["billing_type"] = bt
	}
	return fields
}
