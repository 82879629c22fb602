package subscriptions

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox/payloads"
)

// Sync applies gateway-originated state to local subscriptions. It is shared
// by the webhook router and the reconcile job and never calls the gateway.
type Sync struct {
	repo   Repository
	tx     txRunner
	outbox outbox.Emitter
	logg   *logger.Logger
	now    func() time.Time
}

type SyncParams struct {
	Repo     Repository
	TxRunner txRunner
	Outbox   outbox.Emitter
	Logger   *logger.Logger
	Clock    func() time.Time
}

func NewSync(params SyncParams) (*Sync, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Sync{
		repo:   params.Repo,
		tx:     params.TxRunner,
		outbox: params.Outbox,
		logg:   params.Logger,
		now:    clock,
	}, nil
}

// Apply writes fields onto sub and emits a status change when the status
// moves. A nil tx runs in a new transaction. sub is updated in place.
func (s *Sync) Apply(ctx context.Context, tx *gorm.DB, sub *models.Subscription, fields map[string]any, source, trigger string) error {
	if len(fields) == 0 {
		return nil
	}
	write := func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, sub.ID, fields); err != nil {
			return err
		}
		status, ok := fields["status"].(enums.SubscriptionStatus)
		if !ok || status == sub.Status {
			return nil
		}
		previous := sub.Status
		sub.Status = status
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionStatusChanged,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   sub.ID,
			Source:        source,
			Data: payloads.SubscriptionStatusChangedEvent{
				SubscriptionID: sub.ID,
				OwnerKind:      sub.OwnerKind,
				OwnerID:        sub.OwnerID,
				ExternalID:     sub.External(),
				PreviousStatus: previous,
				Status:         status,
				Trigger:        trigger,
			},
		})
	}
	if tx != nil {
		return write(tx)
	}
	return s.tx.WithTx(ctx, write)
}

// MarkDeleted deactivates and soft-deletes the subscription with the given
// gateway id. It reports false when the row is unknown or already deleted.
func (s *Sync) MarkDeleted(ctx context.Context, externalID, source, trigger string) (bool, error) {
	sub, err := s.repo.FindByExternalID(ctx, externalID, true)
	if err != nil {
		return false, err
	}
	if sub == nil || sub.DeletedAt.Valid {
		return false, nil
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SoftDelete(ctx, sub.ID, enums.SubscriptionStatusInactive, now); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCanceled,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   sub.ID,
			Source:        source,
			Data: payloads.SubscriptionCanceledEvent{
				SubscriptionID: sub.ID,
				OwnerKind:      sub.OwnerKind,
				OwnerID:        sub.OwnerID,
				ExternalID:     externalID,
				CanceledAt:     now,
				Trigger:        trigger,
			},
		})
	})
	if err != nil {
		return false, err
	}
	s.logg.Info(s.logg.WithField(ctx, "subscription_id", sub.ID.String()), "subscription deleted at gateway")
	return true, nil
}
