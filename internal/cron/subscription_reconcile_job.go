package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
)

const defaultReconcileLimit = 200

type reconcileGateway interface {
	GetSubscription(ctx context.Context, id string, opts ...asaas.CallOption) (*asaas.Subscription, error)
}

type reconcileRepo interface {
	ListReconcilable(ctx context.Context, limit int) ([]models.Subscription, error)
}

type reconcileSyncer interface {
	Apply(ctx context.Context, tx *gorm.DB, sub *models.Subscription, fields map[string]any, source, trigger string) error
	MarkDeleted(ctx context.Context, externalID, source, trigger string) (bool, error)
}

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger  *logger.Logger
	Repo    reconcileRepo
	Gateway reconcileGateway
	Sync    reconcileSyncer
	Limit   int
	Clock   func() time.Time
}

// NewSubscriptionReconcileJob builds a job that pulls gateway state for live
// subscriptions and repairs drift missed by webhooks.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Sync == nil {
		return nil, fmt.Errorf("subscription sync required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &subscriptionReconcileJob{
		logg:  params.Logger,
		repo:  params.Repo,
		gw:    params.Gateway,
		sync:  params.Sync,
		limit: limit,
		now:   clock,
	}, nil
}

type subscriptionReconcileJob struct {
	logg  *logger.Logger
	repo  reconcileRepo
	gw    reconcileGateway
	sync  reconcileSyncer
	limit int
	now   func() time.Time
}

func (j *subscriptionReconcileJob) Name() string { return "subscription-reconcile" }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	subs, err := j.repo.ListReconcilable(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("list reconcilable subscriptions: %w", err)
	}

	var errs error
	updated, deleted := 0, 0
	for i := range subs {
		sub := &subs[i]
		changed, removed, err := j.reconcile(ctx, sub)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		if removed {
			deleted++
		} else if changed {
			updated++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"checked": len(subs),
		"updated": updated,
		"deleted": deleted,
		"failed":  len(multierr.Errors(errs)),
	}), "subscription reconcile complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcile(ctx context.Context, sub *models.Subscription) (changed, removed bool, err error) {
	externalID := sub.External()
	gw, err := j.gw.GetSubscription(ctx, externalID)
	if err != nil && asaas.Classify(err) != asaas.ErrorKindNotFound {
		return false, false, err
	}
	if err != nil || gw.Deleted {
		removed, err = j.sync.MarkDeleted(ctx, externalID, outbox.SourceCron, "reconcile_deleted")
		return false, removed, err
	}

	fields := driftFields(sub, gw)
	changed = len(fields) > 0
	// touch rows without drift so the next run moves on to older ones
	fields["updated_at"] = j.now().UTC()
	if err := j.sync.Apply(ctx, nil, sub, fields, outbox.SourceCron, "reconcile"); err != nil {
		return false, false, err
	}
	return changed, false, nil
}

// driftFields returns only the columns whose gateway value differs from the
// local row. A gateway ACTIVE never promotes a pending row; activation comes
// from a confirmed payment.
func driftFields(sub *models.Subscription, gw *asaas.Subscription) map[string]any {
	fields := map[string]any{}
	if gw.Status != "" {
		status := format.GatewayStatusToLocal(gw.Status)
		promotesPending := sub.Status == enums.SubscriptionStatusPending && status == enums.SubscriptionStatusActive
		if status != sub.Status && !promotesPending {
			fields["status"] = status
		}
	}
	if due, err := format.ParseDate(gw.NextDueDate); err == nil && !sameDay(due, sub.NextDueDate) {
		fields["next_due_date"] = due
	}
	if cycle, ok := format.NormalizeCycle(gw.Cycle); ok && cycle != sub.Cycle {
		fields["cycle"] = cycle
	}
	if value := gw.Value.Decimal(); value.IsPositive() && !value.Equal(sub.Value) {
		fields["value"] = value
	}
	return fields
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
