package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
)

var reconcileNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type stubReconcileRepo struct {
	subs  []models.Subscription
	limit int
}

func (s *stubReconcileRepo) ListReconcilable(_ context.Context, limit int) ([]models.Subscription, error) {
	s.limit = limit
	return s.subs, nil
}

type stubReconcileGateway struct {
	subs map[string]*asaas.Subscription
	errs map[string]error
}

func (s *stubReconcileGateway) GetSubscription(_ context.Context, id string, _ ...asaas.CallOption) (*asaas.Subscription, error) {
	if err := s.errs[id]; err != nil {
		return nil, err
	}
	return s.subs[id], nil
}

type appliedCall struct {
	externalID string
	fields     map[string]any
	trigger    string
}

type stubSyncer struct {
	applied []appliedCall
	deleted []string
}

func (s *stubSyncer) Apply(_ context.Context, _ *gorm.DB, sub *models.Subscription, fields map[string]any, source, trigger string) error {
	if source != outbox.SourceCron {
		return errors.New("unexpected source " + source)
	}
	s.applied = append(s.applied, appliedCall{externalID: sub.External(), fields: fields, trigger: trigger})
	return nil
}

func (s *stubSyncer) MarkDeleted(_ context.Context, externalID, _, _ string) (bool, error) {
	s.deleted = append(s.deleted, externalID)
	return true, nil
}

func localSub(externalID string, status enums.SubscriptionStatus) models.Subscription {
	return models.Subscription{
		ID:          uuid.New(),
		OwnerKind:   enums.OwnerKindShopper,
		OwnerID:     uuid.New(),
		ExternalID:  &externalID,
		Value:       decimal.RequireFromString("99.90"),
		Status:      status,
		Cycle:       enums.BillingCycleMonthly,
		BillingType: enums.BillingTypeBoleto,
		NextDueDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newReconcileJob(t *testing.T, repo *stubReconcileRepo, gw *stubReconcileGateway, sync *stubSyncer) Job {
	t.Helper()
	job, err := NewSubscriptionReconcileJob(SubscriptionReconcileJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		Repo:    repo,
		Gateway: gw,
		Sync:    sync,
		Clock:   func() time.Time { return reconcileNow },
	})
	require.NoError(t, err)
	return job
}

func TestReconcileAppliesDrift(t *testing.T) {
	repo := &stubReconcileRepo{subs: []models.Subscription{localSub("sub_1", enums.SubscriptionStatusActive)}}
	gw := &stubReconcileGateway{subs: map[string]*asaas.Subscription{
		"sub_1": {
			ID:          "sub_1",
			Status:      "OVERDUE",
			NextDueDate: "2025-07-10",
			Cycle:       "QUARTERLY",
			Value:       asaas.NewAmount(decimal.RequireFromString("120.00")),
		},
	}}
	sync := &stubSyncer{}

	require.NoError(t, newReconcileJob(t, repo, gw, sync).Run(context.Background()))

	assert.Equal(t, defaultReconcileLimit, repo.limit)
	require.Len(t, sync.applied, 1)
	fields := sync.applied[0].fields
	assert.Equal(t, enums.SubscriptionStatusOverdue, fields["status"])
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), fields["next_due_date"])
	assert.Equal(t, enums.BillingCycleQuarterly, fields["cycle"])
	assert.True(t, decimal.RequireFromString("120").Equal(fields["value"].(decimal.Decimal)))
	assert.Equal(t, reconcileNow, fields["updated_at"])
	assert.Equal(t, "reconcile", sync.applied[0].trigger)
}

func TestReconcileOnlyTouchesRowsWithoutDrift(t *testing.T) {
	repo := &stubReconcileRepo{subs: []models.Subscription{localSub("sub_1", enums.SubscriptionStatusActive)}}
	gw := &stubReconcileGateway{subs: map[string]*asaas.Subscription{
		"sub_1": {ID: "sub_1", Status: "ACTIVE", NextDueDate: "2025-06-10", Cycle: "MONTHLY", Value: asaas.NewAmount(decimal.RequireFromString("99.9"))},
	}}
	sync := &stubSyncer{}

	require.NoError(t, newReconcileJob(t, repo, gw, sync).Run(context.Background()))

	require.Len(t, sync.applied, 1)
	assert.Equal(t, map[string]any{"updated_at": reconcileNow}, sync.applied[0].fields)
}

func TestReconcileNeverActivatesPendingRows(t *testing.T) {
	repo := &stubReconcileRepo{subs: []models.Subscription{localSub("sub_1", enums.SubscriptionStatusPending)}}
	gw := &stubReconcileGateway{subs: map[string]*asaas.Subscription{
		"sub_1": {ID: "sub_1", Status: "ACTIVE", NextDueDate: "2025-06-10", Cycle: "MONTHLY"},
	}}
	sync := &stubSyncer{}

	require.NoError(t, newReconcileJob(t, repo, gw, sync).Run(context.Background()))

	require.Len(t, sync.applied, 1)
	assert.NotContains(t, sync.applied[0].fields, "status")
}

func TestReconcileMarksDeletedSubscriptions(t *testing.T) {
	repo := &stubReconcileRepo{subs: []models.Subscription{
		localSub("sub_gone", enums.SubscriptionStatusActive),
		localSub("sub_flagged", enums.SubscriptionStatusOverdue),
	}}
	gw := &stubReconcileGateway{
		subs: map[string]*asaas.Subscription{"sub_flagged": {ID: "sub_flagged", Deleted: true}},
		errs: map[string]error{"sub_gone": &asaas.APIError{Status: 404, Message: "not found"}},
	}
	sync := &stubSyncer{}

	require.NoError(t, newReconcileJob(t, repo, gw, sync).Run(context.Background()))

	assert.Equal(t, []string{"sub_gone", "sub_flagged"}, sync.deleted)
	assert.Empty(t, sync.applied)
}

func TestReconcileAggregatesRowErrors(t *testing.T) {
	repo := &stubReconcileRepo{subs: []models.Subscription{
		localSub("sub_1", enums.SubscriptionStatusActive),
		localSub("sub_2", enums.SubscriptionStatusActive),
		localSub("sub_3", enums.SubscriptionStatusActive),
	}}
	gw := &stubReconcileGateway{
		subs: map[string]*asaas.Subscription{"sub_2": {ID: "sub_2", Status: "ACTIVE"}},
		errs: map[string]error{
			"sub_1": &asaas.APIError{Status: 503, Message: "unavailable"},
			"sub_3": errors.New("connection reset"),
		},
	}
	sync := &stubSyncer{}

	err := newReconcileJob(t, repo, gw, sync).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, err.Error(), "connection reset")
	require.Len(t, sync.applied, 1)
	assert.Equal(t, "sub_2", sync.applied[0].externalID)
}
