package subscriptions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/internal/customers"
	"github.com/angelmondragon/marketbill-backend/internal/orders"
	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/marketbill-backend/pkg/pagination"
	"github.com/angelmondragon/marketbill-backend/pkg/redis"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// Gateway is the subset of the payment gateway client used for subscriptions.
type Gateway interface {
	CreateSubscription(ctx context.Context, req asaas.SubscriptionRequest, opts ...asaas.CallOption) (*asaas.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, req asaas.SubscriptionUpdateRequest, opts ...asaas.CallOption) (*asaas.Subscription, error)
	DeleteSubscription(ctx context.Context, id string, opts ...asaas.CallOption) (*asaas.DeleteResponse, error)
}

type customerService interface {
	EnsureCustomer(ctx context.Context, owner *owners.Owner, billing types.BillingInfo) (string, error)
	Recreate(ctx context.Context, owner *owners.Owner, billing types.BillingInfo) (string, error)
	Repair(ctx context.Context, owner *owners.Owner, billing types.BillingInfo, customerID string, creditCard bool) (*customers.RepairResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lockStore interface {
	redis.LockStore
	LockKey(scope, id string) string
}

// ownerStrategy captures what differs between seller and shopper subscriptions.
type ownerStrategy interface {
	kind() enums.OwnerKind
	targetName() string
	resolve(ctx context.Context, target uuid.UUID, in CreateInput) (*createTarget, error)
	findExisting(ctx context.Context, repo Repository, t *createTarget) (bool, error)
}

type createTarget struct {
	owner   *owners.Owner
	orderID *uuid.UUID
	value   decimal.Decimal
	cycle   string
	name    string
	lockID  string
}

type ServiceParams struct {
	Repo      Repository
	Owners    owners.Repository
	Orders    orders.Repository
	Customers customerService
	Gateway   Gateway
	TxRunner  txRunner
	Outbox    outbox.Emitter
	// Locks is optional; without it only the unique index guards creation.
	Locks   lockStore
	LockTTL time.Duration
	Logger  *logger.Logger
	Metrics *metrics.BillingMetrics
	Clock   func() time.Time
}

// Service runs the subscription lifecycle for one owner kind.
type Service struct {
	strategy  ownerStrategy
	repo      Repository
	customers customerService
	gateway   Gateway
	tx        txRunner
	outbox    outbox.Emitter
	locks     lockStore
	lockTTL   time.Duration
	logg      *logger.Logger
	metrics   *metrics.BillingMetrics
	now       func() time.Time
}

// NewSellerService builds the lifecycle service for seller subscriptions.
func NewSellerService(params ServiceParams) (*Service, error) {
	if params.Owners == nil {
		return nil, fmt.Errorf("owners repository required")
	}
	return newService(params, sellerStrategy{owners: params.Owners})
}

// NewShopperService builds the lifecycle service for order-backed shopper subscriptions.
func NewShopperService(params ServiceParams) (*Service, error) {
	if params.Owners == nil {
		return nil, fmt.Errorf("owners repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return newService(params, shopperStrategy{owners: params.Owners, orders: params.Orders})
}

func newService(params ServiceParams, strategy ownerStrategy) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
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
	return &Service{
		strategy:  strategy,
		repo:      params.Repo,
		customers: params.Customers,
		gateway:   params.Gateway,
		tx:        params.TxRunner,
		outbox:    params.Outbox,
		locks:     params.Locks,
		lockTTL:   params.LockTTL,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       clock,
	}, nil
}

// Kind reports which owner kind the service manages.
func (s *Service) Kind() enums.OwnerKind {
	return s.strategy.kind()
}

// Create provisions the gateway subscription and persists it locally. target
// is the seller id or the order id depending on the service.
func (s *Service) Create(ctx context.Context, target uuid.UUID, in CreateInput) (*CreateResult, error) {
	return s.create(ctx, nil, target, in)
}

// CreateWithTx is Create with the local write joined to the caller's transaction.
func (s *Service) CreateWithTx(ctx context.Context, tx *gorm.DB, target uuid.UUID, in CreateInput) (*CreateResult, error) {
	return s.create(ctx, tx, target, in)
}

func (s *Service) create(ctx context.Context, tx *gorm.DB, target uuid.UUID, in CreateInput) (*CreateResult, error) {
	if target == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, s.strategy.targetName()+" is required")
	}

	t, err := s.strategy.resolve(ctx, target, in)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOwner(ctx, string(t.owner.Kind), t.owner.ID.String())

	release, err := s.acquire(ctx, t.lockID)
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := s.strategy.findExisting(ctx, s.repo.WithTx(tx), t)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing subscription")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active subscription already exists for this "+strings.TrimSuffix(s.strategy.targetName(), " id"))
	}

	taxID, err := customers.ResolveTaxID(t.owner, in.Billing)
	if err != nil {
		return nil, err
	}

	// The payload is built before the customer is touched so that every input
	// rejection happens without a gateway call. Only the customer id is
	// filled in afterwards.
	built, err := Build(BuildInput{
		Plan: PlanData{
			Name:        t.name,
			Description: in.Description,
			Value:       t.value,
			Cycle:       t.cycle,
			EndDate:     in.EndDate,
			MaxPayments: in.MaxPayments,
			Discount:    in.Discount,
			Interest:    in.Interest,
			Fine:        in.Fine,
			Split:       in.Split,
		},
		Billing: in.Billing,
		Owner:   t.owner,
		TaxID:   taxID,
		Now:     s.now(),
	})
	if err != nil {
		return nil, buildFailure(err)
	}

	customerID, err := s.ensureCustomer(ctx, t.owner, in.Billing)
	if err != nil {
		return nil, err
	}
	built.Request.Customer = customerID

	gw, req, err := s.createAtGateway(ctx, t, in.Billing, built)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithField(ctx, "external_id", gw.ID)

	sub, err := s.persistCreated(ctx, tx, t, built, req.Customer, gw, in.Metadata)
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "subscription created")
	return &CreateResult{Subscription: sub, Gateway: gw}, nil
}

// ensureCustomer retries reconciliation once when the gateway had not yet
// shown an aligned tax id.
func (s *Service) ensureCustomer(ctx context.Context, owner *owners.Owner, billing types.BillingInfo) (string, error) {
	customerID, err := s.customers.EnsureCustomer(ctx, owner, billing)
	if !pkgerrors.Is(err, pkgerrors.CodeConsistency) {
		return customerID, err
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "customer not yet consistent; retrying once")
	return s.customers.EnsureCustomer(ctx, owner, billing)
}

func (s *Service) acquire(ctx context.Context, id string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	lock, err := redis.NewLock(s.locks, s.locks.LockKey("subscription_create:"+string(s.strategy.kind()), id), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build create lock")
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire create lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription creation already in progress")
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release create lock failed")
		}
	}, nil
}

// createAtGateway calls the gateway and applies the bounded self-heal policy
// on rejection. It returns the request that finally succeeded.
func (s *Service) createAtGateway(ctx context.Context, t *createTarget, billing types.BillingInfo, built *BuiltPayload) (*asaas.Subscription, asaas.SubscriptionRequest, error) {
	req := built.Request
	if req.CreditCardHolderInfo != nil {
		holder := *req.CreditCardHolderInfo
		req.CreditCardHolderInfo = &holder
	}
	creditCard := built.BillingType == enums.BillingTypeCreditCard

	policy := &healPolicy{}
	lastStep := healGiveUp
	for {
		gw, err := s.gateway.CreateSubscription(ctx, req)
		if err == nil {
			if lastStep != healGiveUp {
				s.metrics.IncSelfHeal(lastStep.String(), "success")
			}
			return gw, req, nil
		}

		kind := asaas.Classify(err)
		step := policy.next(kind)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"error_kind": kind.String(),
			"heal_step":  step.String(),
			"error":      err.Error(),
		}), "gateway rejected subscription create")

		if step == healRepairCustomer {
			res, repairErr := s.customers.Repair(ctx, t.owner, billing, req.Customer, creditCard)
			if repairErr != nil {
				return nil, req, repairErr
			}
			if res.Repaired {
				if req.CreditCardHolderInfo != nil && res.Customer != nil {
					req.CreditCardHolderInfo.CpfCnpj = res.Customer.TaxIDDigits()
				}
			} else {
				step = policy.escalate()
			}
		}

		switch step {
		case healGiveUp:
			if lastStep != healGiveUp {
				s.metrics.IncSelfHeal(lastStep.String(), "failure")
			}
			payload, _ := req.Payload()
			return nil, req, asaas.ToAppError(err, payload)
		case healRecreateCustomer, healLastResortRecreate:
			customerID, recreateErr := s.customers.Recreate(ctx, t.owner, billing)
			if recreateErr != nil {
				s.metrics.IncSelfHeal(step.String(), "failure")
				return nil, req, recreateErr
			}
			req.Customer = customerID
		}
		lastStep = step
	}
}

func (s *Service) persistCreated(ctx context.Context, tx *gorm.DB, t *createTarget, built *BuiltPayload, customerID string, gw *asaas.Subscription, extra map[string]any) (*models.Subscription, error) {
	meta := map[string]any{}
	for k, v := range extra {
		meta[k] = v
	}
	meta["gateway_customer_id"] = customerID
	meta["gateway_subscription_id"] = gw.ID
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, s.orphaned(ctx, gw.ID, customerID, err)
	}

	now := s.now().UTC()
	externalID := gw.ID
	sub := &models.Subscription{
		OwnerKind:   t.owner.Kind,
		OwnerID:     t.owner.ID,
		OrderID:     t.orderID,
		ExternalID:  &externalID,
		Name:        types.FirstNonEmpty(t.name, built.Request.Description, "Subscription"),
		Value:       built.Request.Value.Decimal(),
		Status:      enums.SubscriptionStatusPending,
		Cycle:       built.Cycle,
		BillingType: built.BillingType,
		NextDueDate: built.NextDueDate,
		StartDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		EndDate:     built.EndDate,
		Metadata:    datatypes.JSON(rawMeta),
	}

	write := func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, sub); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCreated,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   sub.ID,
			Source:        outbox.SourceAPI,
			Data: payloads.SubscriptionCreatedEvent{
				SubscriptionID:    sub.ID,
				OwnerKind:         sub.OwnerKind,
				OwnerID:           sub.OwnerID,
				OrderID:           sub.OrderID,
				ExternalID:        externalID,
				GatewayCustomerID: customerID,
				Value:             sub.Value,
				Cycle:             sub.Cycle,
				BillingType:       sub.BillingType,
				NextDueDate:       built.Request.NextDueDate,
			},
		})
	}

	if tx != nil {
		err = write(tx)
	} else {
		err = s.tx.WithTx(ctx, write)
	}
	if err == nil {
		return sub, nil
	}

	if db.IsUniqueViolation(err, "") {
		return nil, s.compensateDuplicate(ctx, gw.ID, customerID, err)
	}
	return nil, s.orphaned(ctx, gw.ID, customerID, err)
}

// compensateDuplicate cancels a gateway subscription that lost the race for
// the order's unique slot.
func (s *Service) compensateDuplicate(ctx context.Context, externalID, customerID string, cause error) error {
	s.logg.Warn(ctx, "duplicate subscription detected after gateway create, cancelling gateway subscription")
	if _, err := s.gateway.DeleteSubscription(context.WithoutCancel(ctx), externalID); err != nil {
		return s.orphaned(ctx, externalID, customerID, err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "an active subscription already exists for this "+strings.TrimSuffix(s.strategy.targetName(), " id"))
}

func (s *Service) orphaned(ctx context.Context, externalID, customerID string, cause error) error {
	s.logg.Error(ctx, "gateway subscription created but not persisted", cause)
	return pkgerrors.Wrap(pkgerrors.CodeOrphaned, cause, "gateway subscription created but could not be saved").
		WithDetails(map[string]string{
			"external_id": externalID,
			"customer_id": customerID,
		})
}

// Update changes local fields and, for gateway-backed rows, the gateway
// subscription first. A gateway failure leaves the local row untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Subscription, error) {
	sub, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, gwReq, err := s.updateFields(in)
	if err != nil {
		return nil, err
	}

	if sub.External() != "" && !gwReq.IsEmpty() {
		gw, err := s.gateway.UpdateSubscription(ctx, sub.External(), gwReq)
		if err != nil {
			return nil, asaas.ToAppError(err, gwReq)
		}
		if gw != nil && strings.TrimSpace(gw.Status) != "" {
			fields["status"] = format.GatewayStatusToLocal(gw.Status)
		}
	}
	if len(fields) == 0 {
		return sub, nil
	}

	previous := sub.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, sub.ID, fields); err != nil {
			return err
		}
		if status, ok := fields["status"].(enums.SubscriptionStatus); ok && status != previous {
			return s.emitStatusChanged(ctx, tx, sub, previous, status, "api_update")
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update subscription")
	}
	return s.mustFind(ctx, id)
}

func (s *Service) updateFields(in UpdateInput) (map[string]any, asaas.SubscriptionUpdateRequest, error) {
	fields := map[string]any{}
	var req asaas.SubscriptionUpdateRequest

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, req, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = name
		req.Description = name
	}
	if in.Description != nil {
		req.Description = strings.TrimSpace(*in.Description)
	}
	if in.Value != nil {
		if !in.Value.IsPositive() {
			return nil, req, pkgerrors.New(pkgerrors.CodeValidation, "subscription value must be greater than zero")
		}
		value := in.Value.Round(2)
		amount := asaas.NewAmount(value)
		fields["value"] = value
		req.Value = &amount
	}
	if in.NextDueDate != nil {
		due, err := format.ParseDate(*in.NextDueDate)
		if err != nil {
			return nil, req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "next due date is invalid")
		}
		fields["next_due_date"] = due
		req.NextDueDate = due.Format(format.DateLayout)
	}
	if in.Cycle != nil {
		cycle, ok := ResolveCycle(*in.Cycle)
		if !ok {
			return nil, req, pkgerrors.New(pkgerrors.CodeValidation, "billing cycle is invalid")
		}
		fields["cycle"] = cycle
		req.Cycle = string(cycle)
	}
	if in.EndDate != nil {
		end, err := format.ParseDate(*in.EndDate)
		if err != nil {
			return nil, req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "end date is invalid")
		}
		fields["end_date"] = end
		req.EndDate = end.Format(format.DateLayout)
	}
	if in.MaxPayments != nil {
		if *in.MaxPayments <= 0 {
			return nil, req, pkgerrors.New(pkgerrors.CodeValidation, "max payments must be positive")
		}
		req.MaxPayments = in.MaxPayments
	}
	if in.BillingType != nil {
		bt, err := enums.ParseBillingType(*in.BillingType)
		if err != nil {
			return nil, req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing type must be PIX, BOLETO or CREDIT_CARD")
		}
		fields["billing_type"] = bt
		req.BillingType = string(bt)
	}
	if in.Status != nil {
		status, err := enums.ParseSubscriptionStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if err != nil {
			return nil, req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status is invalid")
		}
		fields["status"] = status
	}
	return fields, req, nil
}

// Delete cancels the gateway subscription, then soft-deletes the local row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sub, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if ext := sub.External(); ext != "" {
		if _, err := s.gateway.DeleteSubscription(ctx, ext); err != nil {
			return asaas.ToAppError(err, nil)
		}
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SoftDelete(ctx, sub.ID, enums.SubscriptionStatusCanceled, now); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCanceled,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   sub.ID,
			Source:        outbox.SourceAPI,
			Data: payloads.SubscriptionCanceledEvent{
				SubscriptionID: sub.ID,
				OwnerKind:      sub.OwnerKind,
				OwnerID:        sub.OwnerID,
				ExternalID:     sub.External(),
				CanceledAt:     now,
				Trigger:        "api_delete",
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete subscription")
	}
	s.logg.Info(s.logg.WithField(ctx, "subscription_id", sub.ID.String()), "subscription canceled")
	return nil
}

// UpdateStatusLocal sets the status without calling the gateway.
func (s *Service) UpdateStatusLocal(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) (*models.Subscription, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status is invalid")
	}
	sub, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == status {
		return sub, nil
	}
	previous := sub.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, sub.ID, map[string]any{"status": status}); err != nil {
			return err
		}
		return s.emitStatusChanged(ctx, tx, sub, previous, status, "local_update")
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update subscription status")
	}
	sub.Status = status
	return sub, nil
}

func (s *Service) emitStatusChanged(ctx context.Context, tx *gorm.DB, sub *models.Subscription, previous, status enums.SubscriptionStatus, trigger string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventSubscriptionStatusChanged,
		AggregateType: enums.AggregateSubscription,
		AggregateID:   sub.ID,
		Source:        outbox.SourceAPI,
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	return s.mustFind(ctx, id)
}

func (s *Service) GetAll(ctx context.Context, params pagination.Params) (*Page, error) {
	items, next, err := s.repo.List(ctx, s.strategy.kind(), params)
	if err != nil {
		if _, cursorErr := pagination.ParseCursor(params.Cursor); cursorErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, cursorErr, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return &Page{Items: items, NextCursor: next}, nil
}

func (s *Service) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]models.Subscription, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, string(s.strategy.kind())+" id is required")
	}
	subs, err := s.repo.ListByOwner(ctx, s.strategy.kind(), ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return subs, nil
}

// GetByOrderID returns the live subscription of an order.
func (s *Service) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Subscription, error) {
	if s.strategy.kind() != enums.OwnerKindShopper {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller subscriptions are not tied to orders")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	sub, err := s.repo.FindActiveByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if sub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return sub, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}
	sub, err := s.repo.FindByExternalID(ctx, externalID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if sub == nil || sub.OwnerKind != s.strategy.kind() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return sub, nil
}

func (s *Service) mustFind(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	sub, err := s.repo.FindByID(ctx, s.strategy.kind(), id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if sub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return sub, nil
}
