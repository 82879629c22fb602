package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// Gateway is the subset of the payment gateway client used for customers.
type Gateway interface {
	CreateCustomer(ctx context.Context, req asaas.CustomerRequest, opts ...asaas.CallOption) (*asaas.Customer, error)
	GetCustomer(ctx context.Context, id string, opts ...asaas.CallOption) (*asaas.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req asaas.CustomerRequest, opts ...asaas.CallOption) (*asaas.Customer, error)
}

type ownerStore interface {
	SaveGatewayCustomerID(ctx context.Context, kind enums.OwnerKind, id uuid.UUID, customerID string) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type ServiceParams struct {
	Gateway     Gateway
	Owners      ownerStore
	Logger      *logger.Logger
	Metrics     *metrics.BillingMetrics
	SettleDelay time.Duration
	RepairDelay time.Duration
	Sleep       SleepFunc
}

// Service keeps the gateway customer of each owner present and carrying the
// locally known tax id.
type Service struct {
	gateway     Gateway
	owners      ownerStore
	logg        *logger.Logger
	metrics     *metrics.BillingMetrics
	settleDelay time.Duration
	repairDelay time.Duration
	sleep       SleepFunc
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Owners == nil {
		return nil, fmt.Errorf("owner store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	sleep := params.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	return &Service{
		gateway:     params.Gateway,
		owners:      params.Owners,
		logg:        params.Logger,
		metrics:     params.Metrics,
		settleDelay: params.SettleDelay,
		repairDelay: params.RepairDelay,
		sleep:       sleep,
	}, nil
}

// EnsureCustomer returns the owner's gateway customer id, creating or
// recreating the customer when needed and aligning its tax id with the
// best locally known one.
func (s *Service) EnsureCustomer(ctx context.Context, owner *owners.Owner, billing types.BillingInfo) (string, error) {
	if owner == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
	}
	taxID, err := ResolveTaxID(owner, billing)
	if err != nil {
		return "", err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"tax_id": format.MaskTaxID(taxID),
	})

	if owner.GatewayCustomerID == "" {
		return s.create(ctx, owner, billing, taxID)
	}

	customer, err := s.gateway.GetCustomer(ctx, owner.GatewayCustomerID)
	if err != nil {
		if asaas.Classify(err) == asaas.ErrorKindNotFound {
			s.logg.Warn(s.logg.WithField(ctx, "customer_id", owner.GatewayCustomerID), "gateway customer missing, recreating")
			return s.recreate(ctx, owner, billing, taxID)
		}
		return "", asaas.ToAppError(err, nil)
	}
	if customer.Deleted {
		s.logg.Warn(s.logg.WithField(ctx, "customer_id", customer.ID), "gateway customer deleted, recreating")
		return s.recreate(ctx, owner, billing, taxID)
	}

	if customer.TaxIDDigits() == taxID {
		return customer.ID, nil
	}
	if err := s.alignTaxID(ctx, customer.ID, taxID); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// Recreate creates a fresh gateway customer and overwrites the stored id.
func (s *Service) Recreate(ctx context.Context, owner *owners.Owner, billing types.BillingInfo) (string, error) {
	if owner == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
	}
	taxID, err := ResolveTaxID(owner, billing)
	if err != nil {
		return "", err
	}
	return s.recreate(ctx, owner, billing, taxID)
}

func (s *Service) recreate(ctx context.Context, owner *owners.Owner, billing types.BillingInfo, taxID string) (string, error) {
	id, err := s.create(ctx, owner, billing, taxID)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.IncSelfHeal("customer_recreate", outcome)
	return id, err
}

func (s *Service) create(ctx context.Context, owner *owners.Owner, billing types.BillingInfo, taxID string) (string, error) {
	req := buildCustomerRequest(owner, billing, taxID)
	customer, err := s.gateway.CreateCustomer(ctx, req)
	if err != nil {
		return "", asaas.ToAppError(err, req)
	}
	if customer == nil || strings.TrimSpace(customer.ID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeGateway, "gateway customer id missing")
	}
	if err := s.owners.SaveGatewayCustomerID(ctx, owner.Kind, owner.ID, customer.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist gateway customer id")
	}
	owner.GatewayCustomerID = customer.ID
	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID), "gateway customer created")
	return customer.ID, nil
}

func (s *Service) alignTaxID(ctx context.Context, customerID, taxID string) error {
	ctx = s.logg.WithField(ctx, "customer_id", customerID)
	s.logg.Info(ctx, "gateway customer tax id differs, updating")

	req := asaas.CustomerRequest{CpfCnpj: taxID, PersonType: format.PersonType(taxID)}
	if _, err := s.gateway.UpdateCustomer(ctx, customerID, req); err != nil {
		s.metrics.IncSelfHeal("customer_tax_id", "failure")
		return asaas.ToAppError(err, req)
	}
	if err := s.sleep(ctx, s.settleDelay); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling delay interrupted")
	}

	refreshed, err := s.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		s.metrics.IncSelfHeal("customer_tax_id", "failure")
		return asaas.ToAppError(err, nil)
	}
	if refreshed.TaxIDDigits() != taxID {
		s.metrics.IncSelfHeal("customer_tax_id", "inconsistent")
		s.logg.Warn(s.logg.WithField(ctx, "gateway_tax_id", format.MaskTaxID(refreshed.CpfCnpj)), "gateway customer tax id update not visible yet")
		return pkgerrors.New(pkgerrors.CodeConsistency, "gateway customer tax id update has not propagated").
			WithDetails(map[string]any{"customer_id": customerID})
	}
	s.metrics.IncSelfHeal("customer_tax_id", "success")
	return nil
}

func buildCustomerRequest(owner *owners.Owner, billing types.BillingInfo, taxID string) asaas.CustomerRequest {
	store := owner.StoreInfo
	phone := format.DigitsOnly(types.FirstNonEmpty(billing.Phone, billing.MobilePhone, store.Phone, store.MobilePhone, owner.Phone))
	mobile := format.DigitsOnly(types.FirstNonEmpty(billing.MobilePhone, store.MobilePhone, billing.Phone, store.Phone, owner.Phone))
	return asaas.CustomerRequest{
		Name:              types.FirstNonEmpty(billing.Name, store.Name, owner.Name),
		Email:             types.FirstNonEmpty(billing.Email, store.Email, owner.Email),
		CpfCnpj:           taxID,
		PersonType:        format.PersonType(taxID),
		Phone:             phone,
		MobilePhone:       mobile,
		PostalCode:        format.DigitsOnly(types.FirstNonEmpty(billing.PostalCode, store.PostalCode)),
		Address:           types.FirstNonEmpty(billing.Address, store.Address),
		AddressNumber:     types.FirstNonEmpty(billing.AddressNumber, store.AddressNumber),
		Complement:        types.FirstNonEmpty(billing.Complement, store.Complement),
		Province:          types.FirstNonEmpty(billing.Province, store.Province),
		ExternalReference: owner.ExternalReference(),
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
