package customers

import (
	"context"
	"strings"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// RepairResult reports the customer state after a repair attempt.
type RepairResult struct {
	Customer *asaas.Customer
	Missing  []string
	Repaired bool
}

// MissingFields lists the mandatory fields the gateway customer lacks. Card
// payments additionally require a full address.
func MissingFields(customer *asaas.Customer, creditCard bool) []string {
	if customer == nil {
		return nil
	}
	var missing []string
	if strings.TrimSpace(customer.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(customer.Email) == "" {
		missing = append(missing, "email")
	}
	if !format.IsValidTaxID(customer.CpfCnpj) {
		missing = append(missing, "cpfCnpj")
	}
	if strings.TrimSpace(customer.Phone) == "" && strings.TrimSpace(customer.MobilePhone) == "" {
		missing = append(missing, "phone")
	}
	if creditCard {
		if strings.TrimSpace(customer.Address) == "" {
			missing = append(missing, "address")
		}
		if strings.TrimSpace(customer.AddressNumber) == "" {
			missing = append(missing, "addressNumber")
		}
		if len(format.DigitsOnly(customer.PostalCode)) != 8 {
			missing = append(missing, "postalCode")
		}
	}
	return missing
}

// Repair refetches the customer, patches the mandatory fields it lacks with
// local data and waits for the change to settle. Repaired is false when the
// customer is deleted or still lacks a valid tax id afterwards.
func (s *Service) Repair(ctx context.Context, owner *owners.Owner, billing types.BillingInfo, customerID string, creditCard bool) (*RepairResult, error) {
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
	}
	ctx = s.logg.WithField(ctx, "customer_id", customerID)

	customer, err := s.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		if asaas.Classify(err) == asaas.ErrorKindNotFound {
			return &RepairResult{}, nil
		}
		return nil, asaas.ToAppError(err, nil)
	}
	if customer.Deleted {
		return &RepairResult{Customer: customer}, nil
	}

	missing := MissingFields(customer, creditCard)
	s.logg.Info(s.logg.WithField(ctx, "missing_fields", missing), "diagnosed gateway customer")
	if len(missing) == 0 {
		return &RepairResult{Customer: customer, Repaired: true}, nil
	}

	taxID, _ := ResolveTaxID(owner, billing)
	local := buildCustomerRequest(owner, billing, taxID)
	patch, patched := patchFor(missing, local)
	if !patched {
		s.metrics.IncSelfHeal("customer_repair", "unrepairable")
		return &RepairResult{Customer: customer, Missing: missing}, nil
	}

	if _, err := s.gateway.UpdateCustomer(ctx, customerID, patch); err != nil {
		s.metrics.IncSelfHeal("customer_repair", "failure")
		return nil, asaas.ToAppError(err, patch)
	}
	if err := s.sleep(ctx, s.repairDelay); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling delay interrupted")
	}

	refreshed, err := s.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		s.metrics.IncSelfHeal("customer_repair", "failure")
		return nil, asaas.ToAppError(err, nil)
	}
	remaining := MissingFields(refreshed, creditCard)
	repaired := format.IsValidTaxID(refreshed.CpfCnpj) && !refreshed.Deleted
	outcome := "success"
	if !repaired {
		outcome = "unrepairable"
	}
	s.metrics.IncSelfHeal("customer_repair", outcome)
	return &RepairResult{Customer: refreshed, Missing: remaining, Repaired: repaired}, nil
}

func patchFor(missing []string, local asaas.CustomerRequest) (asaas.CustomerRequest, bool) {
	var patch asaas.CustomerRequest
	patched := false
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
			patched = true
		}
	}
	for _, field := range missing {
		switch field {
		case "name":
			set(&patch.Name, local.Name)
		case "email":
			set(&patch.Email, local.Email)
		case "cpfCnpj":
			set(&patch.CpfCnpj, local.CpfCnpj)
			if patch.CpfCnpj != "" {
				patch.PersonType = local.PersonType
			}
		case "phone":
			set(&patch.Phone, local.Phone)
			set(&patch.MobilePhone, local.MobilePhone)
		case "address":
			set(&patch.Address, local.Address)
			set(&patch.Province, local.Province)
		case "addressNumber":
			set(&patch.AddressNumber, types.FirstNonEmpty(local.AddressNumber, "0"))
		case "postalCode":
			set(&patch.PostalCode, local.PostalCode)
		}
	}
	return patch, patched
}
