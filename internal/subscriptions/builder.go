package subscriptions

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// PlanData is what is being billed, independent of who pays.
type PlanData struct {
	Name        string
	Description string
	Value       decimal.Decimal
	Cycle       string
	EndDate     string
	MaxPayments *int
	Discount    map[string]any
	Interest    map[string]any
	Fine        map[string]any
	Split       []map[string]any
}

type BuildInput struct {
	// CustomerID may be left empty and set on the request once the customer
	// is reconciled.
	CustomerID string
	Plan       PlanData
	Billing    types.BillingInfo
	Owner      *owners.Owner
	// TaxID is the already resolved, digits-only payer tax id.
	TaxID string
	Now   time.Time
}

// BuiltPayload is the gateway request plus the parsed values persisted locally.
type BuiltPayload struct {
	Request     asaas.SubscriptionRequest
	Cycle       enums.BillingCycle
	BillingType enums.BillingType
	NextDueDate time.Time
	EndDate     *time.Time
}

// Build produces the gateway subscription request. Empty optional fields are
// left zero so the client prunes them before sending.
func Build(in BuildInput) (*BuiltPayload, error) {
	if !in.Plan.Value.IsPositive() {
		return nil, buildErr(BuildErrInvalidValue, "value", "subscription value must be greater than zero")
	}

	billingType := enums.BillingTypePix
	if raw := strings.TrimSpace(in.Billing.BillingType); raw != "" {
		parsed, err := enums.ParseBillingType(raw)
		if err != nil {
			return nil, buildErr(BuildErrInvalidBillingType, "billing_type", "billing type must be PIX, BOLETO or CREDIT_CARD")
		}
		billingType = parsed
	}

	cycle, _ := ResolveCycle(in.Plan.Cycle)

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nextDue := NextDueDate(cycle, today)
	nextDueStr, err := CalculateNextDueDate(cycle, today)
	if err != nil {
		return nil, err
	}

	description := types.FirstNonEmpty(in.Plan.Description, in.Plan.Name)
	req := asaas.SubscriptionRequest{
		Customer:    in.CustomerID,
		BillingType: string(billingType),
		Value:       asaas.NewAmount(in.Plan.Value.Round(2)),
		NextDueDate: nextDueStr,
		Cycle:       string(cycle),
		Description: description,
	}
	if in.Owner != nil {
		req.ExternalReference = in.Owner.ExternalReference()
	}

	out := &BuiltPayload{Cycle: cycle, BillingType: billingType, NextDueDate: nextDue}

	if raw := strings.TrimSpace(in.Plan.EndDate); raw != "" {
		endStr, err := format.FormatDate(raw)
		if err != nil {
			return nil, &BuildError{Kind: BuildErrDateFormat, Field: "end date", Message: "failed to format end date", Err: err}
		}
		endDate, _ := format.ParseDate(endStr)
		req.EndDate = endStr
		out.EndDate = &endDate
	}
	if in.Plan.MaxPayments != nil && *in.Plan.MaxPayments > 0 {
		req.MaxPayments = in.Plan.MaxPayments
	}
	if len(in.Plan.Discount) > 0 {
		req.Discount = in.Plan.Discount
	}
	if len(in.Plan.Interest) > 0 {
		req.Interest = in.Plan.Interest
	}
	if len(in.Plan.Fine) > 0 {
		req.Fine = in.Plan.Fine
	}
	if len(in.Plan.Split) > 0 {
		req.Split = in.Plan.Split
	}

	if billingType == enums.BillingTypeCreditCard {
		if err := applyCreditCard(&req, in); err != nil {
			return nil, err
		}
	}

	out.Request = req
	return out, nil
}

func applyCreditCard(req *asaas.SubscriptionRequest, in BuildInput) error {
	holder, err := cardHolderInfo(in.Billing, in.Owner, in.TaxID)
	if err != nil {
		return err
	}

	remoteIP := strings.TrimSpace(in.Billing.RemoteIP)
	if remoteIP == "" {
		return buildErr(BuildErrMissingRemoteIP, "remote_ip", "remote ip is required for credit card payments")
	}

	if token := strings.TrimSpace(in.Billing.CreditCardToken); token != "" {
		req.CreditCardToken = token
	} else {
		card, err := validateCard(in.Billing.CreditCard)
		if err != nil {
			return err
		}
		req.CreditCard = card
	}
	req.CreditCardHolderInfo = holder
	req.RemoteIP = remoteIP
	return nil
}
