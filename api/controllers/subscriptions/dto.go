package subscriptions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	subsvc "github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

type createRequest struct {
	Name        string            `json:"name,omitempty" validate:"omitempty,max=255"`
	Description string            `json:"description,omitempty" validate:"omitempty,max=500"`
	Value       *decimal.Decimal  `json:"value,omitempty" validate:"omitempty,gt=0"`
	Cycle       string            `json:"cycle,omitempty"`
	EndDate     string            `json:"end_date,omitempty"`
	MaxPayments *int              `json:"max_payments,omitempty" validate:"omitempty,gt=0"`
	Discount    map[string]any    `json:"discount,omitempty"`
	Interest    map[string]any    `json:"interest,omitempty"`
	Fine        map[string]any    `json:"fine,omitempty"`
	Split       []map[string]any  `json:"split,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Billing     types.BillingInfo `json:"billing"`
}

func (req createRequest) input(remoteIP string) subsvc.CreateInput {
	billing := req.Billing
	if billing.RemoteIP == "" {
		billing.RemoteIP = remoteIP
	}
	return subsvc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		Cycle:       req.Cycle,
		EndDate:     req.EndDate,
		MaxPayments: req.MaxPayments,
		Discount:    req.Discount,
		Interest:    req.Interest,
		Fine:        req.Fine,
		Split:       req.Split,
		Metadata:    req.Metadata,
		Billing:     billing,
	}
}

type updateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Value       *decimal.Decimal `json:"value,omitempty" validate:"omitempty,gt=0"`
	NextDueDate *string          `json:"next_due_date,omitempty"`
	Cycle       *string          `json:"cycle,omitempty"`
	EndDate     *string          `json:"end_date,omitempty"`
	MaxPayments *int             `json:"max_payments,omitempty" validate:"omitempty,gt=0"`
	BillingType *string          `json:"billing_type,omitempty"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=pending active inactive overdue canceled"`
}

func (req updateRequest) input() subsvc.UpdateInput {
	return subsvc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		NextDueDate: req.NextDueDate,
		Cycle:       req.Cycle,
		EndDate:     req.EndDate,
		MaxPayments: req.MaxPayments,
		BillingType: req.BillingType,
		Status:      req.Status,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active inactive overdue canceled"`
}

type subscriptionResponse struct {
	ID          uuid.UUID       `json:"id"`
	OwnerKind   string          `json:"owner_kind"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	ExternalID  string          `json:"external_id,omitempty"`
	Name        string          `json:"name"`
	Value       decimal.Decimal `json:"value"`
	Status      string          `json:"status"`
	Cycle       string          `json:"cycle"`
	BillingType string          `json:"billing_type"`
	NextDueDate string          `json:"next_due_date"`
	StartDate   string          `json:"start_date"`
	EndDate     *string         `json:"end_date,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newSubscriptionResponse(sub *models.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:          sub.ID,
		OwnerKind:   string(sub.OwnerKind),
		OwnerID:     sub.OwnerID,
		OrderID:     sub.OrderID,
		ExternalID:  sub.External(),
		Name:        sub.Name,
		Value:       sub.Value,
		Status:      string(sub.Status),
		Cycle:       string(sub.Cycle),
		BillingType: string(sub.BillingType),
		NextDueDate: sub.NextDueDate.UTC().Format(format.DateLayout),
		StartDate:   sub.StartDate.UTC().Format(format.DateLayout),
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
	if sub.EndDate != nil {
		end := sub.EndDate.UTC().Format(format.DateLayout)
		resp.EndDate = &end
	}
	if len(sub.Metadata) > 0 {
		resp.Metadata = json.RawMessage(sub.Metadata)
	}
	return resp
}

func newSubscriptionList(subs []models.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, newSubscriptionResponse(&subs[i]))
	}
	return out
}

type gatewaySummary struct {
	ID          string `json:"id"`
	Customer    string `json:"customer"`
	Status      string `json:"status"`
	NextDueDate string `json:"next_due_date"`
}

type createResponse struct {
	Subscription subscriptionResponse `json:"subscription"`
	Gateway      *gatewaySummary      `json:"gateway,omitempty"`
}

type listResponse struct {
	Items      []subscriptionResponse `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}
