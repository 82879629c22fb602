package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// SubscriptionCreatedEvent is emitted once the gateway subscription is
// persisted locally.
type SubscriptionCreatedEvent struct {
	SubscriptionID    uuid.UUID          `json:"subscriptionId" validate:"required"`
	OwnerKind         enums.OwnerKind    `json:"ownerKind" validate:"oneof=seller shopper"`
	OwnerID           uuid.UUID          `json:"ownerId" validate:"required"`
	OrderID           *uuid.UUID         `json:"orderId,omitempty"`
	ExternalID        string             `json:"externalId" validate:"required"`
	GatewayCustomerID string             `json:"gatewayCustomerId"`
	Value             decimal.Decimal    `json:"value"`
	Cycle             enums.BillingCycle `json:"cycle"`
	BillingType       enums.BillingType  `json:"billingType"`
	NextDueDate       string             `json:"nextDueDate"`
}

// SubscriptionStatusChangedEvent records a local status transition.
type SubscriptionStatusChangedEvent struct {
	SubscriptionID uuid.UUID                `json:"subscriptionId" validate:"required"`
	OwnerKind      enums.OwnerKind          `json:"ownerKind" validate:"oneof=seller shopper"`
	OwnerID        uuid.UUID                `json:"ownerId"`
	ExternalID     string                   `json:"externalId,omitempty"`
	PreviousStatus enums.SubscriptionStatus `json:"previousStatus"`
	Status         enums.SubscriptionStatus `json:"status" validate:"required"`
	Trigger        string                   `json:"trigger"`
}

// SubscriptionCanceledEvent is emitted on local cancel or gateway deletion.
type SubscriptionCanceledEvent struct {
	SubscriptionID uuid.UUID       `json:"subscriptionId" validate:"required"`
	OwnerKind      enums.OwnerKind `json:"ownerKind" validate:"oneof=seller shopper"`
	OwnerID        uuid.UUID       `json:"ownerId"`
	ExternalID     string          `json:"externalId,omitempty"`
	CanceledAt     time.Time       `json:"canceledAt"`
	Trigger        string          `json:"trigger"`
}

// PaymentStatusChangedEvent mirrors an upserted gateway payment.
type PaymentStatusChangedEvent struct {
	PaymentID  uuid.UUID              `json:"paymentId" validate:"required"`
	ExternalID string                 `json:"externalId" validate:"required"`
	OwnerType  enums.PaymentOwnerType `json:"ownerType"`
	OwnerID    uuid.UUID              `json:"ownerId"`
	Status     enums.PaymentStatus    `json:"status" validate:"required"`
	Value      decimal.Decimal        `json:"value"`
	DueDate    string                 `json:"dueDate,omitempty"`
	Event      string                 `json:"event"`
}

// Subject returns the id of the aggregate the event describes.
func (e SubscriptionCreatedEvent) Subject() uuid.UUID { return e.SubscriptionID }

func (e SubscriptionStatusChangedEvent) Subject() uuid.UUID { return e.SubscriptionID }

func (e SubscriptionCanceledEvent) Subject() uuid.UUID { return e.SubscriptionID }

func (e PaymentStatusChangedEvent) Subject() uuid.UUID { return e.PaymentID }
