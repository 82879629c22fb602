package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// Payment is a gateway charge mirrored from webhooks, one row per external id.
type Payment struct {
	ID                    uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalID            string                 `gorm:"column:external_id;not null;unique"`
	OwnerType             enums.PaymentOwnerType `gorm:"column:owner_type;type:payment_owner_type;not null"`
	OwnerID               uuid.UUID              `gorm:"column:owner_id;type:uuid;not null;index"`
	GatewaySubscriptionID *string                `gorm:"column:gateway_subscription_id"`
	GatewayCustomerID     *string                `gorm:"column:gateway_customer_id"`
	Status                enums.PaymentStatus    `gorm:"column:status;type:payment_status;not null"`
	BillingType           *string                `gorm:"column:billing_type"`
	Value                 decimal.Decimal        `gorm:"column:value;type:numeric(12,2);not null"`
	NetValue              *decimal.Decimal       `gorm:"column:net_value;type:numeric(12,2)"`
	PaymentDate           *time.Time             `gorm:"column:payment_date;type:date"`
	DueDate               *time.Time             `gorm:"column:due_date;type:date"`
	InvoiceURL            *string                `gorm:"column:invoice_url"`
	Description           *string                `gorm:"column:description"`
	RawTransaction        datatypes.JSON         `gorm:"column:raw_transaction;type:jsonb"`
	CreatedAt             time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
