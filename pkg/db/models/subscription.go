package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// Subscription mirrors a gateway subscription for a seller or shopper. Shopper
// rows carry the order they bill; at most one live row exists per order.
type Subscription struct {
	ID          uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerKind   enums.OwnerKind          `gorm:"column:owner_kind;type:owner_kind;not null"`
	OwnerID     uuid.UUID                `gorm:"column:owner_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID               `gorm:"column:order_id;type:uuid"`
	ExternalID  *string                  `gorm:"column:external_id;unique"`
	Name        string                   `gorm:"column:name;not null"`
	Value       decimal.Decimal          `gorm:"column:value;type:numeric(12,2);not null"`
	Status      enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'pending'"`
	Cycle       enums.BillingCycle       `gorm:"column:cycle;type:billing_cycle;not null"`
	BillingType enums.BillingType        `gorm:"column:billing_type;type:billing_type;not null"`
	NextDueDate time.Time                `gorm:"column:next_due_date;type:date;not null"`
	StartDate   time.Time                `gorm:"column:start_date;type:date;not null"`
	EndDate     *time.Time               `gorm:"column:end_date;type:date"`
	Metadata    datatypes.JSON           `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt           `gorm:"column:deleted_at;index"`
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// External returns the gateway id or an empty string.
func (s *Subscription) External() string {
	if s == nil || s.ExternalID == nil {
		return ""
	}
	return *s.ExternalID
}
