package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// Shopper is a buyer holding product subscriptions with a seller.
type Shopper struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID          *uuid.UUID      `gorm:"column:seller_id;type:uuid;index"`
	Name              string          `gorm:"column:name;not null"`
	Email             *string         `gorm:"column:email"`
	Phone             *string         `gorm:"column:phone"`
	TaxID             *string         `gorm:"column:tax_id"`
	StoreInfo         types.StoreInfo `gorm:"column:store_info;type:jsonb"`
	GatewayCustomerID *string         `gorm:"column:gateway_customer_id;index"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shopper) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
