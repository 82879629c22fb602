package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the purchase a shopper subscription is attached to.
type Order struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  *uuid.UUID       `gorm:"column:seller_id;type:uuid"`
	ShopperID *uuid.UUID       `gorm:"column:shopper_id;type:uuid;index"`
	ProductID *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Product   *Product         `gorm:"foreignKey:ProductID"`
	Value     *decimal.Decimal `gorm:"column:value;type:numeric(12,2)"`
	Quantity  int              `gorm:"column:quantity;not null;default:1"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
