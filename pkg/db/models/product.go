package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Product is the catalog item an order subscribes to.
type Product struct {
	ID                          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID                    uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Name                        string              `gorm:"column:name;not null"`
	Price                       decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	SubscriptionPrice           *decimal.Decimal    `gorm:"column:subscription_price;type:numeric(12,2)"`
	SubscriptionDiscountPercent *decimal.Decimal    `gorm:"column:subscription_discount_percent;type:numeric(5,2)"`
	Cycle                       *enums.BillingCycle `gorm:"column:cycle;type:billing_cycle"`
	CreatedAt                   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ComputedSubscriptionPrice applies the subscription discount to the list
// price. It returns false when no discount is configured or the result is not
// positive.
func (p *Product) ComputedSubscriptionPrice() (decimal.Decimal, bool) {
	if p == nil || p.SubscriptionDiscountPercent == nil || !p.Price.IsPositive() {
		return decimal.Zero, false
	}
	pct := *p.SubscriptionDiscountPercent
	if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, false
	}
	factor := hundred.Sub(pct).Div(hundred)
	price := p.Price.Mul(factor).Round(2)
	return price, price.IsPositive()
}
