package subscriptions

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// CreateInput carries the plan and payer data for a new subscription. Value
// is required for sellers; for shoppers it falls back to the order and
// product prices.
type CreateInput struct {
	Name        string
	Description string
	Value       *decimal.Decimal
	Cycle       string
	EndDate     string
	MaxPayments *int
	Discount    map[string]any
	Interest    map[string]any
	Fine        map[string]any
	Split       []map[string]any
	Metadata    map[string]any
	Billing     types.BillingInfo
}

// CreateResult pairs the persisted row with the gateway's view of it.
type CreateResult struct {
	Subscription *models.Subscription
	Gateway      *asaas.Subscription
}

// UpdateInput lists the fields a caller may change. Nil fields are untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Value       *decimal.Decimal
	NextDueDate *string
	Cycle       *string
	EndDate     *string
	MaxPayments *int
	BillingType *string
	Status      *string
}

// Page is one page of subscriptions.
type Page struct {
	Items      []models.Subscription
	NextCursor string
}
