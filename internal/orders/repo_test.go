package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketbill-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

func TestFindByIDPreloadsProduct(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cycle := enums.BillingCycleMonthly
	pct := decimal.RequireFromString("10")
	product := models.Product{
		SellerID:                    uuid.New(),
		Name:                        "Café mensal",
		Price:                       decimal.RequireFromString("50.00"),
		SubscriptionDiscountPercent: &pct,
		Cycle:                       &cycle,
	}
	require.NoError(t, db.Create(&product).Error)

	shopperID := uuid.New()
	value := decimal.RequireFromString("123.45")
	order := models.Order{ShopperID: &shopperID, ProductID: &product.ID, Value: &value, Quantity: 1}
	require.NoError(t, db.Create(&order).Error)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Product)
	assert.Equal(t, "Café mensal", got.Product.Name)
	require.NotNil(t, got.Product.Cycle)
	assert.Equal(t, enums.BillingCycleMonthly, *got.Product.Cycle)
	require.NotNil(t, got.Value)
	assert.True(t, got.Value.Equal(value))

	price, ok := got.Product.ComputedSubscriptionPrice()
	assert.True(t, ok)
	assert.Equal(t, "45", price.String())
}

func TestFindByIDMissing(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	got, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}
