package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketbill-backend/internal/orders"
	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// shopperStrategy bills the shopper of an order; one live subscription per order.
type shopperStrategy struct {
	owners owners.Repository
	orders orders.Repository
}

func (shopperStrategy) kind() enums.OwnerKind { return enums.OwnerKindShopper }

func (shopperStrategy) targetName() string { return "order id" }

func (st shopperStrategy) resolve(ctx context.Context, target uuid.UUID, in CreateInput) (*createTarget, error) {
	order, err := st.orders.FindByID(ctx, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.ShopperID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no shopper")
	}

	owner, err := st.owners.Find(ctx, enums.OwnerKindShopper, *order.ShopperID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shopper")
	}
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shopper not found")
	}

	value, err := orderValue(order, in.Value)
	if err != nil {
		return nil, err
	}

	cycle := in.Cycle
	name := in.Name
	if order.Product != nil {
		if cycle == "" && order.Product.Cycle != nil {
			cycle = string(*order.Product.Cycle)
		}
		name = types.FirstNonEmpty(name, order.Product.Name)
	}

	orderID := order.ID
	return &createTarget{
		owner:   owner,
		orderID: &orderID,
		value:   value,
		cycle:   cycle,
		name:    name,
		lockID:  order.ID.String(),
	}, nil
}

func (shopperStrategy) findExisting(ctx context.Context, repo Repository, t *createTarget) (bool, error) {
	existing, err := repo.FindActiveByOrderID(ctx, *t.orderID)
	return existing != nil, err
}

// orderValue picks the charged value: the order value, the product's
// discounted subscription price, its static subscription price, then the
// value sent by the caller.
func orderValue(order *models.Order, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if order.Value != nil && order.Value.IsPositive() {
		return *order.Value, nil
	}
	if product := order.Product; product != nil {
		if price, ok := product.ComputedSubscriptionPrice(); ok {
			return price, nil
		}
		if product.SubscriptionPrice != nil && product.SubscriptionPrice.IsPositive() {
			return *product.SubscriptionPrice, nil
		}
	}
	if explicit != nil {
		return *explicit, nil
	}
	if order.Product == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found for order")
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "subscription value could not be resolved for order")
}
