package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// Repository loads sellers and shoppers and stores their gateway customer id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, kind enums.OwnerKind, id uuid.UUID) (*Owner, error)
	FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindShopper(ctx context.Context, id uuid.UUID) (*models.Shopper, error)
	FindByCustomerID(ctx context.Context, customerID string) (*Owner, error)
	SaveGatewayCustomerID(ctx context.Context, kind enums.OwnerKind, id uuid.UUID, customerID string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an owners repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, kind enums.OwnerKind, id uuid.UUID) (*Owner, error) {
	switch kind {
	case enums.OwnerKindSeller:
		seller, err := r.FindSeller(ctx, id)
		if err != nil || seller == nil {
			return nil, err
		}
		return FromSeller(seller), nil
	case enums.OwnerKindShopper:
		shopper, err := r.FindShopper(ctx, id)
		if err != nil || shopper == nil {
			return nil, err
		}
		return FromShopper(shopper), nil
	}
	return nil, fmt.Errorf("unknown owner kind %q", kind)
}

func (r *repository) FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

func (r *repository) FindShopper(ctx context.Context, id uuid.UUID) (*models.Shopper, error) {
	var shopper models.Shopper
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shopper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shopper, nil
}

// FindByCustomerID checks sellers first, then shoppers.
func (r *repository) FindByCustomerID(ctx context.Context, customerID string) (*Owner, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, nil
	}

	var seller models.Seller
	err := r.db.WithContext(ctx).Where("gateway_customer_id = ?", customerID).First(&seller).Error
	switch {
	case err == nil:
		return FromSeller(&seller), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var shopper models.Shopper
	err = r.db.WithContext(ctx).Where("gateway_customer_id = ?", customerID).First(&shopper).Error
	switch {
	case err == nil:
		return FromShopper(&shopper), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	}
	return nil, err
}

func (r *repository) SaveGatewayCustomerID(ctx context.Context, kind enums.OwnerKind, id uuid.UUID, customerID string) error {
	var model any
	switch kind {
	case enums.OwnerKindSeller:
		model = &models.Seller{}
	case enums.OwnerKindShopper:
		model = &models.Shopper{}
	default:
		return fmt.Errorf("unknown owner kind %q", kind)
	}
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("gateway_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
