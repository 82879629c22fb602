package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/pagination"
)

// Repository persists subscriptions. Finders return nil, nil when no row matches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sub *models.Subscription) error
	FindByID(ctx context.Context, kind enums.OwnerKind, id uuid.UUID) (*models.Subscription, error)
	FindByExternalID(ctx context.Context, externalID string, includeDeleted bool) (*models.Subscription, error)
	FindActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Subscription, error)
	FindActiveByOwner(ctx context.Context, kind enums.OwnerKind, ownerID uuid.UUID) (*models.Subscription, error)
	ListByOwner(ctx context.Context, kind enums.OwnerKind, ownerID uuid.UUID) ([]models.Subscription, error)
	List(ctx context.Context, kind enums.OwnerKind, params pagination.Params) ([]models.Subscription, string, error)
	ListReconcilable(ctx context.Context, limit int) ([]models.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SoftDelete(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, endedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a subscriptions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) FindByID(ctx context.Context, kind enums.OwnerKind, id uuid.UUID) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND owner_kind = ?", id, kind))
}

func (r *repository) FindByExternalID(ctx context.Context, externalID string, includeDeleted bool) (*models.Subscription, error) {
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}
	return r.first(query.Where("external_id = ?", externalID))
}

func (r *repository) FindActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

// FindActiveByOwner returns a live subscription of the owner that is not tied
// to an order.
func (r *repository) FindActiveByOwner(ctx context.Context, kind enums.OwnerKind, ownerID uuid.UUID) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ? AND order_id IS NULL", kind, ownerID))
}

func (r *repository) ListByOwner(ctx context.Context, kind enums.OwnerKind, ownerID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *repository) List(ctx context.Context, kind enums.OwnerKind, params pagination.Params) ([]models.Subscription, string, error) {
	query, err := pagination.Apply(r.db.WithContext(ctx).Where("owner_kind = ?", kind), params)
	if err != nil {
		return nil, "", err
	}
	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(subs, params.Limit, func(s models.Subscription) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	return page, next, nil
}

// ListReconcilable returns live subscriptions the gateway still bills, least
// recently updated first.
func (r *repository) ListReconcilable(ctx context.Context, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("external_id IS NOT NULL").
		Where("status IN ?", []enums.SubscriptionStatus{
			enums.SubscriptionStatusPending,
			enums.SubscriptionStatusActive,
			enums.SubscriptionStatusOverdue,
		}).
		Order("updated_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SoftDelete stamps the final status and end date, then marks the row deleted.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, endedAt time.Time) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Subscription{}).Where("id = ?", id).Updates(map[string]any{
		"status":   status,
		"end_date": endedAt,
	}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.Subscription{}).Error
}

func (r *repository) first(query *gorm.DB) (*models.Subscription, error) {
	var sub models.Subscription
	if err := query.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
