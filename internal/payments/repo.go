package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// upsertColumns are refreshed when a webhook redelivers a known payment.
var upsertColumns = []string{
	"owner_type",
	"owner_id",
	"gateway_subscription_id",
	"gateway_customer_id",
	"status",
	"billing_type",
	"value",
	"net_value",
	"payment_date",
	"due_date",
	"invoice_url",
	"description",
	"raw_transaction",
	"updated_at",
}

// Repository persists gateway payments keyed by their external id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Payment, error)
	ListByOwner(ctx context.Context, ownerType enums.PaymentOwnerType, ownerID uuid.UUID) ([]models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the payment or overwrites the row with the same external id,
// then returns the stored row.
func (r *repository) Upsert(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(payment).Error
	if err != nil {
		return nil, err
	}
	return r.FindByExternalID(ctx, payment.ExternalID)
}

func (r *repository) FindByExternalID(ctx context.Context, externalID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerType enums.PaymentOwnerType, ownerID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("due_date DESC").
		Find(&rows).Error
	return rows, err
}
