package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
)

const maxDLQErrorLen = 1024

// DLQRepository stores outbox rows that the publisher gave up on. Entries
// keep a full copy of the row so they survive outbox retention.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !entry.ErrorReason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInternal, "invalid dlq error reason").
			WithDetails(map[string]any{"error_reason": entry.ErrorReason})
	}
	if entry.ErrorMessage != nil {
		msg := truncateMessage(*entry.ErrorMessage, maxDLQErrorLen)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// FindByEventID returns nil when no entry exists for the outbox row id.
func (r *DLQRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	return r.findTx(r.db.WithContext(ctx), eventID)
}

func (r *DLQRepository) findTx(tx *gorm.DB, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	var entry models.OutboxDLQ
	err := tx.Where("event_id = ?", eventID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteFailedBefore prunes entries that failed before cutoff.
func (r *DLQRepository) DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.WithContext(ctx).Where("failed_at < ?", cutoff).Delete(&models.OutboxDLQ{})
	return res.RowsAffected, res.Error
}

// DLQFilter narrows List. Zero values match everything.
type DLQFilter struct {
	Reason enums.OutboxDLQErrorReason
	Since  time.Time
	Limit  int
}

// List returns entries newest first.
func (r *DLQRepository) List(ctx context.Context, filter DLQFilter) ([]models.OutboxDLQ, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx)
	if filter.Reason != "" {
		q = q.Where("error_reason = ?", filter.Reason)
	}
	if !filter.Since.IsZero() {
		q = q.Where("failed_at >= ?", filter.Since)
	}
	var rows []models.OutboxDLQ
	err := q.Order("failed_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Requeue hands a dead-lettered row back to the publisher with a fresh
// attempt budget and removes the entry. If retention already pruned the
// outbox row it is restored from the entry's copy. It reports false when no
// entry exists for eventID.
func (r *DLQRepository) Requeue(ctx context.Context, outboxRepo *Repository, eventID uuid.UUID) (bool, error) {
	if outboxRepo == nil {
		return false, errors.New("outbox repository required")
	}
	requeued := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := r.findTx(tx, eventID)
		if err != nil || entry == nil {
			return err
		}
		if err := outboxRepo.RestoreTx(tx, models.OutboxEvent{
			ID:            entry.EventID,
			EventType:     entry.EventType,
			AggregateType: entry.AggregateType,
			AggregateID:   entry.AggregateID,
			Payload:       entry.Payload,
		}); err != nil {
			return err
		}
		if err := tx.Where("id = ?", entry.ID).Delete(&models.OutboxDLQ{}).Error; err != nil {
			return err
		}
		requeued = true
		return nil
	})
	return requeued, err
}
