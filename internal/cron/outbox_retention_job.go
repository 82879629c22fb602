package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/logger"
)

const (
	defaultOutboxRetention = 30 * 24 * time.Hour
	defaultDLQRetention    = 90 * 24 * time.Hour
	defaultMinAttempts     = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPruner interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

type dlqPruner interface {
	DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// OutboxRetentionJobParams configures pruning of delivered billing events
// and of old dead letters. MinAttempts should match the publisher's max
// attempts so undelivered rows go only once they already reached the DLQ.
// A nil DLQ leaves dead letters untouched.
type OutboxRetentionJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Outbox       outboxPruner
	DLQ          dlqPruner
	Retention    time.Duration
	DLQRetention time.Duration
	MinAttempts  int
	Clock        func() time.Time
}

type outboxRetentionJob struct {
	logg         *logger.Logger
	db           txRunner
	outbox       outboxPruner
	dlq          dlqPruner
	retention    time.Duration
	dlqRetention time.Duration
	minAttempts  int
	now          func() time.Time
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.DB == nil:
		return nil, errors.New("db runner required")
	case params.Outbox == nil:
		return nil, errors.New("outbox repository required")
	}
	j := &outboxRetentionJob{
		logg:         params.Logger,
		db:           params.DB,
		outbox:       params.Outbox,
		dlq:          params.DLQ,
		retention:    orDuration(params.Retention, defaultOutboxRetention),
		dlqRetention: orDuration(params.DLQRetention, defaultDLQRetention),
		minAttempts:  params.MinAttempts,
		now:          params.Clock,
	}
	if j.minAttempts <= 0 {
		j.minAttempts = defaultMinAttempts
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j, nil
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run prunes both tables in one transaction so a failure leaves neither
// half-cleaned.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	outboxCutoff := now.Add(-j.retention)
	dlqCutoff := now.Add(-j.dlqRetention)

	var events, letters int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.outbox.DeletePublishedBefore(ctx, tx, outboxCutoff, j.minAttempts)
		if err != nil {
			return fmt.Errorf("outbox events: %w", err)
		}
		events = n
		if j.dlq == nil {
			return nil
		}
		if letters, err = j.dlq.DeleteFailedBefore(ctx, tx, dlqCutoff); err != nil {
			return fmt.Errorf("dead letters: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}

	fields := map[string]any{
		"outbox_cutoff":  outboxCutoff,
		"min_attempts":   j.minAttempts,
		"events_deleted": events,
	}
	if j.dlq != nil {
		fields["dlq_cutoff"] = dlqCutoff
		fields["dead_letters_deleted"] = letters
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), "outbox retention cleanup complete")
	return nil
}
