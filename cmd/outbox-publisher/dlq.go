package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
)

type dlqAdmin interface {
	List(ctx context.Context, filter outbox.DLQFilter) ([]models.OutboxDLQ, error)
	Requeue(ctx context.Context, outboxRepo *outbox.Repository, eventID uuid.UUID) (bool, error)
}

type dlqCommand struct {
	list    bool
	reason  string
	limit   int
	requeue string
}

func (c dlqCommand) requested() bool {
	return c.list || c.requeue != ""
}

// runDLQCommand lists dead-lettered rows as JSON lines or requeues one of
// them, then returns without starting the relay loop.
func runDLQCommand(ctx context.Context, logg *logger.Logger, cmd dlqCommand, dlq dlqAdmin, repo *outbox.Repository, out io.Writer) error {
	if cmd.requeue != "" {
		eventID, err := uuid.Parse(cmd.requeue)
		if err != nil {
			return fmt.Errorf("invalid -requeue id: %w", err)
		}
		ok, err := dlq.Requeue(ctx, repo, eventID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no dlq entry for event %s", eventID)
		}
		logg.Info(logg.WithField(ctx, "event_id", eventID.String()), "dlq entry requeued")
		return nil
	}

	filter := outbox.DLQFilter{Limit: cmd.limit}
	if cmd.reason != "" {
		reason, err := enums.ParseOutboxDLQErrorReason(cmd.reason)
		if err != nil {
			return err
		}
		filter.Reason = reason
	}
	rows, err := dlq.List(ctx, filter)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, row := range rows {
		if err := enc.Encode(dlqLine{
			EventID:      row.EventID,
			EventType:    row.EventType,
			AggregateID:  row.AggregateID,
			Reason:       row.ErrorReason,
			Retryable:    row.ErrorReason.Retryable(),
			AttemptCount: row.AttemptCount,
			ErrorMessage: row.ErrorMessage,
			FailedAt:     row.FailedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	return nil
}

type dlqLine struct {
	EventID      uuid.UUID                  `json:"event_id"`
	EventType    enums.OutboxEventType      `json:"event_type"`
	AggregateID  uuid.UUID                  `json:"aggregate_id"`
	Reason       enums.OutboxDLQErrorReason `json:"reason"`
	Retryable    bool                       `json:"retryable"`
	AttemptCount int                        `json:"attempt_count"`
	ErrorMessage *string                    `json:"error_message,omitempty"`
	FailedAt     string                     `json:"failed_at"`
}
