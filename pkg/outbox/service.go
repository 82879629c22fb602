package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
)

// DomainEvent is what callers hand to Emit. AggregateType may be left empty
// and is then derived from EventType.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Source        string
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Emitter writes domain events inside the caller's transaction.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// WithClock overrides the clock used for OccurredAt.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Emit stores the event as a pending outbox row. The row commits or rolls
// back with tx, so the event exists iff the state change it describes does.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "outbox emit requires a transaction")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.normalize(&event); err != nil {
		return err
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal outbox event data")
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Source:     event.Source,
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal outbox envelope")
	}

	if err := s.repo.Insert(tx.WithContext(ctx), models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(raw),
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert outbox event")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID.String(),
		}), "outbox event queued")
	}
	return nil
}

func (s *Service) normalize(event *DomainEvent) error {
	owner := event.EventType.Aggregate()
	if owner == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown outbox event type").
			WithDetails(map[string]any{"event_type": event.EventType})
	}
	if event.AggregateType == "" {
		event.AggregateType = owner
	}
	if event.AggregateType != owner {
		return pkgerrors.New(pkgerrors.CodeInternal, "outbox aggregate type does not match event type").
			WithDetails(map[string]any{"event_type": event.EventType, "aggregate_type": event.AggregateType})
	}
	if event.AggregateID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "outbox event requires an aggregate id").
			WithDetails(map[string]any{"event_type": event.EventType})
	}
	if event.Version == 0 {
		event.Version = 1
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	event.OccurredAt = event.OccurredAt.UTC()
	return nil
}
