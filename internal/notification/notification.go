package notification

import (
	"context"
	"encoding/json"
	"time"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification.go -destination=mock/publisher_mock.go -package=mock
type Publisher interface {
	Publish(ctx context.Context, event events.NotificationEvent) error
}

type outboxPublisher struct {
	outbox kafka.OutboxRepository
}

// NewOutboxPublisher stores notifications in outbox_events; the relay worker
// forwards them to the notification topic.
func NewOutboxPublisher(outbox kafka.OutboxRepository) Publisher {
	return &outboxPublisher{outbox: outbox}
}

func (p *outboxPublisher) Publish(ctx context.Context, event events.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		CompanyID:     event.CompanyID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Topic:         events.NotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.NotificationEvent) error { return nil }

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

// Emit hands event to pub. Delivery problems are logged and never returned:
// a committed workflow transition must not be reported as failed because
// its notification could not be queued.
func Emit(ctx context.Context, pub Publisher, logger *zap.Logger, event events.NotificationEvent) {
	if pub == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = contextutil.GetRequestID(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	log := contextutil.GetLogger(ctx, logger)
	if err := pub.Publish(ctx, event); err != nil {
		metrics.Get().NotificationsQueued.WithLabelValues(event.EventType, "error").Inc()
		log.Error("notification publish failed",
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
			zap.Strings("recipients", event.Recipients),
			zap.Error(err),
		)
		return
	}
	metrics.Get().NotificationsQueued.WithLabelValues(event.EventType, "ok").Inc()
	log.Debug("notification queued",
		zap.String("event_type", event.EventType),
		zap.String("aggregate_id", event.AggregateID),
	)
}

// Recipients joins the given employees with the oversight audiences,
// dropping blanks and duplicates.
func Recipients(employeeIDs []string, oversight bool) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(employeeIDs)+len(events.OversightAudiences))
	add := func(r string) {
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, id := range employeeIDs {
		if id == "" {
			continue
		}
		add(events.EmployeeAudience(id))
	}
	if oversight {
		for _, a := range events.OversightAudiences {
			add(a)
		}
	}
	return out
}
