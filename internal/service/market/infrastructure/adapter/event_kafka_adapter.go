package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

// EventEnvelope 是写入 kafka 的消息体。
type EventEnvelope struct {
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurredAt"`
	Payload    json.RawMessage  `json:"payload"`
}

// EventKafkaAdapter 实现了 port.EventPublisher，以订单 id 作为消息 key。
type EventKafkaAdapter struct {
	writer *kafka.Writer
}

var _ port.EventPublisher = (*EventKafkaAdapter)(nil)

func NewEventKafkaAdapter(writer *kafka.Writer) *EventKafkaAdapter {
	return &EventKafkaAdapter{writer: writer}
}

func (a *EventKafkaAdapter) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	return a.publish(ctx, domain.EventOrderPlaced, event.OrderID, event.OccurredAt, event)
}

func (a *EventKafkaAdapter) PublishOrderPaid(ctx context.Context, event domain.OrderPaid) error {
	return a.publish(ctx, domain.EventOrderPaid, event.OrderID, event.OccurredAt, event)
}

func (a *EventKafkaAdapter) publish(ctx context.Context, typ domain.EventType, key string, at time.Time, payload interface{}) error {
	body, err := encodeEnvelope(typ, at, payload)
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(key), body)
}

func (a *EventKafkaAdapter) Close() error {
	return a.writer.Close()
}

func encodeEnvelope(typ domain.EventType, at time.Time, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s payload", typ)
	}
	body, err := json.Marshal(EventEnvelope{Type: typ, OccurredAt: at, Payload: raw})
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s envelope", typ)
	}
	return body, nil
}

// LogEventPublisher 只把事件写进日志，未启用 kafka 时使用。
type LogEventPublisher struct{}

var _ port.EventPublisher = LogEventPublisher{}

func (LogEventPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	logger.Ctx(ctx).Info().
		Str("event", string(domain.EventOrderPlaced)).
		Str("order_id", event.OrderID).
		Str("customer_id", event.CustomerID).
		Str("total", event.TotalAmount.String()).
		Strs("shop_ids", event.ShopIDs).
		Msg("order event")
	return nil
}

func (LogEventPublisher) PublishOrderPaid(ctx context.Context, event domain.OrderPaid) error {
	logger.Ctx(ctx).Info().
		Str("event", string(domain.EventOrderPaid)).
		Str("order_id", event.OrderID).
		Str("customer_id", event.CustomerID).
		Str("amount", event.Amount.String()).
		Msg("order event")
	return nil
}
