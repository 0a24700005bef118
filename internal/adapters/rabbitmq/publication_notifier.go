package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"property-publishing-service/internal/constants"
	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/contracts"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - часть *rabbitmq_producer.Publisher, которую использует адаптер.
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// PublicationNotifierAdapter отправляет событие о публикации объекта.
type PublicationNotifierAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewPublicationNotifierAdapter(producer messagePublisher, routingKey string) (*PublicationNotifierAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &PublicationNotifierAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *PublicationNotifierAdapter) NotifyPropertyPublished(ctx context.Context, result domain.PublicationResult) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "PublicationNotifierAdapter",
		"routing_key": a.routingKey,
		"property_id": result.PropertyID.String(),
	})

	body, err := json.Marshal(toPublishedEventDTO(result))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to encode event: %w", err)
	}
	if err := contracts.ValidateEvent(contracts.PropertyPublishedEvent, contracts.Version1, body); err != nil {
		adapterLogger.Error("Event does not match its contract", err, nil)
		return fmt.Errorf("rabbitmq adapter: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    result.PublishedAt,
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.PropertyPublishedEvent,
			constants.HeaderEventVersion: contracts.Version1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish event for property %s: %w", result.PropertyID, err)
	}

	adapterLogger.Info("Publication event sent.", port.Fields{"owners": len(result.Owners)})
	return nil
}
