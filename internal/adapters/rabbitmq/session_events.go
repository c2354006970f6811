package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/contracts"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

const publishTimeout = 10 * time.Second

// Publisher is the subset of rabbitmq_producer.Publisher used here.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// SessionEventsAdapter publishes session events to the session exchange.
type SessionEventsAdapter struct {
	producer Publisher
}

func NewSessionEventsAdapter(producer Publisher) (*SessionEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &SessionEventsAdapter{producer: producer}, nil
}

func routingKeyFor(t domain.SessionEventType) (string, error) {
	switch t {
	case domain.EventListingSelected:
		return constants.RoutingKeyListingSelected, nil
	case domain.EventSelectionCleared:
		return constants.RoutingKeySelectionCleared, nil
	case domain.EventAnalysisCompleted:
		return constants.RoutingKeyAnalysisCompleted, nil
	default:
		return "", fmt.Errorf("rabbitmq adapter: unknown session event type %q", t)
	}
}

func (a *SessionEventsAdapter) Publish(ctx context.Context, event domain.SessionEvent) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SessionEventsAdapter",
		"event_type": event.Type,
		"session_id": event.SessionID,
	})

	routingKey, err := routingKeyFor(event.Type)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal session event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal session event: %w", err)
	}
	if err := contracts.ValidateEvent(contracts.SessionEventType, contracts.CurrentVersion, body); err != nil {
		adapterLogger.Error("Session event does not match its contract", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid session event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Headers: amqp.Table{
			"x-event-type":    contracts.SessionEventType,
			"x-event-version": contracts.CurrentVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish session event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", event.Type, err)
	}

	adapterLogger.Debug("Session event published", port.Fields{"routing_key": routingKey})
	return nil
}

