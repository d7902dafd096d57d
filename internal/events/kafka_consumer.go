package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/common/kafka"
	"github.com/tourbook/service-earnings/internal/proto/events"
)

// BookingChangedHandler reacts to a booking moving between statuses.
type BookingChangedHandler interface {
	HandleBookingChanged(ctx context.Context, event events.BookingChangedEvent) error
}

// statusByType fills in the status for producers that omit it from the payload.
var statusByType = map[string]string{
	events.BookingPaid:      "paid",
	events.BookingCompleted: "completed",
	events.BookingCancelled: "cancelled",
	events.BookingRefunded:  "refunded",
}

// BookingEventConsumer listens to booking events and refreshes guide earnings.
type BookingEventConsumer struct {
	consumer *kafka.Consumer
	handler  BookingChangedHandler
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a new consumer for booking events.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	handler BookingChangedHandler,
	logger *zap.Logger,
) *BookingEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicBookingEvents, logger)
	return &BookingEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming booking events. It blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received booking event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	eventType := strings.ToLower(cloudEvent.Type)
	status, ok := statusByType[eventType]
	if !ok {
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}

	return c.handleBookingChanged(ctx, cloudEvent, status)
}

// handleBookingChanged processes a BookingChangedEvent.
func (c *BookingEventConsumer) handleBookingChanged(ctx context.Context, ce kafka.CloudEvent, status string) error {
	var event events.BookingChangedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse BookingChangedEvent data", zap.Error(err))
		return err
	}
	if event.Status == "" {
		event.Status = status
	}
	if event.GuideID == "" {
		event.GuideID = ce.Subject
	}

	return c.handler.HandleBookingChanged(ctx, event)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}
