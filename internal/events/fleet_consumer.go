package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
)

// FleetEventConsumer listens to fleet events and keeps the local vehicle
// read model's operational flags current, so availability answers and fleet
// stats reflect maintenance and blocks without a synchronous catalog call.
type FleetEventConsumer struct {
	consumer *Consumer
	catalog  vehicle.Catalog
	logger   *zap.Logger
}

// NewFleetEventConsumer creates a FleetEventConsumer.
func NewFleetEventConsumer(brokers []string, groupID string, catalog vehicle.Catalog, logger *zap.Logger) *FleetEventConsumer {
	consumer := NewConsumer(brokers, groupID, TopicFleetEvents, logger)
	return &FleetEventConsumer{
		consumer: consumer,
		catalog:  catalog,
		logger:   logger,
	}
}

// Start begins consuming fleet events. This blocks until the context is cancelled.
func (c *FleetEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *FleetEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *FleetEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from fleet topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch ce.Type {
	case VehicleStatusChanged:
		return c.handleStatusChanged(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled fleet event type", zap.String("type", ce.Type))
		return nil
	}
}

func (c *FleetEventConsumer) handleStatusChanged(ctx context.Context, ce CloudEvent) error {
	var evt VehicleStatusChangedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse VehicleStatusChangedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	if err := c.catalog.SetOperationalFlags(ctx, evt.VehicleID, evt.InMaintenance, evt.Blocked); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			// The catalog feed may lag behind the flag stream; a vehicle the
			// engine has never seen cannot be blocked here.
			c.logger.Warn("vehicle status change for unknown vehicle, skipping",
				zap.String("vehicle_id", evt.VehicleID.String()),
			)
			return nil
		}
		c.logger.Error("failed to apply vehicle status change",
			zap.String("vehicle_id", evt.VehicleID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("vehicle operational flags updated",
		zap.String("vehicle_id", evt.VehicleID.String()),
		zap.Bool("in_maintenance", evt.InMaintenance),
		zap.Bool("blocked", evt.Blocked),
	)
	return nil
}
