//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/application"
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
	rentalEvents "github.com/Atlas-Fleet-Rentals/service-rental/internal/events"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Bookings        *application.BookingService
	Availability    *application.AvailabilityService
	FleetConsumer   *rentalEvents.FleetEventConsumer
	Catalog         vehicleDomain.Catalog
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.DraftModel{},
		&repository.VehicleModel{},
		&repository.CustomerModel{},
		&repository.InvoiceCounterModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, rentalEvents.TopicBookingEvents, rentalEvents.TopicFleetEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires up the full rental service stack.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	draftRepo := repository.NewGormDraftRepository(db)
	catalog := repository.NewGormVehicleCatalog(db)
	directory := repository.NewGormCustomerDirectory(db)
	invoices := repository.NewGormInvoiceSequence(db)
	pricing := bookingDomain.NewStandardPricingStrategy()
	producer := rentalEvents.NewProducer(brokers, logger)

	bookingSvc := application.NewBookingService(
		bookingRepo, draftRepo, catalog, directory, invoices, pricing, producer, logger)
	availabilitySvc := application.NewAvailabilityService(bookingRepo, catalog, logger)

	groupID := fmt.Sprintf("test-rental-%s", uuid.New().String()[:8])
	consumer := rentalEvents.NewFleetEventConsumer(brokers, groupID, catalog, logger)

	return &rentalStack{
		Bookings:        bookingSvc,
		Availability:    availabilitySvc,
		FleetConsumer:   consumer,
		Catalog:         catalog,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedVehicle inserts a fleet vehicle.
func seedVehicle(t *testing.T, db *gorm.DB, id uuid.UUID, dailyRateCents int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&repository.VehicleModel{
		ID:             id,
		Name:           "Toyota Corolla",
		Plate:          fmt.Sprintf("TST %s", uuid.New().String()[:6]),
		Category:       "compact",
		DailyRateCents: dailyRateCents,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error, "failed to seed vehicle")
}

// seedCustomer inserts a customer record.
func seedCustomer(t *testing.T, db *gorm.DB, id uuid.UUID, blacklisted bool) {
	t.Helper()
	require.NoError(t, db.Create(&repository.CustomerModel{
		ID:          id,
		FirstName:   "Jamie",
		LastName:    "Tan",
		Email:       fmt.Sprintf("jamie+%s@example.com", uuid.New().String()[:8]),
		Blacklisted: blacklisted,
		CreatedAt:   time.Now().UTC(),
	}).Error, "failed to seed customer")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType, key string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := rentalEvents.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := rentalEvents.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForVehicleFlags polls the vehicles table until the flags match.
func waitForVehicleFlags(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, inMaintenance, blocked bool, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		var model repository.VehicleModel
		if err := db.Where("id = ?", vehicleID).First(&model).Error; err != nil {
			return false
		}
		return model.InMaintenance == inMaintenance && model.Blocked == blocked
	}, timeout, 200*time.Millisecond, "vehicle flags did not converge")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) rentalEvents.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := rentalEvents.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
