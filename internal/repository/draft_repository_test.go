package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	draftDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/draft"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A file-backed database keeps one schema across the pool's connections,
	// unlike :memory: where every new connection gets an empty database.
	dsn := filepath.Join(t.TempDir(), "rental_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&BookingModel{},
		&DraftModel{},
		&VehicleModel{},
		&CustomerModel{},
		&InvoiceCounterModel{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustDraft(t *testing.T, owner uuid.UUID) *draftDomain.Draft {
	t.Helper()
	payload := draftDomain.Payload{
		Stage: draftDomain.StageVehicleSelected,
		Vehicle: &draftDomain.VehicleSelection{
			VehicleID:      uuid.New(),
			Name:           "Toyota Corolla",
			DailyRateCents: 10000,
		},
	}
	d, err := draftDomain.New(owner, payload, "", "Toyota Corolla", 0)
	require.NoError(t, err)
	return d
}

func TestDraftRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormDraftRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	d := mustDraft(t, owner)
	require.NoError(t, repo.Create(ctx, d))

	got, err := repo.Get(ctx, owner, d.ID())
	require.NoError(t, err)
	assert.Equal(t, d.ID(), got.ID())
	assert.Equal(t, draftDomain.StageVehicleSelected, got.Payload().Stage)
	require.NotNil(t, got.Payload().Vehicle)
	assert.Equal(t, "Toyota Corolla", got.Payload().Vehicle.Name)
}

func TestDraftRepository_OwnershipScoping(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormDraftRepository(db)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	d := mustDraft(t, owner)
	require.NoError(t, repo.Create(ctx, d))

	var notFound *domain.NotFoundError

	_, err := repo.Get(ctx, stranger, d.ID())
	assert.ErrorAs(t, err, &notFound)

	err = repo.Delete(ctx, stranger, d.ID())
	assert.ErrorAs(t, err, &notFound)

	// The row survives the stranger's attempts.
	_, err = repo.Get(ctx, owner, d.ID())
	assert.NoError(t, err)
}

func TestDraftRepository_UpdateRoundTripsPayload(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormDraftRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	d := mustDraft(t, owner)
	require.NoError(t, repo.Create(ctx, d))

	customerID := uuid.New()
	advanced := d.Payload()
	advanced.Stage = draftDomain.StagePriced
	advanced.CustomerID = &customerID
	advanced.Dates = &draftDomain.DateSelection{
		Pickup:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Dropoff: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	advanced.Pricing = &draftDomain.PricingSummary{Days: 5, TotalCents: 50000, Currency: "USD"}
	require.NoError(t, d.Replace(advanced, "Jamie Tan", "Toyota Corolla", 50000))
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.Get(ctx, owner, d.ID())
	require.NoError(t, err)
	assert.Equal(t, draftDomain.StagePriced, got.Payload().Stage)
	require.NotNil(t, got.Payload().CustomerID)
	assert.Equal(t, customerID, *got.Payload().CustomerID)
	assert.Equal(t, int64(50000), got.TotalCents())
	assert.Equal(t, "Jamie Tan", got.CustomerName())
}

func TestDraftRepository_ListByOwnerOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormDraftRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	older := mustDraft(t, owner)
	require.NoError(t, repo.Create(ctx, older))

	newerPayload := draftDomain.Payload{
		Stage: draftDomain.StageVehicleSelected,
		Vehicle: &draftDomain.VehicleSelection{
			VehicleID: uuid.New(), Name: "Honda CR-V", DailyRateCents: 15000,
		},
	}
	newer := draftDomain.Reconstruct(uuid.New(), owner, newerPayload, "", "Honda CR-V", 0,
		time.Now().UTC().Add(time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, repo.Create(ctx, newer))

	require.NoError(t, repo.Create(ctx, mustDraft(t, uuid.New())))

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Honda CR-V", list[0].VehicleName())
	assert.Equal(t, "Toyota Corolla", list[1].VehicleName())
}

func TestDraftRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormDraftRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	d := mustDraft(t, owner)
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.Delete(ctx, owner, d.ID()))

	var notFound *domain.NotFoundError
	err := repo.Delete(ctx, owner, d.ID())
	assert.ErrorAs(t, err, &notFound)
}
