package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/repository/specification"
	"rentora-be/internal/repository/unitofwork"
	"rentora-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.UsageLogRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Usage Log Repository", func(t *testing.T) {
		// Count implies table check
		count, err := uow.UsageLogRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Usage log count: %d", count)
	})

	t.Run("Check Transactional Subscription Lifecycle", func(t *testing.T) {
		ctx := context.Background()
		now := time.Now()

		user := &entity.User{
			Id:       uuid.New(),
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}

		plan := &entity.SubscriptionPlan{
			Id:                      uuid.New(),
			Name:                    "Integration Plan",
			Slug:                    "integration-" + uuid.New().String(),
			Price:                   19,
			Currency:                "USD",
			BillingCycle:            entity.BillingCycleMonthly,
			MaxProperties:           3,
			MaxVisitsPerMonth:       10,
			MaxBoostsPerMonth:       1,
			MaxMediaPerProperty:     5,
			MaxAmenitiesPerProperty: 10,
			BoostEnabled:            true,
			IsActive:                true,
		}

		sub := &entity.Subscription{
			Id:           uuid.New(),
			UserId:       user.Id,
			PlanId:       plan.Id,
			Price:        plan.Price,
			Currency:     plan.Currency,
			BillingCycle: plan.BillingCycle,
			Status:       entity.SubscriptionStatusActive,
			StartDate:    now,
			EndDate:      now.AddDate(0, 1, 0),
			AutoRenew:    true,
			LastReset:    now,
			NextReset:    now.AddDate(0, 1, 0),
		}

		txUow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		require.NoError(t, txUow.UserRepository().Create(ctx, user))
		require.NoError(t, txUow.SubscriptionRepository().CreatePlan(ctx, plan))
		require.NoError(t, txUow.SubscriptionRepository().CreateSubscription(ctx, sub))

		// The conditional increment must succeed below the limit and refuse
		// at it.
		for i := 0; i < plan.MaxProperties; i++ {
			ok, err := txUow.SubscriptionRepository().TryIncrementIfBelowLimit(ctx, sub.Id, entity.FeaturePropertyCreate, 1, plan.MaxProperties)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := txUow.SubscriptionRepository().TryIncrementIfBelowLimit(ctx, sub.Id, entity.FeaturePropertyCreate, 1, plan.MaxProperties)
		require.NoError(t, err)
		assert.False(t, ok, "increment past the limit must be refused")

		found, err := txUow.SubscriptionRepository().FindOneSubscription(ctx,
			specification.UserOwnedBy{UserID: user.Id},
			specification.CurrentSubscription{Now: now},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, sub.Id, found.Id)
		assert.Equal(t, plan.MaxProperties, found.PropertiesUsed)

		// Rollback (deferred) discards everything this test wrote.
	})
}
