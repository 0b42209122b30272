package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"foodstore/internal/database"
	"foodstore/internal/models"
)

func newMongoDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := database.Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("foodstore_test")
	require.NoError(t, database.EnsureIndexes(db, zap.NewNop()))
	return db
}

func TestMongoRepository(t *testing.T) {
	db := newMongoDatabase(t)
	repo := NewMongoRepository(db)
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	newOrder := func(user primitive.ObjectID, amount float64, at time.Time) *models.Order {
		return &models.Order{
			UserID: user,
			Items: []models.OrderItem{{
				ProductID: primitive.NewObjectID(),
				Name:      "Soup",
				Price:     amount,
				Quantity:  1,
			}},
			Amount:        amount,
			Address:       models.Address{Street: "1 Main St", City: "Springfield", Zip: "12345", Country: "US"},
			PaymentMethod: string(PaymentCash),
			Status:        string(StatusPending),
			CreatedAt:     at,
			UpdatedAt:     at,
		}
	}

	first := newOrder(alice, 10, base.Add(-2*time.Hour))
	second := newOrder(alice, 20, base.Add(-time.Hour))
	other := newOrder(bob, 5, base)
	for _, o := range []*models.Order{first, second, other} {
		require.NoError(t, repo.Create(ctx, o))
		require.False(t, o.ID.IsZero())
	}

	t.Run("FindByID", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Amount, got.Amount)
		assert.Equal(t, alice, got.UserID)

		_, err = repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListByUser newest first", func(t *testing.T) {
		list, err := repo.ListByUser(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)

		empty, err := repo.ListByUser(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("ListAll", func(t *testing.T) {
		list, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 3)
		assert.Equal(t, other.ID, list[0].ID)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		at := base.Add(time.Minute)
		got, err := repo.UpdateStatus(ctx, first.ID, StatusDelivered, at)
		require.NoError(t, err)
		assert.Equal(t, string(StatusDelivered), got.Status)
		assert.True(t, got.UpdatedAt.Equal(at))

		got, err = repo.UpdateStatus(ctx, first.ID, StatusPending, at)
		require.NoError(t, err)
		assert.Equal(t, string(StatusPending), got.Status)

		_, err = repo.UpdateStatus(ctx, primitive.NewObjectID(), StatusShipped, at)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MonthlyIncome", func(t *testing.T) {
		income, err := repo.MonthlyIncome(ctx, base.AddDate(0, -2, 0))
		require.NoError(t, err)

		var total float64
		for _, m := range income {
			total += m.Total
		}
		assert.Equal(t, 35.0, total)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, other.ID))
		assert.ErrorIs(t, repo.Delete(ctx, other.ID), ErrNotFound)
	})
}
