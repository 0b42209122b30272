package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodstore/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository_test.go -package=orders

// Repository persists orders.
type Repository interface {
	// Create inserts the order and sets its ID.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status, updatedAt time.Time) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	MonthlyIncome(ctx context.Context, since time.Time) ([]models.MonthlyIncome, error)
}
