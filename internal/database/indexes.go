package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates every index the application relies on. Each group
// is attempted even if an earlier one fails; the first error is returned.
func EnsureIndexes(db *mongo.Database, lg *zap.Logger) error {
	var firstErr error
	for _, ensure := range []func(*mongo.Database, *zap.Logger) error{
		EnsureOrderIndexes,
		EnsureUserIndexes,
		EnsureProductIndexes,
		EnsureCategoryIndexes,
	} {
		if err := ensure(db, lg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func EnsureOrderIndexes(db *mongo.Database, lg *zap.Logger) error {
	return createIndexes(db, lg, OrdersCollection, []mongo.IndexModel{
		{
			// listForUser: newest first per owner
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
}

func EnsureUserIndexes(db *mongo.Database, lg *zap.Logger) error {
	return createIndexes(db, lg, UsersCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
	})
}

func EnsureProductIndexes(db *mongo.Database, lg *zap.Logger) error {
	return createIndexes(db, lg, ProductsCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index().SetName("categories_index"),
		},
	})
}

func EnsureCategoryIndexes(db *mongo.Database, lg *zap.Logger) error {
	return createIndexes(db, lg, CategoriesCollection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_unique").SetUnique(true),
		},
	})
}

func createIndexes(db *mongo.Database, lg *zap.Logger, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		lg.Warn("Index creation failed", zap.String("collection", collection), zap.Error(err))
		return errors.Wrapf(err, "create %s indexes", collection)
	}
	lg.Info("Indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}
