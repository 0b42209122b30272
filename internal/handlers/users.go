package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"foodstore/internal/database"
	"foodstore/internal/models"
)

// monthlyCount is one bucket of the sign-up statistics.
type monthlyCount struct {
	Month int   `bson:"_id" json:"_id"`
	Total int64 `bson:"total" json:"total"`
}

/* =========================
   ADMIN USER MANAGEMENT
========================= */

// GetUsers lists accounts, newest first. Accepts ?latest=N or ?page=&limit=.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users"
		defer handlePanic(c, route)

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		if err := applyListWindow(c, opts); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid pagination params")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection(database.UsersCollection).Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, route, "Error fetching users", err)
			return
		}
		defer cursor.Close(ctx)

		users := []models.User{}
		if err := cursor.All(ctx, &users); err != nil {
			respondInternal(c, route, "Error fetching users", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Users fetched successfully",
			"data":    users,
		})
	}
}

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /users/delete/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection(database.UsersCollection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, "Error deleting user", err)
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		zctx.From(ctx).Info("User deleted", zap.String("user_id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{"message": "User has been deleted"})
	}
}

// GetUserStats counts sign-ups per calendar month over the last year.
func GetUserStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/stats"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		since := time.Now().AddDate(-1, 0, 0)
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
			{{Key: "$group", Value: bson.M{
				"_id":   bson.M{"$month": "$createdAt"},
				"total": bson.M{"$sum": 1},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		}

		cursor, err := db.Collection(database.UsersCollection).Aggregate(ctx, pipeline)
		if err != nil {
			respondInternal(c, route, "Error fetching user stats", err)
			return
		}
		defer cursor.Close(ctx)

		stats := []monthlyCount{}
		if err := cursor.All(ctx, &stats); err != nil {
			respondInternal(c, route, "Error fetching user stats", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User stats fetched successfully",
			"data":    stats,
		})
	}
}
