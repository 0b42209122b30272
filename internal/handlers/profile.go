package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodstore/internal/auth"
	"foodstore/internal/database"
	"foodstore/internal/models"
)

// UpdateProfileRequest carries only the fields the caller wants to change.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Country  *string `json:"country"`
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection(database.UsersCollection).FindOne(ctx, bson.M{"_id": p.UserID}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error fetching user", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User fetched successfully",
			"data":    user,
		})
	}
}

func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /auth/update-profile"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		update := bson.M{}
		if req.Username != nil {
			username := strings.TrimSpace(*req.Username)
			if username == "" {
				respondWithError(c, http.StatusBadRequest, route, "username cannot be empty")
				return
			}
			update["username"] = username
		}
		if req.Email != nil {
			update["email"] = normalizeEmail(*req.Email)
		}
		if req.Password != nil {
			if strings.TrimSpace(*req.Password) == "" {
				respondWithError(c, http.StatusBadRequest, route, "password cannot be empty")
				return
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondInternal(c, route, "Error updating user", err)
				return
			}
			update["password"] = hash
		}
		if req.Address != nil {
			update["address"] = strings.TrimSpace(*req.Address)
		}
		if req.Phone != nil {
			update["phone"] = strings.TrimSpace(*req.Phone)
		}
		if req.Country != nil {
			update["country"] = strings.TrimSpace(*req.Country)
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := requestContext(c)
		defer cancel()

		var updated models.User
		err := db.Collection(database.UsersCollection).FindOneAndUpdate(
			ctx,
			bson.M{"_id": p.UserID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		switch {
		case mongo.IsDuplicateKeyError(err):
			respondWithError(c, http.StatusBadRequest, route, "Email or username already in use")
			return
		case errors.Is(err, mongo.ErrNoDocuments):
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		case err != nil:
			respondInternal(c, route, "Error updating user", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User updated successfully",
			"data":    updated,
		})
	}
}
