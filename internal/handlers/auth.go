package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"foodstore/internal/auth"
	"foodstore/internal/database"
	"foodstore/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Register(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		email := normalizeEmail(req.Email)
		username := strings.TrimSpace(req.Username)
		if username == "" || strings.TrimSpace(req.Password) == "" {
			respondWithError(c, http.StatusBadRequest, route, "All fields are required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		users := db.Collection(database.UsersCollection)
		count, err := users.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondInternal(c, route, "Error registering user", err)
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusBadRequest, route, "Email already in use")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondInternal(c, route, "Error registering user", err)
			return
		}

		now := time.Now()
		user := models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := users.InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusBadRequest, route, "Email or username already in use")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error registering user", err)
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			user.ID = id
		}

		zctx.From(ctx).Info("User registered", zap.String("user_id", user.ID.Hex()))
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"data":    user,
		})
	}
}

func Login(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection(database.UsersCollection).
			FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).
			Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error during login", err)
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			respondWithError(c, http.StatusBadRequest, route, "Invalid password or email")
			return
		}

		token, err := auth.IssueToken(user.ID, user.IsAdmin, jwtSecret, tokenTTL)
		if err != nil {
			respondInternal(c, route, "Error during login", err)
			return
		}

		zctx.From(ctx).Info("User logged in",
			zap.String("user_id", user.ID.Hex()),
			zap.Bool("is_admin", user.IsAdmin),
		)
		c.JSON(http.StatusOK, gin.H{
			"token":   token,
			"data":    user,
			"message": "User logged in successfully",
		})
	}
}
