package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodstore/internal/database"
	"foodstore/internal/models"
)

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func countProductsInCategory(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	count, err := db.Collection(database.ProductsCollection).CountDocuments(ctx, bson.M{
		"categories": bson.M{"$in": []string{name}},
	})
	if err != nil {
		return 0, errors.Wrapf(err, "count products in %q", name)
	}
	return count, nil
}

func categoryNameTaken(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	count, err := db.Collection(database.CategoriesCollection).CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return false, errors.Wrap(err, "count categories")
	}
	return count > 0, nil
}

func parseCategoryID(c *gin.Context, route string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "Invalid category id")
		return primitive.NilObjectID, false
	}
	return id, true
}

/*
GET /categories
- every category with the number of products tagged with it
*/
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection(database.CategoriesCollection).Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
		)
		if err != nil {
			respondInternal(c, route, "Error fetching categories", err)
			return
		}
		defer cursor.Close(ctx)

		var categories []models.Category
		if err := cursor.All(ctx, &categories); err != nil {
			respondInternal(c, route, "Error fetching categories", err)
			return
		}

		out := make([]models.CategoryWithCount, 0, len(categories))
		for _, category := range categories {
			count, err := countProductsInCategory(ctx, db, category.Name)
			if err != nil {
				respondInternal(c, route, "Error fetching categories", err)
				return
			}
			out = append(out, models.CategoryWithCount{Category: category, ProductCount: count})
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Categories fetched successfully",
			"categories": out,
		})
	}
}

func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories/:id"
		defer handlePanic(c, route)

		id, ok := parseCategoryID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var category models.Category
		err := db.Collection(database.CategoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error fetching category", err)
			return
		}

		count, err := countProductsInCategory(ctx, db, category.Name)
		if err != nil {
			respondInternal(c, route, "Error fetching category", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Category fetched successfully",
			"category": models.CategoryWithCount{Category: category, ProductCount: count},
		})
	}
}

/*
POST /categories
- names are unique
*/
func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /categories"
		defer handlePanic(c, route)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "Category name is required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		taken, err := categoryNameTaken(ctx, db, name)
		if err != nil {
			respondInternal(c, route, "Error creating category", err)
			return
		}
		if taken {
			respondWithError(c, http.StatusBadRequest, route, "Category with this name already exists")
			return
		}

		now := time.Now()
		category := models.Category{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection(database.CategoriesCollection).InsertOne(ctx, category)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusBadRequest, route, "Category with this name already exists")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error creating category", err)
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			category.ID = id
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Category created successfully",
			"category": category,
		})
	}
}

/*
PUT /categories/:id
*/
func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /categories/:id"
		defer handlePanic(c, route)

		id, ok := parseCategoryID(c, route)
		if !ok {
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var current models.Category
		err := db.Collection(database.CategoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&current)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error updating category", err)
			return
		}

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			if name != current.Name {
				taken, err := categoryNameTaken(ctx, db, name)
				if err != nil {
					respondInternal(c, route, "Error updating category", err)
					return
				}
				if taken {
					respondWithError(c, http.StatusBadRequest, route, "Category with this name already exists")
					return
				}
				update["name"] = name
			}
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}

		if len(update) == 0 {
			c.JSON(http.StatusOK, gin.H{
				"message":  "Category updated successfully",
				"category": current,
			})
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Category
		err = db.Collection(database.CategoriesCollection).FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		switch {
		case mongo.IsDuplicateKeyError(err):
			respondWithError(c, http.StatusBadRequest, route, "Category with this name already exists")
			return
		case errors.Is(err, mongo.ErrNoDocuments):
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		case err != nil:
			respondInternal(c, route, "Error updating category", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Category updated successfully",
			"category": updated,
		})
	}
}

/*
DELETE /categories/:id
- refused while any product still uses the category
*/
func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /categories/:id"
		defer handlePanic(c, route)

		id, ok := parseCategoryID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var category models.Category
		err := db.Collection(database.CategoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error deleting category", err)
			return
		}

		inUse, err := countProductsInCategory(ctx, db, category.Name)
		if err != nil {
			respondInternal(c, route, "Error deleting category", err)
			return
		}
		if inUse > 0 {
			respondWithError(c, http.StatusBadRequest, route,
				fmt.Sprintf("Cannot delete category. It is used by %d products.", inUse))
			return
		}

		if _, err := db.Collection(database.CategoriesCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternal(c, route, "Error deleting category", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
