package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"foodstore/internal/database"
	"foodstore/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type ProductCreateRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Price       float64           `json:"price" binding:"required,gt=0"`
	Categories  models.StringList `json:"categories"`
	Image       string            `json:"image"`
}

type ProductUpdateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Price       *float64           `json:"price" binding:"omitempty,gt=0"`
	Categories  *models.StringList `json:"categories"`
	Image       *string            `json:"image"`
}

/* =======================
   HELPERS
======================= */

func normalizeCategories(values []string) models.StringList {
	seen := map[string]struct{}{}
	out := make(models.StringList, 0, len(values))

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

type unknownCategoriesError struct {
	Names []string
}

func (e *unknownCategoriesError) Error() string {
	return "The following categories don't exist: " + strings.Join(e.Names, ", ")
}

// ensureCategoriesExist checks every name against the categories collection.
func ensureCategoriesExist(ctx context.Context, db *mongo.Database, names []string) error {
	if len(names) == 0 {
		return nil
	}

	cursor, err := db.Collection(database.CategoriesCollection).Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return errors.Wrap(err, "find categories")
	}
	var found []models.Category
	if err := cursor.All(ctx, &found); err != nil {
		return errors.Wrap(err, "decode categories")
	}

	existing := make(map[string]struct{}, len(found))
	for _, category := range found {
		existing[category.Name] = struct{}{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &unknownCategoriesError{Names: missing}
	}
	return nil
}

// productImage keeps absolute URLs only; uploads are handled outside this service.
func productImage(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return ""
}

func parseProductID(c *gin.Context, route string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "Invalid product id")
		return primitive.NilObjectID, false
	}
	return id, true
}

/* =======================
   PUBLIC
======================= */

/*
GET /products
- ?category=   products tagged with the category
- ?search=     case-insensitive name match
- ?latest=N    N newest products
- ?page=&limit= optional pagination
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		filter := bson.M{}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["categories"] = bson.M{"$in": []string{category}}
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		if err := applyListWindow(c, findOptions); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection(database.ProductsCollection).Find(ctx, filter, findOptions)
		if err != nil {
			respondInternal(c, route, "Error fetching products", err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondInternal(c, route, "Error fetching products", err)
			return
		}

		zctx.From(ctx).Debug("Products listed", zap.Int("count", len(products)))
		c.JSON(http.StatusOK, gin.H{
			"message":  "Products fetched successfully",
			"products": products,
		})
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, ok := parseProductID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var product models.Product
		err := db.Collection(database.ProductsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error fetching product", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Product fetched successfully",
			"product": product,
		})
	}
}

/* =======================
   ADMIN
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "Name, description and price are required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		categories := normalizeCategories(req.Categories)
		if !checkCategories(ctx, c, db, route, categories) {
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Image:       productImage(req.Image),
			Categories:  categories,
			Price:       req.Price,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection(database.ProductsCollection).InsertOne(ctx, product)
		if err != nil {
			respondInternal(c, route, "Error creating product", err)
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}

		zctx.From(ctx).Info("Product created",
			zap.String("product_id", product.ID.Hex()),
			zap.Strings("categories", product.Categories),
		)
		c.JSON(http.StatusCreated, gin.H{
			"message": "Product created successfully",
			"product": product,
		})
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /products/:id"
		defer handlePanic(c, route)

		id, ok := parseProductID(c, route)
		if !ok {
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			update["price"] = *req.Price
		}
		if req.Categories != nil {
			categories := normalizeCategories(*req.Categories)
			if !checkCategories(ctx, c, db, route, categories) {
				return
			}
			update["categories"] = categories
		}
		if req.Image != nil {
			if image := productImage(*req.Image); image != "" {
				update["image"] = image
			}
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Product
		err := db.Collection(database.ProductsCollection).FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "Error updating product", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Product updated successfully",
			"product": updated,
		})
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /products/:id"
		defer handlePanic(c, route)

		id, ok := parseProductID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection(database.ProductsCollection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, "Error deleting product", err)
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		zctx.From(ctx).Info("Product deleted", zap.String("product_id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

func checkCategories(ctx context.Context, c *gin.Context, db *mongo.Database, route string, names []string) bool {
	err := ensureCategoriesExist(ctx, db, names)
	var unknown *unknownCategoriesError
	switch {
	case errors.As(err, &unknown):
		respondWithError(c, http.StatusBadRequest, route, unknown.Error())
		return false
	case err != nil:
		respondInternal(c, route, "Error validating categories", err)
		return false
	}
	return true
}
