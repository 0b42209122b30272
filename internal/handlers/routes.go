package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"foodstore/internal/config"
	"foodstore/internal/middleware"
	"foodstore/internal/orders"
)

const APIBase = "/api/v1"

// RegisterOrderRoutes mounts the order endpoints under api.
func RegisterOrderRoutes(api gin.IRouter, svc *orders.Service, jwtSecret string) {
	userAuth := middleware.UserAuth(jwtSecret)
	adminAuth := middleware.AdminAuth(jwtSecret)

	r := api.Group("/orders")
	r.POST("", userAuth, CreateOrder(svc))
	r.GET("", adminAuth, GetAllOrders(svc))
	r.GET("/admin", adminAuth, GetAllOrders(svc))
	r.GET("/user", userAuth, GetUserOrders(svc))
	r.GET("/stats/income", adminAuth, GetMonthlyIncome(svc))
	r.GET("/:id", userAuth, GetOrder(svc))
	r.PATCH("/:id/status", adminAuth, UpdateOrderStatus(svc))
	r.DELETE("/:id", userAuth, DeleteOrder(svc))
}

// RegisterCatalogRoutes mounts auth, user, product and category endpoints.
func RegisterCatalogRoutes(api gin.IRouter, db *mongo.Database, cfg config.Config) {
	userAuth := middleware.UserAuth(cfg.JWTSecret)
	adminAuth := middleware.AdminAuth(cfg.JWTSecret)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", Register(db))
	authGroup.POST("/login", Login(db, cfg.JWTSecret, cfg.TokenTTL))
	authGroup.GET("/me", userAuth, GetMe(db))
	authGroup.PUT("/update-profile", userAuth, UpdateProfile(db))

	users := api.Group("/users", adminAuth)
	users.GET("", GetUsers(db))
	users.GET("/stats", GetUserStats(db))
	users.DELETE("/delete/:id", DeleteUser(db))

	products := api.Group("/products")
	products.GET("", GetProducts(db))
	products.GET("/:id", GetProduct(db))
	products.POST("", adminAuth, CreateProduct(db))
	products.PUT("/:id", adminAuth, UpdateProduct(db))
	products.DELETE("/:id", adminAuth, DeleteProduct(db))

	categories := api.Group("/categories")
	categories.GET("", GetCategories(db))
	categories.GET("/:id", GetCategory(db))
	categories.POST("", adminAuth, CreateCategory(db))
	categories.PUT("/:id", adminAuth, UpdateCategory(db))
	categories.DELETE("/:id", adminAuth, DeleteCategory(db))
}
