package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"foodstore/internal/auth"
	"foodstore/internal/middleware"
	"foodstore/internal/models"
	"foodstore/internal/orders"
)

// IdempotencyKeyHeader lets a client retry an order submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

/* =========================
   REQUEST DTOs
========================= */

type orderItemRequest struct {
	ProductID string  `json:"productId" binding:"required,len=24,hexadecimal"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity"`
}

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type createOrderRequest struct {
	Items         []orderItemRequest `json:"items" binding:"dive"`
	Amount        float64            `json:"amount"`
	Address       *addressRequest    `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r createOrderRequest) toInput(idempotencyKey string) orders.CreateInput {
	items := make([]models.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		// format already checked by the binding tags
		productID, _ := primitive.ObjectIDFromHex(item.ProductID)
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      strings.TrimSpace(item.Name),
			Image:     strings.TrimSpace(item.Image),
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	var address *models.Address
	if r.Address != nil {
		address = &models.Address{
			Street:  strings.TrimSpace(r.Address.Street),
			City:    strings.TrimSpace(r.Address.City),
			State:   strings.TrimSpace(r.Address.State),
			Zip:     strings.TrimSpace(r.Address.Zip),
			Country: strings.TrimSpace(r.Address.Country),
		}
	}

	return orders.CreateInput{
		Items:          items,
		Amount:         r.Amount,
		Address:        address,
		PaymentMethod:  strings.TrimSpace(r.PaymentMethod),
		IdempotencyKey: idempotencyKey,
	}
}

func principalOrAbort(c *gin.Context, route string) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "Access denied. No token provided.")
	}
	return p, ok
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := svc.Create(ctx, p, req.toInput(c.GetHeader(IdempotencyKeyHeader)))
		if err != nil {
			writeOrderError(c, route, "Error creating order", err)
			return
		}

		if res.Replayed {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"message":  "Order already created",
				"order":    res.Order,
				"replayed": true,
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Order created successfully",
			"order":   res.Order,
		})
	}
}

/* =========================
   READ ORDERS
========================= */

func GetUserOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/user"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := svc.ListForUser(ctx, p.UserID)
		if err != nil {
			writeOrderError(c, route, "Error fetching orders", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Orders retrieved successfully",
			"orders":  list,
		})
	}
}

func GetAllOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := svc.ListAll(ctx)
		if err != nil {
			writeOrderError(c, route, "Error fetching Orders", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Orders fetched successfully",
			"orders":  list,
		})
	}
}

func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.Get(ctx, p, c.Param("id"))
		if err != nil {
			writeOrderError(c, route, "Error fetching order", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   order,
		})
	}
}

/* =========================
   STATUS / DELETE
========================= */

func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"
		defer handlePanic(c, route)

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.UpdateStatus(ctx, c.Param("id"), req.Status)
		if err != nil {
			writeOrderError(c, route, "Server error updating order status", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order status updated to " + order.Status,
			"order":   order,
		})
	}
}

func DeleteOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"
		defer handlePanic(c, route)

		p, ok := principalOrAbort(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.Delete(ctx, p, c.Param("id")); err != nil {
			writeOrderError(c, route, "Error deleting Order", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

func GetMonthlyIncome(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/stats/income"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		income, err := svc.MonthlyIncome(ctx)
		if err != nil {
			writeOrderError(c, route, "Error fetching Monthly Income", err)
			return
		}

		zctx.From(ctx).Debug("Monthly income computed", zap.Int("months", len(income)))
		c.JSON(http.StatusOK, gin.H{
			"message":       "Monthly Income fetched successfully",
			"monthlyIncome": income,
		})
	}
}
