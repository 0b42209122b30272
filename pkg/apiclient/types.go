package apiclient

import "time"

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Order struct {
	ID            string      `json:"_id"`
	UserID        string      `json:"userId"`
	Items         []OrderItem `json:"items"`
	Amount        float64     `json:"amount"`
	Address       Address     `json:"address"`
	PaymentMethod string      `json:"paymentMethod"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type CreateOrderRequest struct {
	Items         []OrderItem `json:"items"`
	Amount        float64     `json:"amount"`
	Address       Address     `json:"address"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
}

// CreateOrderResult is the created order. Replayed is set when the server
// recognised the idempotency key and returned the order made earlier.
type CreateOrderResult struct {
	Order    Order
	Replayed bool
}

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}

type MonthlyIncome struct {
	Month int     `json:"_id"`
	Total float64 `json:"total"`
}
