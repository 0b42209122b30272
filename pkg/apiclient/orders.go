package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// IdempotencyKeyHeader is honoured by POST /orders.
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateOrder submits an order. A non-empty idempotencyKey makes retries of
// the same submission return the order created first.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (*CreateOrderResult, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyKeyHeader: idempotencyKey}
	}

	var resp struct {
		Order    Order `json:"order"`
		Replayed bool  `json:"replayed"`
	}
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/orders",
		body:    req,
		headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &CreateOrderResult{Order: resp.Order, Replayed: resp.Replayed}, nil
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// UserOrders lists the caller's orders, newest first.
func (c *Client) UserOrders(ctx context.Context) ([]Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/user"}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// AllOrders lists every order. Admin only.
func (c *Client) AllOrders(ctx context.Context) ([]Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/admin"}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/" + url.PathEscape(id)}, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// UpdateOrderStatus sets the status of an order. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/orders/" + url.PathEscape(id) + "/status",
		body:   map[string]string{"status": status},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/orders/" + url.PathEscape(id)}, nil)
}

// MonthlyIncome returns per-month order totals for the last two months. Admin only.
func (c *Client) MonthlyIncome(ctx context.Context) ([]MonthlyIncome, error) {
	var resp struct {
		MonthlyIncome []MonthlyIncome `json:"monthlyIncome"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/stats/income"}, &resp); err != nil {
		return nil, err
	}
	return resp.MonthlyIncome, nil
}
