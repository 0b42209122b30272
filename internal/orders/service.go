package orders

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"foodstore/internal/auth"
	"foodstore/internal/idempotency"
	"foodstore/internal/models"
)

// CreateInput is a validated-at-the-boundary order creation request.
type CreateInput struct {
	Items          []models.OrderItem
	Amount         float64
	Address        *models.Address
	PaymentMethod  string
	IdempotencyKey string
}

// CreateResult is the stored order. Replayed is set when the order was
// created by an earlier request carrying the same idempotency key.
type CreateResult struct {
	Order    *models.Order
	Replayed bool
}

// Service owns order creation, reads and status transitions.
type Service struct {
	repo Repository
	keys idempotency.Store
	now  func() time.Time
}

const keyTimeout = 2 * time.Second

type Option func(*Service)

// WithIdempotency enables replay of submissions that carry an idempotency key.
func WithIdempotency(store idempotency.Store) Option {
	return func(s *Service) {
		s.keys = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanAccess is the per-order authorization predicate: owners and admins only.
func CanAccess(p auth.Principal, order *models.Order) bool {
	return p.IsAdmin || (!p.UserID.IsZero() && p.UserID == order.UserID)
}

// Create stores a new pending order for the caller. The submitted amount is
// kept as sent; a mismatch with the line items is only logged.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*CreateResult, error) {
	lg := zctx.From(ctx)

	method, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	if expected := lineTotal(in.Items); !expected.Equal(decimal.NewFromFloat(in.Amount).Round(2)) {
		lg.Warn("Order amount does not match line items",
			zap.Float64("amount", in.Amount),
			zap.String("line_total", expected.StringFixed(2)),
		)
	}

	scope, key := p.UserID.Hex(), strings.TrimSpace(in.IdempotencyKey)
	reserved := false
	if key != "" && s.keys != nil {
		prior, err := s.keys.Reserve(ctx, scope, key)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			return nil, ErrDuplicateSubmission
		case err != nil:
			lg.Warn("Idempotency store unavailable, creating without key", zap.Error(err))
		case prior != "":
			order, err := s.replay(ctx, p, prior)
			if err == nil {
				lg.Info("Replaying order for idempotency key", zap.String("order_id", prior))
				return &CreateResult{Order: order, Replayed: true}, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			reserved = true
		default:
			reserved = true
		}
	}

	now := s.now()
	order := &models.Order{
		UserID:        p.UserID,
		Items:         in.Items,
		Amount:        in.Amount,
		Address:       *in.Address,
		PaymentMethod: string(method),
		Status:        string(StatusPending),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if reserved {
			keyCtx, cancel := keyContext(ctx)
			if relErr := s.keys.Release(keyCtx, scope, key); relErr != nil {
				lg.Warn("Idempotency key release failed", zap.Error(relErr))
			}
			cancel()
		}
		return nil, errors.Wrap(err, "create order")
	}

	if reserved {
		keyCtx, cancel := keyContext(ctx)
		if err := s.keys.Complete(keyCtx, scope, key, order.ID.Hex()); err != nil {
			lg.Warn("Idempotency key completion failed", zap.Error(err))
		}
		cancel()
	}

	lg.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.Int("items", len(order.Items)),
		zap.Float64("amount", order.Amount),
	)
	return &CreateResult{Order: order}, nil
}

func (s *Service) replay(ctx context.Context, p auth.Principal, orderID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != p.UserID {
		return nil, ErrNotFound
	}
	return order, nil
}

// Get returns one order if the caller may see it.
func (s *Service) Get(ctx context.Context, p auth.Principal, orderID string) (*models.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(p, order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListForUser returns every order owned by userID, newest first.
func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}
	return list, nil
}

// ListAll returns every order in the system.
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return list, nil
}

// UpdateStatus overwrites the status of an order. Any of the five statuses
// may follow any other; there is no transition table.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.UpdateStatus(ctx, id, next, s.now())
	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", next.String()),
	)
	return order, nil
}

// Delete removes an order owned by the caller, or any order for admins.
func (s *Service) Delete(ctx context.Context, p auth.Principal, orderID string) error {
	id, err := parseOrderID(orderID)
	if err != nil {
		return err
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(p, order) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	zctx.From(ctx).Info("Order deleted", zap.String("order_id", orderID))
	return nil
}

// MonthlyIncome sums order amounts per calendar month for orders created in
// the last two months.
func (s *Service) MonthlyIncome(ctx context.Context) ([]models.MonthlyIncome, error) {
	since := s.now().AddDate(0, -2, 0)
	income, err := s.repo.MonthlyIncome(ctx, since)
	if err != nil {
		return nil, errors.Wrap(err, "monthly income")
	}
	return income, nil
}

func validateCreate(in CreateInput) (PaymentMethod, error) {
	if len(in.Items) == 0 {
		return "", invalid("Order must contain items")
	}
	if in.Amount <= 0 {
		return "", invalid("Invalid order amount")
	}
	if in.Address == nil || in.Address.IsEmpty() {
		return "", invalid("Shipping address is required")
	}
	for _, item := range in.Items {
		if item.ProductID.IsZero() {
			return "", invalid("Each item needs a productId")
		}
		if strings.TrimSpace(item.Name) == "" {
			return "", invalid("Each item needs a name")
		}
		if item.Quantity <= 0 {
			return "", invalid("Item quantity must be greater than zero")
		}
		if item.Price < 0 {
			return "", invalid("Item price cannot be negative")
		}
	}
	return ParsePaymentMethod(in.PaymentMethod)
}

func lineTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

// keyContext outlives the request so a timed out create still frees or
// settles its idempotency key.
func keyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), keyTimeout)
}

func parseOrderID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, invalid("Invalid order id")
	}
	return id, nil
}
