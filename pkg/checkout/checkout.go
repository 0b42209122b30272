// Package checkout turns the cart plus a shipping form into one order.
//
// A Flow validates locally before any request, sends exactly one create call
// per submission and takes the submitted lines out of the cart only after
// the server confirmed the order. Each distinct submission gets an
// idempotency key that survives failed attempts, so a manual retry after a
// timeout cannot create a second order. Concurrent Submit calls for the same cart collapse into one request.
package checkout

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"foodstore/pkg/apiclient"
	"foodstore/pkg/cart"
)

// OrderCreator is the part of the API client the flow needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest, idempotencyKey string) (*apiclient.CreateOrderResult, error)
}

var _ OrderCreator = (*apiclient.Client)(nil)

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Form is what the checkout screen collects besides the cart.
type Form struct {
	Address       apiclient.Address
	PaymentMethod string
}

const defaultSubmitTimeout = 30 * time.Second

var paymentMethods = map[string]struct{}{
	"cash":        {},
	"credit_card": {},
	"paypal":      {},
}

type Flow struct {
	cart    *cart.Store
	api     OrderCreator
	lg      *zap.Logger
	newKey  func() string
	timeout time.Duration

	group singleflight.Group

	mu          sync.Mutex
	key         string
	fingerprint string
}

type Option func(*Flow)

func WithLogger(lg *zap.Logger) Option {
	return func(f *Flow) {
		f.lg = lg
	}
}

// WithKeyGenerator overrides how idempotency keys are minted.
func WithKeyGenerator(gen func() string) Option {
	return func(f *Flow) {
		f.newKey = gen
	}
}

// WithTimeout bounds a create request independently of the callers waiting
// for it.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func New(store *cart.Store, api OrderCreator, opts ...Option) *Flow {
	f := &Flow{
		cart:    store,
		api:     api,
		lg:      zap.NewNop(),
		newKey:  uuid.NewString,
		timeout: defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit places the order. On success the submitted lines are taken out of
// the cart and the created order returned. On failure the cart is left as it
// was; the error is either *ValidationError, *apiclient.Error or the
// context's error.
//
// The request itself is not bound to ctx: a concurrent Submit that joined it
// still gets the answer when the first caller goes away. If ctx is done
// before the response is applied, this caller leaves the cart untouched and
// gets ctx.Err(); a later Submit of the same cart reuses the idempotency key
// and picks up the order if the server already created it.
func (f *Flow) Submit(ctx context.Context, form Form) (*apiclient.CreateOrderResult, error) {
	req, snapshot, err := f.buildRequest(form)
	if err != nil {
		return nil, err
	}

	fingerprint, err := requestFingerprint(req)
	if err != nil {
		return nil, err
	}

	ch := f.group.DoChan(fingerprint, func() (any, error) {
		key := f.keyFor(fingerprint)
		f.lg.Debug("Submitting order",
			zap.String("idempotency_key", key),
			zap.Int("items", len(req.Items)),
		)

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		created, err := f.api.CreateOrder(callCtx, req, key)
		if err != nil {
			return nil, err
		}
		return &submission{result: created, snapshot: snapshot}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Err != nil {
		f.lg.Info("Order submission failed", zap.String("message", apiclient.Message(res.Err)))
		return nil, res.Err
	}

	sub := res.Val.(*submission)
	sub.once.Do(func() { f.settle(fingerprint, sub) })
	return sub.result, nil
}

// submission is one confirmed create call, shared by every Submit that
// joined it. It is settled against the cart once.
type submission struct {
	result   *apiclient.CreateOrderResult
	snapshot []cart.Item
	once     sync.Once
}

func (f *Flow) settle(fingerprint string, sub *submission) {
	f.cart.Subtract(sub.snapshot)
	if !f.complete(fingerprint) {
		// a later Submit of a changed cart already holds a fresh key
		f.lg.Warn("Idempotency key rotated while the order was in flight",
			zap.String("order_id", sub.result.Order.ID),
		)
	}
	f.lg.Info("Order placed",
		zap.String("order_id", sub.result.Order.ID),
		zap.Bool("replayed", sub.result.Replayed),
	)
}

// PendingKey returns the idempotency key kept for a failed submission, if any.
func (f *Flow) PendingKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *Flow) keyFor(fingerprint string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fingerprint != fingerprint || f.key == "" {
		f.fingerprint = fingerprint
		f.key = f.newKey()
	}
	return f.key
}

// complete drops the key of a confirmed submission. It reports false when
// the key has since been replaced for a different cart.
func (f *Flow) complete(fingerprint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fingerprint != fingerprint || f.key == "" {
		return false
	}
	f.key = ""
	f.fingerprint = ""
	return true
}

func (f *Flow) buildRequest(form Form) (apiclient.CreateOrderRequest, []cart.Item, error) {
	items := f.cart.Items()
	if len(items) == 0 {
		return apiclient.CreateOrderRequest{}, nil, &ValidationError{Field: "cart", Message: "cart is empty"}
	}

	address := apiclient.Address{
		Street:  strings.TrimSpace(form.Address.Street),
		City:    strings.TrimSpace(form.Address.City),
		State:   strings.TrimSpace(form.Address.State),
		Zip:     strings.TrimSpace(form.Address.Zip),
		Country: strings.TrimSpace(form.Address.Country),
	}
	for _, field := range []struct{ name, value string }{
		{"street", address.Street},
		{"city", address.City},
		{"zip", address.Zip},
		{"country", address.Country},
	} {
		if field.value == "" {
			return apiclient.CreateOrderRequest{}, nil, &ValidationError{Field: field.name, Message: field.name + " required"}
		}
	}

	payment := strings.TrimSpace(form.PaymentMethod)
	if payment == "" {
		payment = "cash"
	}
	if _, ok := paymentMethods[payment]; !ok {
		return apiclient.CreateOrderRequest{}, nil, &ValidationError{Field: "paymentMethod", Message: "invalid payment method"}
	}

	req := apiclient.CreateOrderRequest{
		Items:         make([]apiclient.OrderItem, 0, len(items)),
		Address:       address,
		PaymentMethod: payment,
	}
	total := decimal.Zero
	for _, item := range items {
		req.Items = append(req.Items, apiclient.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
		})
		total = total.Add(item.LineTotal())
	}
	// amount comes from the same snapshot as the items
	req.Amount = total.Round(2).InexactFloat64()
	return req, items, nil
}

func requestFingerprint(req apiclient.CreateOrderRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode order")
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}
