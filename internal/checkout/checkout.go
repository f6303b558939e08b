package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/cart"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/payment"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("checkout already in progress")
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type Backend interface {
	PostJSON(ctx context.Context, path string, body, out any) error
}

type Carts interface {
	Lines(ctx context.Context) ([]model.CartLine, error)
	Clear(ctx context.Context) error
}

type Sessions interface {
	Authenticated() bool
}

// LineResult is the outcome of one order-creation call.
type LineResult struct {
	LineID    uuid.UUID
	ProductID string
	Quantity  int
	OrderID   string
	Err       error
}

// Result reports a whole checkout attempt. When Failed is non-empty the
// cart was left untouched; Succeeded still lists the orders that were
// created, since there is no compensation for partial failure.
type Result struct {
	State     State
	Intent    *payment.Intent
	Succeeded []LineResult
	Failed    []LineResult
}

// DirectItem is a buy-now purchase that bypasses the cart.
type DirectItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Orchestrator sequences payment authorization, per-line order creation,
// and cart clearing. Order calls for one attempt run concurrently and are
// joined before the state advances.
type Orchestrator struct {
	api      Backend
	cart     Carts
	sessions Sessions
	gateway  payment.Provider
	log      *slog.Logger

	mu    sync.Mutex
	state State
}

func NewOrchestrator(api Backend, carts Carts, sessions Sessions, gateway payment.Provider, log *slog.Logger) *Orchestrator {
	return &Orchestrator{api: api, cart: carts, sessions: sessions, gateway: gateway, log: log, state: StateIdle}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return ErrInProgress
	}
	o.state = StateSubmitting
	return nil
}

func (o *Orchestrator) finish(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// SubmitCart checks out every cart line. The cart is cleared only when all
// order calls succeed; any failure leaves it intact so the user can retry.
func (o *Orchestrator) SubmitCart(ctx context.Context, card payment.Card) (*Result, error) {
	if !o.sessions.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}

	lines, err := o.cart.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if err := o.begin(); err != nil {
		return nil, err
	}

	totals := cart.ComputeTotals(lines)
	intent, err := o.gateway.Authorize(ctx, payment.Request{
		Amount:   totals.Total,
		Currency: "usd",
		Card:     card,
	})
	if err != nil {
		o.finish(StateFailed)
		return nil, fmt.Errorf("authorize payment: %w", err)
	}

	results := o.createOrders(ctx, lines, intent)
	result := collect(results, intent)

	if len(result.Failed) == 0 {
		if err := o.cart.Clear(ctx); err != nil {
			o.log.Warn("clear cart after checkout", "error", err)
		}
		o.finish(StateSucceeded)
		result.State = StateSucceeded
		o.log.Info("checkout succeeded", "orders", len(result.Succeeded), "total", totals.Total.String())
	} else {
		o.finish(StateFailed)
		result.State = StateFailed
		o.log.Warn("checkout failed", "failed_lines", len(result.Failed), "created_orders", len(result.Succeeded))
	}
	return result, nil
}

// BuyNow purchases a single item directly. The cart is never touched.
func (o *Orchestrator) BuyNow(ctx context.Context, item DirectItem, card payment.Card) (*Result, error) {
	if !o.sessions.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if err := o.begin(); err != nil {
		return nil, err
	}

	line := model.CartLine{
		ID:        uuid.New(),
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Snapshot:  model.Snapshot{Price: item.Price},
	}
	amount := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)

	intent, err := o.gateway.Authorize(ctx, payment.Request{Amount: amount, Currency: "usd", Card: card})
	if err != nil {
		o.finish(StateFailed)
		return nil, fmt.Errorf("authorize payment: %w", err)
	}

	results := o.createOrders(ctx, []model.CartLine{line}, intent)
	result := collect(results, intent)
	if len(result.Failed) == 0 {
		o.finish(StateSucceeded)
		result.State = StateSucceeded
	} else {
		o.finish(StateFailed)
		result.State = StateFailed
	}
	return result, nil
}

// createOrders issues one order-creation call per line, concurrently, and
// waits for all of them. Lines are independent orders, so no ordering is
// needed between the calls.
func (o *Orchestrator) createOrders(ctx context.Context, lines []model.CartLine, intent *payment.Intent) []LineResult {
	results := make([]LineResult, len(lines))
	var wg sync.WaitGroup

	for i, line := range lines {
		wg.Add(1)
		go func(i int, line model.CartLine) {
			defer wg.Done()
			results[i] = o.createOrder(ctx, line, intent)
		}(i, line)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) createOrder(ctx context.Context, line model.CartLine, intent *payment.Intent) LineResult {
	res := LineResult{LineID: line.ID, ProductID: line.ProductID, Quantity: line.Quantity}

	lineTotal := line.Snapshot.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
	req := dto.CreateOrderRequest{
		Quantity:        line.Quantity,
		TotalPrice:      lineTotal,
		PaymentIntentID: intent.ID,
	}

	var resp dto.CreateOrderResponse
	if err := o.api.PostJSON(ctx, "/order/createOrder/"+line.ProductID, req, &resp); err != nil {
		res.Err = fmt.Errorf("create order: %w", err)
		return res
	}
	if !resp.Success {
		res.Err = fmt.Errorf("create order rejected: %s", resp.Message)
		return res
	}
	res.OrderID = resp.OrderID

	var confirm dto.Envelope
	err := o.api.PostJSON(ctx, "/order/confirmPayment/"+resp.OrderID,
		dto.ConfirmPaymentRequest{PaymentIntentID: intent.ID}, &confirm)
	if err != nil {
		res.Err = fmt.Errorf("confirm payment: %w", err)
		return res
	}
	if !confirm.Success {
		res.Err = fmt.Errorf("confirm payment rejected: %s", confirm.Message)
	}
	return res
}

func collect(results []LineResult, intent *payment.Intent) *Result {
	out := &Result{Intent: intent}
	for _, r := range results {
		if r.Err != nil {
			out.Failed = append(out.Failed, r)
		} else {
			out.Succeeded = append(out.Succeeded, r)
		}
	}
	return out
}
