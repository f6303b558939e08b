package checkout

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/payment"
)

type mockBackend struct {
	mu          sync.Mutex
	calls       []string
	failProduct string
}

func (m *mockBackend) PostJSON(_ context.Context, path string, _, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	switch {
	case strings.HasPrefix(path, "/order/createOrder/"):
		productID := strings.TrimPrefix(path, "/order/createOrder/")
		resp := out.(*dto.CreateOrderResponse)
		if productID == m.failProduct {
			resp.Success = false
			resp.Message = "out of stock"
			return nil
		}
		resp.Success = true
		resp.OrderID = "ord-" + productID
	case strings.HasPrefix(path, "/order/confirmPayment/"):
		out.(*dto.Envelope).Success = true
	}
	return nil
}

func (m *mockBackend) callCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type stubCart struct {
	lines   []model.CartLine
	cleared bool
}

func (s *stubCart) Lines(_ context.Context) ([]model.CartLine, error) { return s.lines, nil }

func (s *stubCart) Clear(_ context.Context) error {
	s.cleared = true
	s.lines = nil
	return nil
}

type stubSessions struct{ authed bool }

func (s *stubSessions) Authenticated() bool { return s.authed }

func line(productID string, qty int, price float64) model.CartLine {
	return model.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Snapshot:  model.Snapshot{Name: productID, Price: decimal.NewFromFloat(price)},
	}
}

func newTestOrchestrator(backend *mockBackend, carts *stubCart) *Orchestrator {
	log := slog.Default()
	return NewOrchestrator(backend, carts, &stubSessions{authed: true}, payment.NewMockGateway(log), log)
}

var validCard = payment.Card{Number: "4242424242424242", Expiry: "12/30", CVV: "123", HolderName: "Jane"}

func TestOrchestrator_SubmitCart(t *testing.T) {
	backend := &mockBackend{}
	carts := &stubCart{lines: []model.CartLine{line("p1", 2, 99.99), line("p2", 1, 199.99)}}
	orch := newTestOrchestrator(backend, carts)

	result, err := orch.SubmitCart(context.Background(), validCard)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	assert.Len(t, result.Succeeded, 2)
	assert.Empty(t, result.Failed)
	require.NotNil(t, result.Intent)
	// Total for the pinned example cart: free shipping over 100, 8% tax.
	assert.Equal(t, "431.97", result.Intent.Amount.String())

	assert.True(t, carts.cleared)
	assert.Equal(t, 2, backend.callCount("/order/createOrder/"))
	assert.Equal(t, 2, backend.callCount("/order/confirmPayment/"))
	assert.Equal(t, StateSucceeded, orch.State())
}

func TestOrchestrator_SubmitCart_PartialFailureKeepsCart(t *testing.T) {
	backend := &mockBackend{failProduct: "p2"}
	carts := &stubCart{lines: []model.CartLine{line("p1", 1, 10), line("p2", 1, 20)}}
	orch := newTestOrchestrator(backend, carts)

	result, err := orch.SubmitCart(context.Background(), validCard)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, result.State)
	assert.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "p2", result.Failed[0].ProductID)
	assert.Error(t, result.Failed[0].Err)

	// The cart stays intact so the attempt can be retried.
	assert.False(t, carts.cleared)
	assert.Len(t, carts.lines, 2)
	assert.Equal(t, StateFailed, orch.State())
}

func TestOrchestrator_SubmitCart_EmptyCart(t *testing.T) {
	orch := newTestOrchestrator(&mockBackend{}, &stubCart{})

	_, err := orch.SubmitCart(context.Background(), validCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateIdle, orch.State())
}

func TestOrchestrator_SubmitCart_NotAuthenticated(t *testing.T) {
	log := slog.Default()
	orch := NewOrchestrator(&mockBackend{}, &stubCart{}, &stubSessions{}, payment.NewMockGateway(log), log)

	_, err := orch.SubmitCart(context.Background(), validCard)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestOrchestrator_SubmitCart_DeclinedCard(t *testing.T) {
	backend := &mockBackend{}
	carts := &stubCart{lines: []model.CartLine{line("p1", 1, 10)}}
	orch := newTestOrchestrator(backend, carts)

	_, err := orch.SubmitCart(context.Background(), payment.Card{
		Number: "4000000000000002", Expiry: "12/30", CVV: "123",
	})

	assert.ErrorIs(t, err, payment.ErrCardDeclined)
	assert.Equal(t, StateFailed, orch.State())
	// No order call is attempted when authorization fails.
	assert.Zero(t, backend.callCount("/order/"))
	assert.False(t, carts.cleared)
}

func TestOrchestrator_BuyNow(t *testing.T) {
	backend := &mockBackend{}
	carts := &stubCart{lines: []model.CartLine{line("p1", 1, 10)}}
	orch := newTestOrchestrator(backend, carts)

	item := DirectItem{ProductID: "p9", Quantity: 2, Price: decimal.NewFromFloat(25.50)}
	result, err := orch.BuyNow(context.Background(), item, validCard)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, "ord-p9", result.Succeeded[0].OrderID)
	assert.Equal(t, "51", result.Intent.Amount.String())

	// Buy-now bypasses the cart entirely.
	assert.False(t, carts.cleared)
	assert.Len(t, carts.lines, 1)
}

func TestOrchestrator_BuyNow_QuantityFloor(t *testing.T) {
	backend := &mockBackend{}
	orch := newTestOrchestrator(backend, &stubCart{})

	item := DirectItem{ProductID: "p9", Quantity: 0, Price: decimal.NewFromFloat(10)}
	result, err := orch.BuyNow(context.Background(), item, validCard)
	require.NoError(t, err)

	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, 1, result.Succeeded[0].Quantity)
}
