package orders

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
)

type Backend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
}

type Sessions interface {
	Authenticated() bool
}

// Manager holds the last fetched order history. Status is backend-owned:
// the client only observes changes by refetching.
type Manager struct {
	api      Backend
	sessions Sessions
	log      *slog.Logger

	mu     sync.RWMutex
	orders []model.Order
}

func NewManager(api Backend, sessions Sessions, log *slog.Logger) *Manager {
	return &Manager{api: api, sessions: sessions, log: log}
}

// History refetches the order list from the backend and replaces the
// local snapshot.
func (m *Manager) History(ctx context.Context) ([]model.Order, error) {
	if !m.sessions.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}

	var resp dto.OrderHistoryResponse
	if err := m.api.GetJSON(ctx, "/order/orderHistory", nil, &resp); err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("order history rejected: %s", resp.Message)
	}

	m.mu.Lock()
	m.orders = resp.Orders
	m.mu.Unlock()
	return resp.Orders, nil
}

// Get returns an order from the last fetched snapshot.
func (m *Manager) Get(orderID string) (model.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return model.Order{}, false
}

// ByStatus filters the last fetched snapshot.
func (m *Manager) ByStatus(status model.OrderStatus) []model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Update asks the backend to change an order (e.g. cancel it) and
// refetches history so the snapshot reflects the server's decision.
func (m *Manager) Update(ctx context.Context, orderID string, req dto.UpdateOrderRequest) error {
	if !m.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	var resp dto.Envelope
	if err := m.api.PostJSON(ctx, "/order/UpdateOrder/"+orderID, req, &resp); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("update order rejected: %s", resp.Message)
	}

	if _, err := m.History(ctx); err != nil {
		m.log.Warn("refetch orders after update", "error", err)
	}
	return nil
}
