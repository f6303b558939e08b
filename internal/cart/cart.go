package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/model"
)

var ErrProductLookup = errors.New("product lookup failed")

// ProductLookup is the collaborator that resolves a product id into the
// snapshot stored with a new line.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// Sessions gates cart mutations on an active session.
type Sessions interface {
	Authenticated() bool
	Current() (model.User, bool)
}

// Manager owns the cart lines for the current session. All reads go
// through the line store so totals are always recomputed from current
// state, never cached.
type Manager struct {
	store    LineStore
	products ProductLookup
	sessions Sessions
	log      *slog.Logger

	// Serializes read-modify-write cycles against the line store.
	mu sync.Mutex
}

func NewManager(store LineStore, products ProductLookup, sessions Sessions, log *slog.Logger) *Manager {
	return &Manager{store: store, products: products, sessions: sessions, log: log}
}

// Add merges qty into an existing line for the product, or snapshots the
// product and appends a new line. qty values below 1 count as 1.
func (m *Manager) Add(ctx context.Context, productID string, qty int) error {
	if !m.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}
	if qty < 1 {
		qty = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	for _, line := range lines {
		if line.ProductID == productID {
			line.Quantity += qty
			if err := m.store.Update(ctx, line); err != nil {
				return fmt.Errorf("update cart line: %w", err)
			}
			m.log.Debug("cart line incremented", "product_id", productID, "quantity", line.Quantity)
			return nil
		}
	}

	product, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProductLookup, err)
	}

	line := model.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Snapshot:  snapshotOf(product),
		AddedAt:   time.Now(),
	}
	if err := m.store.Append(ctx, line); err != nil {
		return fmt.Errorf("append cart line: %w", err)
	}
	m.log.Debug("cart line added", "product_id", productID, "line_id", line.ID)
	return nil
}

// Remove deletes the line if present; removing an unknown id is a no-op.
func (m *Manager) Remove(ctx context.Context, lineID uuid.UUID) error {
	if !m.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if !containsLine(lines, lineID) {
		return nil
	}
	if err := m.store.Remove(ctx, lineID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

// SetQuantity updates a line in place; qty <= 0 removes the line. A
// zero-quantity line never exists.
func (m *Manager) SetQuantity(ctx context.Context, lineID uuid.UUID, qty int) error {
	if qty <= 0 {
		return m.Remove(ctx, lineID)
	}
	if !m.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	for _, line := range lines {
		if line.ID == lineID {
			line.Quantity = qty
			if err := m.store.Update(ctx, line); err != nil {
				return fmt.Errorf("update cart line: %w", err)
			}
			return nil
		}
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	if !m.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (m *Manager) Lines(ctx context.Context) ([]model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load(ctx)
}

func (m *Manager) Totals(ctx context.Context) (Totals, error) {
	lines, err := m.Lines(ctx)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(lines), nil
}

func (m *Manager) ItemCount(ctx context.Context) (int, error) {
	lines, err := m.Lines(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count, nil
}

func (m *Manager) IsInCart(ctx context.Context, productID string) (bool, error) {
	lines, err := m.Lines(ctx)
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if line.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func containsLine(lines []model.CartLine, id uuid.UUID) bool {
	for _, line := range lines {
		if line.ID == id {
			return true
		}
	}
	return false
}

func snapshotOf(p *model.Product) model.Snapshot {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return model.Snapshot{Name: p.Name, Price: p.Price, Image: image}
}
