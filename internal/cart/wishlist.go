package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

// Wishlist is the cart's quantity-less sibling: one line per product,
// add is idempotent, always persisted to the client-local store.
type Wishlist struct {
	kv       store.KV
	products ProductLookup
	sessions Sessions
	log      *slog.Logger

	mu sync.Mutex
}

func NewWishlist(kv store.KV, products ProductLookup, sessions Sessions, log *slog.Logger) *Wishlist {
	return &Wishlist{kv: kv, products: products, sessions: sessions, log: log}
}

func (w *Wishlist) load(ctx context.Context) ([]model.WishlistLine, error) {
	data, err := w.kv.Get(ctx, store.KeyWishlist)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	var lines []model.WishlistLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return lines, nil
}

func (w *Wishlist) save(ctx context.Context, lines []model.WishlistLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := w.kv.Set(ctx, store.KeyWishlist, data); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

// Add snapshots the product and appends a line; adding a product already
// on the list is a no-op.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	if !w.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	lines, err := w.load(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.ProductID == productID {
			return nil
		}
	}

	product, err := w.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProductLookup, err)
	}

	lines = append(lines, model.WishlistLine{
		ID:        uuid.New(),
		ProductID: productID,
		Snapshot:  snapshotOf(product),
		AddedAt:   time.Now(),
	})
	return w.save(ctx, lines)
}

func (w *Wishlist) Remove(ctx context.Context, lineID uuid.UUID) error {
	if !w.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	lines, err := w.load(ctx)
	if err != nil {
		return err
	}
	kept := lines[:0]
	for _, line := range lines {
		if line.ID != lineID {
			kept = append(kept, line)
		}
	}
	return w.save(ctx, kept)
}

func (w *Wishlist) Clear(ctx context.Context) error {
	if !w.sessions.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save(ctx, nil)
}

func (w *Wishlist) Lines(ctx context.Context) ([]model.WishlistLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

func (w *Wishlist) Count(ctx context.Context) (int, error) {
	lines, err := w.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (w *Wishlist) IsInWishlist(ctx context.Context, productID string) (bool, error) {
	lines, err := w.Lines(ctx)
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

// MoveToCart adds the wishlisted product to the cart and removes it from
// the wishlist once the add succeeded.
func (w *Wishlist) MoveToCart(ctx context.Context, cart *Manager, productID string) error {
	lines, err := w.Lines(ctx)
	if err != nil {
		return err
	}
	var lineID uuid.UUID
	found := false
	for _, line := range lines {
		if line.ProductID == productID {
			lineID = line.ID
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("product %s is not on the wishlist", productID)
	}

	if err := cart.Add(ctx, productID, 1); err != nil {
		return fmt.Errorf("move to cart: %w", err)
	}
	return w.Remove(ctx, lineID)
}
