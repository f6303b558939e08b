package cart

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return data, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type mockProducts struct {
	products map[string]*model.Product
	calls    int
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*model.Product, error) {
	m.calls++
	p, ok := m.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return p, nil
}

type stubSessions struct {
	authed bool
	user   model.User
}

func (s *stubSessions) Authenticated() bool { return s.authed }

func (s *stubSessions) Current() (model.User, bool) {
	if !s.authed {
		return model.User{}, false
	}
	return s.user, true
}

func newTestManager(t *testing.T) (*Manager, *mockProducts, *stubSessions) {
	t.Helper()
	products := &mockProducts{products: map[string]*model.Product{
		"p1": {ID: "p1", Name: "Headphones", Price: decimal.NewFromFloat(99.99), Images: []string{"img1"}},
		"p2": {ID: "p2", Name: "Watch", Price: decimal.NewFromFloat(199.99)},
	}}
	sessions := &stubSessions{authed: true, user: model.User{ID: "u1"}}
	lineStore := NewLocalLineStore(newMemKV(), store.KeyCart)
	return NewManager(lineStore, products, sessions, slog.Default()), products, sessions
}

func TestManager_Add(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Add(ctx, "p1", 2))

	lines, err := mgr.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Headphones", lines[0].Snapshot.Name)
	assert.Equal(t, "img1", lines[0].Snapshot.Image)
}

func TestManager_Add_MergesExistingLine(t *testing.T) {
	mgr, products, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Add(ctx, "p1", 1))
	require.NoError(t, mgr.Add(ctx, "p1", 1))

	lines, err := mgr.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	// The snapshot is fetched once; the merge path never refetches.
	assert.Equal(t, 1, products.calls)
}

func TestManager_Add_NotAuthenticated(t *testing.T) {
	mgr, _, sessions := newTestManager(t)
	sessions.authed = false

	err := mgr.Add(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestManager_Add_ProductLookupFailed(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	err := mgr.Add(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ErrProductLookup)

	lines, lerr := mgr.Lines(context.Background())
	require.NoError(t, lerr)
	assert.Empty(t, lines)
}

func TestManager_Remove_UnknownIDIsNoop(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 1))

	require.NoError(t, mgr.Remove(ctx, uuid.New()))

	lines, err := mgr.Lines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestManager_SetQuantity(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 1))
	lines, _ := mgr.Lines(ctx)

	require.NoError(t, mgr.SetQuantity(ctx, lines[0].ID, 5))

	lines, err := mgr.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestManager_SetQuantity_ZeroRemovesLine(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 1))
	lines, _ := mgr.Lines(ctx)

	require.NoError(t, mgr.SetQuantity(ctx, lines[0].ID, 0))

	lines, err := mgr.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestManager_ItemCount(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 2))
	require.NoError(t, mgr.Add(ctx, "p2", 3))

	count, err := mgr.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// No line ever carries a non-positive quantity.
	lines, _ := mgr.Lines(ctx)
	for _, l := range lines {
		assert.Positive(t, l.Quantity)
	}
}

func TestManager_IsInCart(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 1))

	in, err := mgr.IsInCart(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, in)

	in, err = mgr.IsInCart(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, in)
}

func TestManager_Clear(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mgr.Add(ctx, "p1", 1))
	require.NoError(t, mgr.Add(ctx, "p2", 1))

	require.NoError(t, mgr.Clear(ctx))

	count, err := mgr.ItemCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
