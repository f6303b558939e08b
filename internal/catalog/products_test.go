package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzy-ti/go-storefront-client/internal/api"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
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

type mockBackend struct {
	getCalls  []string
	lastQuery url.Values
	products  map[string]model.Product
}

func (m *mockBackend) GetJSON(_ context.Context, path string, query url.Values, out any) error {
	m.getCalls = append(m.getCalls, path)
	m.lastQuery = query

	switch {
	case strings.HasPrefix(path, "/product/getById/"):
		id := strings.TrimPrefix(path, "/product/getById/")
		resp := out.(*dto.ProductResponse)
		if p, ok := m.products[id]; ok {
			resp.Success = true
			resp.Product = p
		}
	case path == "/product/getAll" || path == "/product/filterProduct":
		resp := out.(*dto.ProductListResponse)
		resp.Success = true
		for _, p := range m.products {
			resp.Products = append(resp.Products, p)
		}
	}
	return nil
}

func (m *mockBackend) PostJSON(_ context.Context, path string, _, out any) error {
	if strings.HasPrefix(path, "/product/updateProduct/") {
		id := strings.TrimPrefix(path, "/product/updateProduct/")
		resp := out.(*dto.ProductResponse)
		resp.Success = true
		resp.Product = model.Product{ID: id, Name: "Updated"}
	}
	return nil
}

func (m *mockBackend) PostMultipart(_ context.Context, _ string, fields map[string]string, _ []api.File, out any) error {
	resp := out.(*dto.ProductResponse)
	resp.Success = true
	resp.Product = model.Product{ID: "new-1", Name: fields["name"]}
	return nil
}

func (m *mockBackend) Delete(_ context.Context, _ string, out any) error {
	out.(*dto.Envelope).Success = true
	return nil
}

func newTestProducts(backend *mockBackend) (*Products, *memKV) {
	kv := newMemKV()
	return NewProducts(backend, kv, slog.Default()), kv
}

func TestProducts_GetByID_CachesResult(t *testing.T) {
	backend := &mockBackend{products: map[string]model.Product{
		"p1": {ID: "p1", Name: "Headphones", Price: decimal.NewFromFloat(99.99)},
	}}
	products, _ := newTestProducts(backend)
	ctx := context.Background()

	first, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Headphones", first.Name)

	second, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Second lookup is served from cache.
	assert.Len(t, backend.getCalls, 1)
}

func TestProducts_GetByID_NotFound(t *testing.T) {
	products, _ := newTestProducts(&mockBackend{products: map[string]model.Product{}})

	_, err := products.GetByID(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProducts_GetByID_NilCache(t *testing.T) {
	backend := &mockBackend{products: map[string]model.Product{"p1": {ID: "p1"}}}
	products := NewProducts(backend, nil, slog.Default())
	ctx := context.Background()

	_, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	_, err = products.GetByID(ctx, "p1")
	require.NoError(t, err)

	assert.Len(t, backend.getCalls, 2)
}

func TestProducts_List_BuildsQuery(t *testing.T) {
	backend := &mockBackend{products: map[string]model.Product{"p1": {ID: "p1"}}}
	products, _ := newTestProducts(backend)

	_, err := products.List(context.Background(), dto.ListProductsParams{
		Page: 2, Limit: 20, Search: "watch", Category: "electronics",
	})
	require.NoError(t, err)

	assert.Equal(t, "2", backend.lastQuery.Get("page"))
	assert.Equal(t, "20", backend.lastQuery.Get("limit"))
	assert.Equal(t, "watch", backend.lastQuery.Get("search"))
	assert.Equal(t, "electronics", backend.lastQuery.Get("category"))
}

func TestProducts_Update_InvalidatesCache(t *testing.T) {
	backend := &mockBackend{products: map[string]model.Product{
		"p1": {ID: "p1", Name: "Old"},
	}}
	products, kv := newTestProducts(backend)
	ctx := context.Background()

	_, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Contains(t, kv.data, "product:p1")

	name := "Updated"
	_, err = products.Update(ctx, "p1", dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)

	assert.NotContains(t, kv.data, "product:p1")
}

func TestProducts_Create(t *testing.T) {
	backend := &mockBackend{}
	products, _ := newTestProducts(backend)

	images := []api.File{{Name: "a.png", Contents: strings.NewReader("png")}}
	created, err := products.Create(context.Background(), dto.CreateProductRequest{
		Name:  "Widget",
		Price: decimal.NewFromFloat(5.99),
		Stock: 3,
	}, images)
	require.NoError(t, err)

	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "Widget", created.Name)
}
