package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/izzy-ti/go-storefront-client/internal/api"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 60 * time.Second

type Backend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
	PostMultipart(ctx context.Context, path string, fields map[string]string, files []api.File, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Products is the product-lookup collaborator for the cart and checkout
// layers, with a short-TTL cache in front of GetByID.
type Products struct {
	api   Backend
	cache store.KV
	log   *slog.Logger
}

func NewProducts(backend Backend, cache store.KV, log *slog.Logger) *Products {
	return &Products{api: backend, cache: cache, log: log}
}

type cachedProduct struct {
	ExpiresAt time.Time     `json:"expires_at"`
	Product   model.Product `json:"product"`
}

func (p *Products) GetByID(ctx context.Context, id string) (*model.Product, error) {
	cacheKey := "product:" + id

	if p.cache != nil {
		if data, err := p.cache.Get(ctx, cacheKey); err == nil {
			var entry cachedProduct
			if json.Unmarshal(data, &entry) == nil && time.Now().Before(entry.ExpiresAt) {
				return &entry.Product, nil
			}
		}
	}

	var resp dto.ProductResponse
	if err := p.api.GetJSON(ctx, "/product/getById/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	if p.cache != nil {
		entry := cachedProduct{ExpiresAt: time.Now().Add(productCacheTTL), Product: resp.Product}
		if data, err := json.Marshal(entry); err == nil {
			if err := p.cache.Set(ctx, cacheKey, data); err != nil {
				p.log.Warn("cache product", "id", id, "error", err)
			}
		}
	}
	return &resp.Product, nil
}

func (p *Products) List(ctx context.Context, params dto.ListProductsParams) ([]model.Product, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}

	var resp dto.ProductListResponse
	if err := p.api.GetJSON(ctx, "/product/getAll", query, &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("list products rejected: %s", resp.Message)
	}
	return resp.Products, nil
}

func (p *Products) Filter(ctx context.Context, filters url.Values) ([]model.Product, error) {
	var resp dto.ProductListResponse
	if err := p.api.GetJSON(ctx, "/product/filterProduct", filters, &resp); err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("filter products rejected: %s", resp.Message)
	}
	return resp.Products, nil
}

// Create uploads a new product with its images as multipart form data.
func (p *Products) Create(ctx context.Context, req dto.CreateProductRequest, images []api.File) (*model.Product, error) {
	fields := map[string]string{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price.String(),
		"stock":       strconv.Itoa(req.Stock),
		"category":    req.Category,
	}
	parts := make([]api.File, len(images))
	copy(parts, images)
	for i := range parts {
		parts[i].Field = "images"
	}

	var resp dto.ProductResponse
	if err := p.api.PostMultipart(ctx, "/product/create", fields, parts, &resp); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("create product rejected: %s", resp.Message)
	}
	return &resp.Product, nil
}

func (p *Products) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	var resp dto.ProductResponse
	if err := p.api.PostJSON(ctx, "/product/updateProduct/"+id, req, &resp); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("update product rejected: %s", resp.Message)
	}
	p.invalidateCache(ctx, id)
	return &resp.Product, nil
}

func (p *Products) DeleteByID(ctx context.Context, id string) error {
	var resp dto.Envelope
	if err := p.api.Delete(ctx, "/product/deleteById/"+id, &resp); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("delete product rejected: %s", resp.Message)
	}
	p.invalidateCache(ctx, id)
	return nil
}

func (p *Products) invalidateCache(ctx context.Context, id string) {
	if p.cache != nil {
		if err := p.cache.Delete(ctx, "product:"+id); err != nil {
			p.log.Warn("invalidate product cache", "id", id, "error", err)
		}
	}
}
