package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
)

var ErrSellerOnly = errors.New("seller account required")

// Sessions is the slice of the auth layer the seller board needs.
type Sessions interface {
	Current() (model.User, bool)
}

// Seller exposes the seller dashboard: the caller's own listings and the
// orders placed against them.
type Seller struct {
	api      Backend
	sessions Sessions
	log      *slog.Logger
}

func NewSeller(backend Backend, sessions Sessions, log *slog.Logger) *Seller {
	return &Seller{api: backend, sessions: sessions, log: log}
}

func (s *Seller) allowed() error {
	user, ok := s.sessions.Current()
	if !ok {
		return ErrSellerOnly
	}
	if user.Role != model.RoleSeller && user.Role != model.RoleAdmin {
		return ErrSellerOnly
	}
	return nil
}

func (s *Seller) Products(ctx context.Context) ([]model.Product, error) {
	if err := s.allowed(); err != nil {
		return nil, err
	}
	var resp dto.SellerProductsResponse
	if err := s.api.GetJSON(ctx, "/sellerboard/seeProducts", nil, &resp); err != nil {
		return nil, fmt.Errorf("seller products: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("seller products rejected: %s", resp.Message)
	}
	return resp.Products, nil
}

func (s *Seller) Orders(ctx context.Context) ([]model.Order, error) {
	if err := s.allowed(); err != nil {
		return nil, err
	}
	var resp dto.SellerOrdersResponse
	if err := s.api.GetJSON(ctx, "/sellerboard/seeOrders", nil, &resp); err != nil {
		return nil, fmt.Errorf("seller orders: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("seller orders rejected: %s", resp.Message)
	}
	return resp.Orders, nil
}
