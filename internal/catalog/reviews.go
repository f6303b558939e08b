package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
)

// Reviews reads and writes product reviews and ratings.
type Reviews struct {
	api Backend
	log *slog.Logger
}

func NewReviews(backend Backend, log *slog.Logger) *Reviews {
	return &Reviews{api: backend, log: log}
}

func (r *Reviews) Add(ctx context.Context, productID string, rating decimal.Decimal, comment string) error {
	var resp dto.Envelope
	req := dto.AddReviewRequest{Rating: rating, Comment: comment}
	if err := r.api.PostJSON(ctx, "/review/addReview/"+productID, req, &resp); err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("add review rejected: %s", resp.Message)
	}
	return nil
}

func (r *Reviews) Rating(ctx context.Context, productID string) (decimal.Decimal, int, error) {
	var resp dto.ProductRatingResponse
	if err := r.api.GetJSON(ctx, "/review/productRating/"+productID, nil, &resp); err != nil {
		return decimal.Zero, 0, fmt.Errorf("get rating: %w", err)
	}
	if !resp.Success {
		return decimal.Zero, 0, fmt.Errorf("get rating rejected: %s", resp.Message)
	}
	return resp.Rating, resp.ReviewCount, nil
}

func (r *Reviews) ForProduct(ctx context.Context, productID string) ([]model.Review, error) {
	var resp dto.ProductReviewsResponse
	if err := r.api.GetJSON(ctx, "/review/productReviews/"+productID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("get reviews rejected: %s", resp.Message)
	}
	return resp.Reviews, nil
}
