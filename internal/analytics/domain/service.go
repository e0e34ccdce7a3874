package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Recompute rebuilds the snapshot for a product from completed orders,
	// catalog counters and the current review mean.
	Recompute(ctx context.Context, productID int64) (*Response, error)
	// Get returns the stored snapshot, recomputing when none exists yet.
	Get(ctx context.Context, productID string) (*Response, error)
}

type Response struct {
	ProductID      string    `json:"product_id"`
	TotalSales     int64     `json:"total_sales"`
	RevenueCents   int64     `json:"revenue_cents"`
	AverageRating  float64   `json:"average_rating"`
	ConversionRate float64   `json:"conversion_rate"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrProductNotFound = errors.New("product_not_found")
)
