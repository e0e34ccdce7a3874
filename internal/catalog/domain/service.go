package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Search(ctx context.Context, query string) ([]Response, error)
	ListByCategory(ctx context.Context, category string) ([]Response, error)
	RecordView(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*Response, error)

	// IncrementSaleCount is called by the order ledger exactly once per order
	// reaching processing. A nil tx uses the service's own connection.
	IncrementSaleCount(ctx context.Context, tx *gorm.DB, id int64) error
	// UpdateRating is the review aggregator's write-through of the recomputed
	// mean rating.
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

type CreateRequest struct {
	Category    string         `json:"category"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	PriceCents  int64          `json:"price_cents"`
	Metadata    map[string]any `json:"metadata"`
}

type Response struct {
	ID          string         `json:"id"`
	Category    string         `json:"category"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	PriceCents  int64          `json:"price_cents"`
	Status      ProductStatus  `json:"status"`
	ViewCount   int64          `json:"view_count"`
	SaleCount   int64          `json:"sale_count"`
	Rating      float64        `json:"rating"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
