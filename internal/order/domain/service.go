package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Create validates the product and atomically writes the order, its first
	// timeline entry and the escrow record in one transaction.
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	// AdvanceToProcessing locks escrow and bumps the catalog sale counter. It
	// is idempotent: an order already processing or completed is returned
	// unchanged so at-least-once callers can retry safely.
	AdvanceToProcessing(ctx context.Context, orderID string) (*Response, error)
	Complete(ctx context.Context, orderID string) (*Response, error)
	Refund(ctx context.Context, orderID string) (*Response, error)
	Get(ctx context.Context, orderID string) (*Response, error)
	// ListProductIDsByBuyer returns every product the buyer holds any order
	// against, regardless of status.
	ListProductIDsByBuyer(ctx context.Context, buyerID string) ([]int64, error)
}

type CreateRequest struct {
	BuyerID     string `json:"buyer_id"`
	ProductID   string `json:"product_id"`
	AmountCents int64  `json:"amount_cents"`
}

type TimelineEntry struct {
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Response struct {
	ID          string          `json:"id"`
	BuyerID     string          `json:"buyer_id"`
	ProductID   string          `json:"product_id"`
	AmountCents int64           `json:"amount_cents"`
	Status      Status          `json:"status"`
	Timeline    []TimelineEntry `json:"timeline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("order_not_found")
	ErrInvalidBuyer      = errors.New("invalid_buyer")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidID         = errors.New("invalid_id")
	ErrProductInactive   = errors.New("product_inactive")
	ErrInvalidTransition = errors.New("invalid_state_transition")
)
