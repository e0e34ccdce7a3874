package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// Open creates the custody record for an order. It is called exactly once,
	// inside the same transaction that creates the order; a second call for
	// the same order id fails with ErrAlreadyExists. A nil tx uses the
	// service's own connection.
	Open(ctx context.Context, tx *gorm.DB, orderID, amountCents int64) (*Response, error)
	Lock(ctx context.Context, orderID int64) (*Response, error)
	Release(ctx context.Context, orderID int64) (*Response, error)
	Refund(ctx context.Context, orderID int64) (*Response, error)
	Get(ctx context.Context, orderID int64) (*Response, error)
}

type Response struct {
	OrderID         string    `json:"order_id"`
	HeldAmountCents int64     `json:"held_amount_cents"`
	State           State     `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("escrow_not_found")
	ErrAlreadyExists     = errors.New("escrow_already_exists")
	ErrInvalidTransition = errors.New("invalid_state_transition")
	ErrInvalidAmount     = errors.New("invalid_amount")
)
