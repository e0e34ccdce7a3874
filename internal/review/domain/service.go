package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Response, error)
	// CurrentRating folds over all reviews for the product. No reviews yields 0.
	CurrentRating(ctx context.Context, productID int64) (float64, error)
	ListByProduct(ctx context.Context, productID string) ([]Response, error)
}

type SubmitRequest struct {
	ProductID  string `json:"product_id"`
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
}

type Response struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

var (
	ErrInvalidRating   = errors.New("invalid_rating")
	ErrInvalidReviewer = errors.New("invalid_reviewer")
	ErrInvalidID       = errors.New("invalid_id")
)
