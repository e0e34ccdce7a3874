package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, review *Review) error
	FindByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]Review, error)
	RatingsByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]int, error)
}
