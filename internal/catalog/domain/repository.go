package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	Search(ctx context.Context, db *gorm.DB, query string) ([]Product, error)
	FindActiveByCategory(ctx context.Context, db *gorm.DB, category string) ([]Product, error)
	IncrementViewCount(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	IncrementSaleCount(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	UpdateRating(ctx context.Context, db *gorm.DB, id int64, rating float64) (int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status ProductStatus) error
}
