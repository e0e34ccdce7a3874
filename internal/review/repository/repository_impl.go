package repository

import (
	"context"

	"github.com/smallbiznis/mercado/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Review, error) {
	var items []domain.Review
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) RatingsByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]int, error) {
	var ratings []int
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
