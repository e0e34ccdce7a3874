package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/mercado/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Search matches a case-insensitive substring over name and description of
// active products. Ordered by id so a fixed input set always yields the same
// sequence.
func (r *repo) Search(ctx context.Context, db *gorm.DB, query string) ([]domain.Product, error) {
	var items []domain.Product
	pattern := "%" + strings.ToLower(query) + "%"
	err := db.WithContext(ctx).
		Where("status = ?", domain.ProductStatusActive).
		Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", pattern, pattern).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindActiveByCategory(ctx context.Context, db *gorm.DB, category string) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("category = ? AND status = ?", category, domain.ProductStatusActive).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementViewCount(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET view_count = view_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) IncrementSaleCount(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET sale_count = sale_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) UpdateRating(ctx context.Context, db *gorm.DB, id int64, rating float64) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		rating,
		id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status domain.ProductStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}
