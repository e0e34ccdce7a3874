package repository

import (
	"context"

	"github.com/smallbiznis/mercado/internal/analytics/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CompletedSales(ctx context.Context, db *gorm.DB, productID int64) (int64, int64, error) {
	var row struct {
		TotalSales   int64
		RevenueCents int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_sales, COALESCE(SUM(amount_cents), 0) AS revenue_cents
		 FROM orders WHERE product_id = ? AND status = ?`,
		productID,
		"completed",
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.TotalSales, row.RevenueCents, nil
}

func (r *repo) ProductCounters(ctx context.Context, db *gorm.DB, productID int64) (*domain.ProductCounters, error) {
	var row struct {
		ID        int64
		ViewCount int64
		SaleCount int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, view_count, sale_count FROM products WHERE id = ?`,
		productID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &domain.ProductCounters{
		ViewCount: row.ViewCount,
		SaleCount: row.SaleCount,
	}, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, snapshot *domain.Snapshot) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(snapshot).Error
}

func (r *repo) FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := db.WithContext(ctx).Where("product_id = ?", productID).First(&snap).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}
