package domain

import (
	"context"

	"gorm.io/gorm"
)

// ProductCounters is the slice of catalog state the rollup needs.
type ProductCounters struct {
	ViewCount int64
	SaleCount int64
}

type Repository interface {
	// CompletedSales aggregates count and revenue over completed orders.
	CompletedSales(ctx context.Context, db *gorm.DB, productID int64) (totalSales, revenueCents int64, err error)
	ProductCounters(ctx context.Context, db *gorm.DB, productID int64) (*ProductCounters, error)
	Upsert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*Snapshot, error)
}
