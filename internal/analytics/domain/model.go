package domain

import "time"

// Snapshot is a derived read model per product, recomputed idempotently after
// every completed order (and lazily on read). It is never authoritative.
type Snapshot struct {
	ProductID      int64     `json:"product_id" gorm:"column:product_id;primaryKey"`
	TotalSales     int64     `json:"total_sales" gorm:"not null;default:0"`
	RevenueCents   int64     `json:"revenue_cents" gorm:"not null;default:0"`
	AverageRating  float64   `json:"average_rating" gorm:"not null;default:0"`
	ConversionRate float64   `json:"conversion_rate" gorm:"not null;default:0"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Snapshot) TableName() string { return "analytics_snapshots" }
