package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	// UpdateStatus applies from→to as a compare-and-set; zero rows means the
	// order left the expected status in the meantime.
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, from, to Status, at time.Time) (int64, error)
	AppendEvent(ctx context.Context, db *gorm.DB, event *OrderEvent) error
	EventsByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]OrderEvent, error)
	ProductIDsByBuyer(ctx context.Context, db *gorm.DB, buyerID string) ([]int64, error)
}
