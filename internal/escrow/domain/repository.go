package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *Record) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID int64) (*Record, error)
	// UpdateState applies from→to as a compare-and-set; the returned count is
	// zero when the record was not in the expected state.
	UpdateState(ctx context.Context, db *gorm.DB, orderID int64, from, to State, at time.Time) (int64, error)
}
