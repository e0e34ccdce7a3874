package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/mercado/internal/escrow/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID int64) (*domain.Record, error) {
	var rec domain.Record
	err := db.WithContext(ctx).Where("order_id = ?", orderID).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) UpdateState(ctx context.Context, db *gorm.DB, orderID int64, from, to domain.State, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE escrow_records SET state = ?, updated_at = ? WHERE order_id = ? AND state = ?`,
		to,
		at,
		orderID,
		from,
	)
	return res.RowsAffected, res.Error
}
