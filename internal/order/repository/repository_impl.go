package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/mercado/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, from, to domain.Status, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		at,
		id,
		from,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) AppendEvent(ctx context.Context, db *gorm.DB, event *domain.OrderEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) EventsByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.OrderEvent, error) {
	var events []domain.OrderEvent
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ProductIDsByBuyer(ctx context.Context, db *gorm.DB, buyerID string) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Distinct("product_id").
		Where("buyer_id = ?", buyerID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
