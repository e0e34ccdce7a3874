package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRefunded   Status = "refunded"
)

// Order is immutable once it reaches a terminal status (completed, refunded).
type Order struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	BuyerID     string    `json:"buyer_id" gorm:"type:text;not null;index:ix_orders_buyer"`
	ProductID   int64     `json:"product_id" gorm:"not null;index:ix_orders_product_status,priority:1"`
	AmountCents int64     `json:"amount_cents" gorm:"not null"`
	Status      Status    `json:"status" gorm:"type:text;not null;default:pending;index:ix_orders_product_status,priority:2"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// OrderEvent is one entry of the append-only status timeline.
type OrderEvent struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OrderID    int64     `json:"order_id" gorm:"not null;index:ix_order_events_order,priority:1"`
	Status     Status    `json:"status" gorm:"type:text;not null"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:ix_order_events_order,priority:2"`
}

func (OrderEvent) TableName() string { return "order_events" }

func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusRefunded
}
