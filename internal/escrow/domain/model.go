package domain

import "time"

type State string

const (
	StateCreated  State = "created"
	StateLocked   State = "locked"
	StateReleased State = "released"
	StateRefunded State = "refunded"
)

// Record holds funds for exactly one order; the order id is the primary key.
// released and refunded are terminal.
type Record struct {
	OrderID         int64     `json:"order_id" gorm:"column:order_id;primaryKey"`
	HeldAmountCents int64     `json:"held_amount_cents" gorm:"not null"`
	State           State     `json:"state" gorm:"type:text;not null;default:created"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Record) TableName() string { return "escrow_records" }

// CanTransition reports whether the fund-state machine permits moving from
// the record's current state to next.
func (r *Record) CanTransition(next State) bool {
	switch r.State {
	case StateCreated:
		return next == StateLocked || next == StateRefunded
	case StateLocked:
		return next == StateReleased || next == StateRefunded
	default:
		return false
	}
}
