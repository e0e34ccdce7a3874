package domain

import "time"

// Review is immutable once written; the product's aggregate rating is always
// refolded from the full review log, never patched incrementally.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ProductID  int64     `json:"product_id" gorm:"not null;index:ix_reviews_product"`
	ReviewerID string    `json:"reviewer_id" gorm:"type:text;not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Review) TableName() string { return "reviews" }

const (
	RatingMin = 1
	RatingMax = 5
)
