package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is never deleted; archiving flips Status to inactive. Rating holds
// the write-through mean of the product's reviews and is 0 while no review
// exists.
type Product struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	Category    string            `json:"category" gorm:"type:text;not null;index:ix_products_category_status,priority:1"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	PriceCents  int64             `json:"price_cents" gorm:"not null;default:0"`
	Status      ProductStatus     `json:"status" gorm:"type:text;not null;default:active;index:ix_products_category_status,priority:2"`
	ViewCount   int64             `json:"view_count" gorm:"not null;default:0"`
	SaleCount   int64             `json:"sale_count" gorm:"not null;default:0"`
	Rating      float64           `json:"rating" gorm:"not null;default:0"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
