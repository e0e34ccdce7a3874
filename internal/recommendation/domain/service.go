package domain

import (
	"context"
	"errors"
	"time"
)

// Snapshot is fully derived and ephemeral: regenerated on demand, safe to
// discard and rebuild at any time.
type Snapshot struct {
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	ProductIDs  []string  `json:"product_ids"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Service interface {
	// Recommend ranks active products in the category the user has never
	// ordered, best rated first, capped at MaxResults.
	Recommend(ctx context.Context, userID, category string) (*Snapshot, error)
}

const MaxResults = 10

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidCategory = errors.New("invalid_category")
)
