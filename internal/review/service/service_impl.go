package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/clock"
	"github.com/smallbiznis/mercado/internal/review/domain"
	"github.com/smallbiznis/mercado/pkg/keymutex"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog catalogdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog catalogdomain.Service
	locks   *keymutex.KeyedMutex
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("review.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
		locks:   keymutex.New(),
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	reviewerID := strings.TrimSpace(req.ReviewerID)
	if reviewerID == "" {
		return nil, domain.ErrInvalidReviewer
	}

	if req.Rating < domain.RatingMin || req.Rating > domain.RatingMax {
		return nil, domain.ErrInvalidRating
	}

	// Surfaces the catalog's not_found for unknown products.
	if _, err := s.catalog.Get(ctx, req.ProductID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:         s.genID.Generate().Int64(),
		ProductID:  productID.Int64(),
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		CreatedAt:  s.clock.Now(),
	}

	// The append-refold-writethrough sequence for one product must not
	// interleave with another submit for the same product, or the catalog
	// could end up with a stale mean.
	key := productID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.repo.Create(ctx, s.db, review); err != nil {
		return nil, err
	}

	rating, err := s.CurrentRating(ctx, productID.Int64())
	if err != nil {
		return nil, err
	}

	if err := s.catalog.UpdateRating(ctx, productID.Int64(), rating); err != nil {
		return nil, err
	}

	s.log.Info("review submitted",
		zap.Int64("product_id", productID.Int64()),
		zap.Int("rating", req.Rating),
		zap.Float64("aggregate", rating),
	)

	resp := toResponse(review)
	return &resp, nil
}

func (s *Service) CurrentRating(ctx context.Context, productID int64) (float64, error) {
	ratings, err := s.repo.RatingsByProductID(ctx, s.db, productID)
	if err != nil {
		return 0, err
	}
	if len(ratings) == 0 {
		return 0, nil
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Response, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.FindByProductID(ctx, s.db, parsed.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func toResponse(r *domain.Review) domain.Response {
	return domain.Response{
		ID:         snowflake.ID(r.ID).String(),
		ProductID:  snowflake.ID(r.ProductID).String(),
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt,
	}
}
