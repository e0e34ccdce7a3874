package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mercado/internal/analytics/domain"
	"github.com/smallbiznis/mercado/internal/clock"
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Repo   domain.Repository
	Review reviewdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	repo   domain.Repository
	review reviewdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("analytics.service"),
		clock:  p.Clock,
		repo:   p.Repo,
		review: p.Review,
	}
}

func (s *Service) Recompute(ctx context.Context, productID int64) (*domain.Response, error) {
	counters, err := s.repo.ProductCounters(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if counters == nil {
		return nil, domain.ErrProductNotFound
	}

	totalSales, revenueCents, err := s.repo.CompletedSales(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	rating, err := s.review.CurrentRating(ctx, productID)
	if err != nil {
		return nil, err
	}

	conversionRate := 0.0
	if counters.ViewCount > 0 {
		conversionRate = float64(counters.SaleCount) / float64(counters.ViewCount)
	}

	snap := &domain.Snapshot{
		ProductID:      productID,
		TotalSales:     totalSales,
		RevenueCents:   revenueCents,
		AverageRating:  rating,
		ConversionRate: conversionRate,
		UpdatedAt:      s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, snap); err != nil {
		return nil, err
	}

	s.log.Debug("analytics snapshot recomputed",
		zap.Int64("product_id", productID),
		zap.Int64("total_sales", totalSales),
	)

	resp := toResponse(snap)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*domain.Response, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	snap, err := s.repo.FindByProductID(ctx, s.db, parsed.Int64())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return s.Recompute(ctx, parsed.Int64())
	}

	resp := toResponse(snap)
	return &resp, nil
}

func toResponse(snap *domain.Snapshot) domain.Response {
	return domain.Response{
		ProductID:      snowflake.ID(snap.ProductID).String(),
		TotalSales:     snap.TotalSales,
		RevenueCents:   snap.RevenueCents,
		AverageRating:  snap.AverageRating,
		ConversionRate: snap.ConversionRate,
		UpdatedAt:      snap.UpdatedAt,
	}
}
