package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if req.PriceCents < 0 {
		return nil, domain.ErrInvalidPrice
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		Category:    category,
		Name:        name,
		Description: descriptionPtr,
		PriceCents:  req.PriceCents,
		Status:      domain.ProductStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.log.Info("product listed",
		zap.Int64("product_id", p.ID),
		zap.String("category", p.Category),
	)

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]domain.Response, error) {
	items, err := s.repo.Search(ctx, s.db, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	return s.toResponses(items), nil
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Response, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}

	items, err := s.repo.FindActiveByCategory(ctx, s.db, category)
	if err != nil {
		return nil, err
	}
	return s.toResponses(items), nil
}

func (s *Service) RecordView(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.IncrementViewCount(ctx, s.db, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.repo.UpdateStatus(ctx, s.db, productID, domain.ProductStatusInactive); err != nil {
		return nil, err
	}

	item.Status = domain.ProductStatusInactive
	item.UpdatedAt = s.clock.Now()
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) IncrementSaleCount(ctx context.Context, tx *gorm.DB, id int64) error {
	conn := tx
	if conn == nil {
		conn = s.db
	}

	affected, err := s.repo.IncrementSaleCount(ctx, conn, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) UpdateRating(ctx context.Context, id int64, rating float64) error {
	affected, err := s.repo.UpdateRating(ctx, s.db, id, rating)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) toResponses(items []domain.Product) []domain.Response {
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Status:      p.Status,
		ViewCount:   p.ViewCount,
		SaleCount:   p.SaleCount,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}

	return resp
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
