package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/mercado/internal/analytics/domain"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/clock"
	escrowdomain "github.com/smallbiznis/mercado/internal/escrow/domain"
	"github.com/smallbiznis/mercado/internal/order/domain"
	"github.com/smallbiznis/mercado/pkg/keymutex"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Catalog   catalogdomain.Service
	Escrow    escrowdomain.Service
	Analytics analyticsdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	catalog   catalogdomain.Service
	escrow    escrowdomain.Service
	analytics analyticsdomain.Service
	locks     *keymutex.KeyedMutex
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		catalog:   p.Catalog,
		escrow:    p.Escrow,
		analytics: p.Analytics,
		locks:     keymutex.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	buyerID := strings.TrimSpace(req.BuyerID)
	if buyerID == "" {
		return nil, domain.ErrInvalidBuyer
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	if req.AmountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	product, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalogdomain.ProductStatusActive {
		return nil, domain.ErrProductInactive
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:          s.genID.Generate().Int64(),
		BuyerID:     buyerID,
		ProductID:   productID.Int64(),
		AmountCents: req.AmountCents,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Order, first timeline entry and escrow record are one atomic step.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.AppendEvent(ctx, tx, s.newEvent(order.ID, domain.StatusPending, now)); err != nil {
			return err
		}
		if _, err := s.escrow.Open(ctx, tx, order.ID, order.AmountCents); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", order.ProductID),
		zap.Int64("amount_cents", order.AmountCents),
	)

	return s.toResponse(ctx, order)
}

func (s *Service) AdvanceToProcessing(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	key := snowflake.ID(id).String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	switch order.Status {
	case domain.StatusProcessing, domain.StatusCompleted:
		// Retried request; the transition already happened.
		return s.toResponse(ctx, order)
	case domain.StatusRefunded:
		return nil, domain.ErrInvalidTransition
	}

	// A retry after a partial earlier attempt may find the escrow already
	// locked; only then is skipping the lock call legal.
	held, err := s.escrow.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if held.State == escrowdomain.StateCreated {
		if _, err := s.escrow.Lock(ctx, id); err != nil {
			return nil, err
		}
	} else if held.State != escrowdomain.StateLocked {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateStatus(ctx, tx, id, domain.StatusPending, domain.StatusProcessing, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrInvalidTransition
		}
		if err := s.repo.AppendEvent(ctx, tx, s.newEvent(id, domain.StatusProcessing, now)); err != nil {
			return err
		}
		// Exactly once per order: this runs only on the pending→processing
		// edge, which the status compare-and-set above guarantees.
		return s.catalog.IncrementSaleCount(ctx, tx, order.ProductID)
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.StatusProcessing
	order.UpdatedAt = now

	s.log.Info("order processing", zap.Int64("order_id", id))
	return s.toResponse(ctx, order)
}

func (s *Service) Complete(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	key := snowflake.ID(id).String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.StatusProcessing {
		return nil, domain.ErrInvalidTransition
	}

	if _, err := s.escrow.Release(ctx, id); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateStatus(ctx, tx, id, domain.StatusProcessing, domain.StatusCompleted, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrInvalidTransition
		}
		return s.repo.AppendEvent(ctx, tx, s.newEvent(id, domain.StatusCompleted, now))
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.StatusCompleted
	order.UpdatedAt = now

	// The sales rollup is a derived read model; a failed recompute is
	// recovered by the next lazy read and must not unwind the completion.
	if _, err := s.analytics.Recompute(ctx, order.ProductID); err != nil {
		s.log.Warn("analytics recompute failed",
			zap.Int64("product_id", order.ProductID),
			zap.Error(err),
		)
	}

	s.log.Info("order completed", zap.Int64("order_id", id))
	return s.toResponse(ctx, order)
}

func (s *Service) Refund(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	key := snowflake.ID(id).String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.StatusPending && order.Status != domain.StatusProcessing {
		return nil, domain.ErrInvalidTransition
	}

	if _, err := s.escrow.Refund(ctx, id); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	from := order.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateStatus(ctx, tx, id, from, domain.StatusRefunded, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrInvalidTransition
		}
		return s.repo.AppendEvent(ctx, tx, s.newEvent(id, domain.StatusRefunded, now))
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.StatusRefunded
	order.UpdatedAt = now

	s.log.Info("order refunded", zap.Int64("order_id", id), zap.String("from", string(from)))
	return s.toResponse(ctx, order)
}

func (s *Service) Get(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	return s.toResponse(ctx, order)
}

func (s *Service) ListProductIDsByBuyer(ctx context.Context, buyerID string) ([]int64, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return nil, domain.ErrInvalidBuyer
	}
	return s.repo.ProductIDsByBuyer(ctx, s.db, buyerID)
}

func (s *Service) newEvent(orderID int64, status domain.Status, at time.Time) *domain.OrderEvent {
	return &domain.OrderEvent{
		ID:         s.genID.Generate().Int64(),
		OrderID:    orderID,
		Status:     status,
		OccurredAt: at,
	}
}

func (s *Service) toResponse(ctx context.Context, o *domain.Order) (*domain.Response, error) {
	events, err := s.repo.EventsByOrderID(ctx, s.db, o.ID)
	if err != nil {
		return nil, err
	}

	timeline := make([]domain.TimelineEntry, 0, len(events))
	for _, ev := range events {
		timeline = append(timeline, domain.TimelineEntry{
			Status:     ev.Status,
			OccurredAt: ev.OccurredAt,
		})
	}

	return &domain.Response{
		ID:          snowflake.ID(o.ID).String(),
		BuyerID:     o.BuyerID,
		ProductID:   snowflake.ID(o.ProductID).String(),
		AmountCents: o.AmountCents,
		Status:      o.Status,
		Timeline:    timeline,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}, nil
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}
