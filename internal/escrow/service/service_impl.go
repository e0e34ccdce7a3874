package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mercado/internal/clock"
	"github.com/smallbiznis/mercado/internal/escrow/domain"
	pkgdb "github.com/smallbiznis/mercado/pkg/db"
	"github.com/smallbiznis/mercado/pkg/keymutex"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
	locks *keymutex.KeyedMutex
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("escrow.service"),
		clock: p.Clock,
		repo:  p.Repo,
		locks: keymutex.New(),
	}
}

func (s *Service) Open(ctx context.Context, tx *gorm.DB, orderID, amountCents int64) (*domain.Response, error) {
	if amountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	conn := tx
	if conn == nil {
		conn = s.db
	}

	now := s.clock.Now()
	rec := &domain.Record{
		OrderID:         orderID,
		HeldAmountCents: amountCents,
		State:           domain.StateCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, conn, rec); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	resp := toResponse(rec)
	return &resp, nil
}

func (s *Service) Lock(ctx context.Context, orderID int64) (*domain.Response, error) {
	return s.transition(ctx, orderID, domain.StateLocked)
}

func (s *Service) Release(ctx context.Context, orderID int64) (*domain.Response, error) {
	return s.transition(ctx, orderID, domain.StateReleased)
}

func (s *Service) Refund(ctx context.Context, orderID int64) (*domain.Response, error) {
	return s.transition(ctx, orderID, domain.StateRefunded)
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Response, error) {
	rec, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(rec)
	return &resp, nil
}

// transition serializes all mutations per order id: the keyed mutex prevents
// two transitions from interleaving in-process, and the compare-and-set update
// rejects any state change that raced past the read.
func (s *Service) transition(ctx context.Context, orderID int64, next domain.State) (*domain.Response, error) {
	key := snowflake.ID(orderID).String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	rec, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	if !rec.CanTransition(next) {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	affected, err := s.repo.UpdateState(ctx, s.db, orderID, rec.State, next, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidTransition
	}

	s.log.Info("escrow transition",
		zap.Int64("order_id", orderID),
		zap.String("from", string(rec.State)),
		zap.String("to", string(next)),
	)

	rec.State = next
	rec.UpdatedAt = now
	resp := toResponse(rec)
	return &resp, nil
}

func toResponse(rec *domain.Record) domain.Response {
	return domain.Response{
		OrderID:         snowflake.ID(rec.OrderID).String(),
		HeldAmountCents: rec.HeldAmountCents,
		State:           rec.State,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
