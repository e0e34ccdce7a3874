package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/clock"
	orderdomain "github.com/smallbiznis/mercado/internal/order/domain"
	"github.com/smallbiznis/mercado/internal/recommendation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// cacheTTL is the explicit invalidation policy for cached snapshots: a stale
// snapshot lives at most this long.
const cacheTTL = 30 * time.Second

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Catalog catalogdomain.Service
	Orders  orderdomain.Service
	Redis   *redis.Client `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	catalog catalogdomain.Service
	orders  orderdomain.Service
	redis   *redis.Client
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("recommendation.service"),
		clock:   p.Clock,
		catalog: p.Catalog,
		orders:  p.Orders,
		redis:   p.Redis,
	}
}

func (s *Service) Recommend(ctx context.Context, userID, category string) (*domain.Snapshot, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}

	if cached := s.fromCache(ctx, userID, category); cached != nil {
		return cached, nil
	}

	products, err := s.catalog.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	orderedIDs, err := s.orders.ListProductIDsByBuyer(ctx, userID)
	if err != nil && err != orderdomain.ErrInvalidBuyer {
		return nil, err
	}
	excluded := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		excluded[snowflake.ID(id).String()] = struct{}{}
	}

	type candidate struct {
		id     int64
		rating float64
	}
	candidates := make([]candidate, 0, len(products))
	for _, p := range products {
		if _, ok := excluded[p.ID]; ok {
			continue
		}
		parsed, err := snowflake.ParseString(p.ID)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{id: parsed.Int64(), rating: p.Rating})
	}

	// Best rating first; equal ratings fall back to ascending id so a fixed
	// input set always produces the same ranking.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rating != candidates[j].rating {
			return candidates[i].rating > candidates[j].rating
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > domain.MaxResults {
		candidates = candidates[:domain.MaxResults]
	}

	productIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		productIDs = append(productIDs, snowflake.ID(c.id).String())
	}

	snap := &domain.Snapshot{
		UserID:      userID,
		Category:    category,
		ProductIDs:  productIDs,
		GeneratedAt: s.clock.Now(),
	}

	s.toCache(ctx, snap)
	return snap, nil
}

func (s *Service) fromCache(ctx context.Context, userID, category string) *domain.Snapshot {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, cacheKey(userID, category)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("recommendation cache read failed", zap.Error(err))
		}
		return nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

func (s *Service) toCache(ctx context.Context, snap *domain.Snapshot) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(snap.UserID, snap.Category), raw, cacheTTL).Err(); err != nil {
		s.log.Warn("recommendation cache write failed", zap.Error(err))
	}
}

func cacheKey(userID, category string) string {
	return "reco:" + userID + ":" + category
}
