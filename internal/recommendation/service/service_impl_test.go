package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	analyticsdomain "github.com/smallbiznis/mercado/internal/analytics/domain"
	analyticsrepository "github.com/smallbiznis/mercado/internal/analytics/repository"
	analyticsservice "github.com/smallbiznis/mercado/internal/analytics/service"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/mercado/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/mercado/internal/catalog/service"
	"github.com/smallbiznis/mercado/internal/clock"
	escrowdomain "github.com/smallbiznis/mercado/internal/escrow/domain"
	escrowrepository "github.com/smallbiznis/mercado/internal/escrow/repository"
	escrowservice "github.com/smallbiznis/mercado/internal/escrow/service"
	orderdomain "github.com/smallbiznis/mercado/internal/order/domain"
	orderrepository "github.com/smallbiznis/mercado/internal/order/repository"
	orderservice "github.com/smallbiznis/mercado/internal/order/service"
	"github.com/smallbiznis/mercado/internal/recommendation/domain"
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
	reviewrepository "github.com/smallbiznis/mercado/internal/review/repository"
	reviewservice "github.com/smallbiznis/mercado/internal/review/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	reco    domain.Service
	catalog catalogdomain.Service
	orders  orderdomain.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&reviewdomain.Review{},
		&escrowdomain.Record{},
		&orderdomain.Order{},
		&orderdomain.OrderEvent{},
		&analyticsdomain.Snapshot{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: catalogrepository.Provide(),
	})
	escrowSvc := escrowservice.New(escrowservice.Params{
		DB: db, Log: log, Clock: fake,
		Repo: escrowrepository.Provide(),
	})
	reviewSvc := reviewservice.New(reviewservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo:    reviewrepository.Provide(),
		Catalog: catalogSvc,
	})
	analyticsSvc := analyticsservice.New(analyticsservice.Params{
		DB: db, Log: log, Clock: fake,
		Repo:   analyticsrepository.Provide(),
		Review: reviewSvc,
	})
	orderSvc := orderservice.New(orderservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo:      orderrepository.Provide(),
		Catalog:   catalogSvc,
		Escrow:    escrowSvc,
		Analytics: analyticsSvc,
	})
	recoSvc := New(Params{
		Log:     log,
		Clock:   fake,
		Catalog: catalogSvc,
		Orders:  orderSvc,
	})

	return fixture{reco: recoSvc, catalog: catalogSvc, orders: orderSvc}
}

func (f fixture) listProduct(t *testing.T, name string, rating float64) *catalogdomain.Response {
	t.Helper()
	ctx := context.Background()
	resp, err := f.catalog.Create(ctx, catalogdomain.CreateRequest{
		Category:   "books",
		Name:       name,
		PriceCents: 1000,
	})
	require.NoError(t, err)

	if rating > 0 {
		id, err := snowflake.ParseString(resp.ID)
		require.NoError(t, err)
		require.NoError(t, f.catalog.UpdateRating(ctx, id.Int64(), rating))
	}
	return resp
}

func TestRecommend_ExcludesAlreadyOrdered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owned := f.listProduct(t, "Dune", 4.8)
	fresh := f.listProduct(t, "Hyperion", 4.2)

	_, err := f.orders.Create(ctx, orderdomain.CreateRequest{
		BuyerID:     "u1",
		ProductID:   owned.ID,
		AmountCents: 1000,
	})
	require.NoError(t, err)

	snap, err := f.reco.Recommend(ctx, "u1", "books")
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, snap.ProductIDs)

	// Another user without orders still sees both.
	snap, err = f.reco.Recommend(ctx, "u2", "books")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{owned.ID, fresh.ID}, snap.ProductIDs)
}

func TestRecommend_RanksByRatingThenID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	low := f.listProduct(t, "Low", 2.0)
	tieFirst := f.listProduct(t, "TieA", 4.0)
	tieSecond := f.listProduct(t, "TieB", 4.0)
	top := f.listProduct(t, "Top", 4.9)

	snap, err := f.reco.Recommend(ctx, "u1", "books")
	require.NoError(t, err)

	assert.Equal(t, []string{top.ID, tieFirst.ID, tieSecond.ID, low.ID}, snap.ProductIDs)
}

func TestRecommend_CapsAtMaxResults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < domain.MaxResults+3; i++ {
		f.listProduct(t, fmt.Sprintf("Book %02d", i), float64(i%5)+0.1)
	}

	snap, err := f.reco.Recommend(ctx, "u1", "books")
	require.NoError(t, err)
	assert.Len(t, snap.ProductIDs, domain.MaxResults)
}

func TestRecommend_SkipsArchivedProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	active := f.listProduct(t, "Active", 3.0)
	archived := f.listProduct(t, "Archived", 5.0)

	_, err := f.catalog.Archive(ctx, archived.ID)
	require.NoError(t, err)

	snap, err := f.reco.Recommend(ctx, "u1", "books")
	require.NoError(t, err)
	assert.Equal(t, []string{active.ID}, snap.ProductIDs)
}

func TestRecommend_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.reco.Recommend(ctx, " ", "books")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = f.reco.Recommend(ctx, "u1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestRecommend_EmptyCategory(t *testing.T) {
	f := setup(t)

	snap, err := f.reco.Recommend(context.Background(), "u1", "garden")
	require.NoError(t, err)
	assert.Empty(t, snap.ProductIDs)
}
