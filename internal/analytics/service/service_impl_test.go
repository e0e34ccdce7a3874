package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/mercado/internal/analytics/domain"
	"github.com/smallbiznis/mercado/internal/analytics/repository"
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
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
	reviewrepository "github.com/smallbiznis/mercado/internal/review/repository"
	reviewservice "github.com/smallbiznis/mercado/internal/review/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	analytics domain.Service
	catalog   catalogdomain.Service
	orders    orderdomain.Service
	reviews   reviewdomain.Service
	clock     *clock.FakeClock
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
		&domain.Snapshot{},
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
	analyticsSvc := New(Params{
		DB: db, Log: log, Clock: fake,
		Repo:   repository.Provide(),
		Review: reviewSvc,
	})
	orderSvc := orderservice.New(orderservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo:      orderrepository.Provide(),
		Catalog:   catalogSvc,
		Escrow:    escrowSvc,
		Analytics: analyticsSvc,
	})

	return fixture{
		analytics: analyticsSvc,
		catalog:   catalogSvc,
		orders:    orderSvc,
		reviews:   reviewSvc,
		clock:     fake,
	}
}

func (f fixture) listProduct(t *testing.T) *catalogdomain.Response {
	t.Helper()
	resp, err := f.catalog.Create(context.Background(), catalogdomain.CreateRequest{
		Category:   "books",
		Name:       "Dune",
		PriceCents: 2500,
	})
	require.NoError(t, err)
	return resp
}

func (f fixture) completeOrder(t *testing.T, productID string, amountCents int64) {
	t.Helper()
	ctx := context.Background()
	order, err := f.orders.Create(ctx, orderdomain.CreateRequest{
		BuyerID:     "u1",
		ProductID:   productID,
		AmountCents: amountCents,
	})
	require.NoError(t, err)
	_, err = f.orders.AdvanceToProcessing(ctx, order.ID)
	require.NoError(t, err)
	_, err = f.orders.Complete(ctx, order.ID)
	require.NoError(t, err)
}

func mustParse(t *testing.T, id string) int64 {
	t.Helper()
	parsed, err := snowflake.ParseString(id)
	require.NoError(t, err)
	return parsed.Int64()
}

func TestRecompute_AggregatesCompletedOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, f.catalog.RecordView(ctx, product.ID))
	}
	f.completeOrder(t, product.ID, 2500)

	_, err := f.reviews.Submit(ctx, reviewdomain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 4})
	require.NoError(t, err)

	snap, err := f.analytics.Recompute(ctx, mustParse(t, product.ID))
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.TotalSales)
	assert.Equal(t, int64(2500), snap.RevenueCents)
	assert.InDelta(t, 4.0, snap.AverageRating, 1e-9)
	assert.InDelta(t, 0.25, snap.ConversionRate, 1e-9)
}

func TestRecompute_RefundedOrdersExcluded(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	f.completeOrder(t, product.ID, 2500)

	order, err := f.orders.Create(ctx, orderdomain.CreateRequest{BuyerID: "u2", ProductID: product.ID, AmountCents: 2500})
	require.NoError(t, err)
	_, err = f.orders.Refund(ctx, order.ID)
	require.NoError(t, err)

	snap, err := f.analytics.Recompute(ctx, mustParse(t, product.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.TotalSales)
	assert.Equal(t, int64(2500), snap.RevenueCents)
}

func TestRecompute_ZeroViewsMeansZeroConversion(t *testing.T) {
	f := setup(t)
	product := f.listProduct(t)

	snap, err := f.analytics.Recompute(context.Background(), mustParse(t, product.ID))
	require.NoError(t, err)
	assert.Zero(t, snap.ConversionRate)
	assert.Zero(t, snap.TotalSales)
}

func TestRecompute_UnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.analytics.Recompute(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGet_RecomputesLazilyWhenAbsent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	require.NoError(t, f.catalog.RecordView(ctx, product.ID))

	snap, err := f.analytics.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, snap.ProductID)
	assert.Zero(t, snap.TotalSales)
}

func TestGet_ReturnsStoredSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	// Complete writes a snapshot; a later read serves it without recompute.
	f.completeOrder(t, product.ID, 2500)

	snap, err := f.analytics.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.TotalSales)
	assert.Equal(t, int64(2500), snap.RevenueCents)
}

func TestGet_InvalidID(t *testing.T) {
	f := setup(t)

	_, err := f.analytics.Get(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
