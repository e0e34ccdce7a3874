package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/mercado/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/mercado/internal/catalog/service"
	"github.com/smallbiznis/mercado/internal/clock"
	"github.com/smallbiznis/mercado/internal/review/domain"
	"github.com/smallbiznis/mercado/internal/review/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	reviews domain.Service
	catalog catalogdomain.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&catalogdomain.Product{}, &domain.Review{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  catalogrepository.Provide(),
	})

	reviewSvc := New(Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Clock:   fake,
		Repo:    repository.Provide(),
		Catalog: catalogSvc,
	})

	return fixture{reviews: reviewSvc, catalog: catalogSvc}
}

func (f fixture) listProduct(t *testing.T) *catalogdomain.Response {
	t.Helper()
	resp, err := f.catalog.Create(context.Background(), catalogdomain.CreateRequest{
		Category:   "books",
		Name:       "Dune",
		PriceCents: 1000,
	})
	require.NoError(t, err)
	return resp
}

func TestSubmit_MeanOfSubmittedRatings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	_, err := f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 4})
	require.NoError(t, err)
	_, err = f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u3", Rating: 2})
	require.NoError(t, err)

	id, err := snowflake.ParseString(product.ID)
	require.NoError(t, err)

	rating, err := f.reviews.CurrentRating(ctx, id.Int64())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, rating, 1e-9)
}

func TestSubmit_WritesThroughToCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	_, err := f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 5})
	require.NoError(t, err)
	_, err = f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u3", Rating: 4})
	require.NoError(t, err)

	got, err := f.catalog.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.Rating, 1e-9)
}

func TestSubmit_RatingBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	_, err := f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestSubmit_UnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.reviews.Submit(context.Background(), domain.SubmitRequest{
		ProductID:  "123456789",
		ReviewerID: "u2",
		Rating:     4,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}

func TestSubmit_EmptyReviewer(t *testing.T) {
	f := setup(t)
	product := f.listProduct(t)

	_, err := f.reviews.Submit(context.Background(), domain.SubmitRequest{
		ProductID:  product.ID,
		ReviewerID: "  ",
		Rating:     4,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReviewer)
}

func TestCurrentRating_EmptySetIsZero(t *testing.T) {
	f := setup(t)
	product := f.listProduct(t)

	id, err := snowflake.ParseString(product.ID)
	require.NoError(t, err)

	rating, err := f.reviews.CurrentRating(context.Background(), id.Int64())
	require.NoError(t, err)
	assert.Zero(t, rating)
}

func TestListByProduct_ReturnsSubmittedReviews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	product := f.listProduct(t)

	_, err := f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u2", Rating: 4})
	require.NoError(t, err)
	_, err = f.reviews.Submit(ctx, domain.SubmitRequest{ProductID: product.ID, ReviewerID: "u3", Rating: 2})
	require.NoError(t, err)

	items, err := f.reviews.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "u2", items[0].ReviewerID)
	assert.Equal(t, "u3", items[1].ReviewerID)
}
