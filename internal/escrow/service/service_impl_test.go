package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/mercado/internal/clock"
	"github.com/smallbiznis/mercado/internal/escrow/domain"
	"github.com/smallbiznis/mercado/internal/escrow/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Record{}))

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestOpen_CreatesRecord(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	rec, err := svc.Open(ctx, nil, 100, 2500)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, rec.State)
	assert.Equal(t, int64(2500), rec.HeldAmountCents)
}

func TestOpen_DuplicateFails(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, nil, 100, 2500)
	require.NoError(t, err)

	_, err = svc.Open(ctx, nil, 100, 2500)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestOpen_InvalidAmount(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Open(context.Background(), nil, 100, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLock_Release_HappyPath(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, nil, 100, 2500)
	require.NoError(t, err)

	rec, err := svc.Lock(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StateLocked, rec.State)

	rec, err = svc.Release(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReleased, rec.State)
}

func TestRefund_FromCreatedAndLocked(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	// created → refunded covers cancellation before processing.
	_, err := svc.Open(ctx, nil, 1, 1000)
	require.NoError(t, err)
	rec, err := svc.Refund(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRefunded, rec.State)

	_, err = svc.Open(ctx, nil, 2, 1000)
	require.NoError(t, err)
	_, err = svc.Lock(ctx, 2)
	require.NoError(t, err)
	rec, err = svc.Refund(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRefunded, rec.State)
}

func TestTransitions_Illegal(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, nil, 100, 2500)
	require.NoError(t, err)

	// release requires locked
	_, err = svc.Release(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Lock(ctx, 100)
	require.NoError(t, err)

	// lock is not re-entrant
	_, err = svc.Lock(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Release(ctx, 100)
	require.NoError(t, err)

	// released is terminal
	_, err = svc.Refund(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Lock(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Release(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRefunded_IsTerminal(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, nil, 100, 2500)
	require.NoError(t, err)
	_, err = svc.Refund(ctx, 100)
	require.NoError(t, err)

	_, err = svc.Lock(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Release(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Refund(ctx, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_UnknownOrder(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Lock(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
