package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(name string) Config {
	cfg := DefaultConfig(name)
	cfg.MinRequests = 2
	cfg.Timeout = time.Hour
	return cfg
}

func TestStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), testConfig("passthrough"), newTestLogger())

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	require.NoError(t, s.Delete(ctx, "k"))
	assert.Equal(t, gobreaker.StateClosed, s.State())
}

func TestStore_NotFoundDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), testConfig("notfound"), newTestLogger())

	for i := 0; i < 10; i++ {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, s.State())
}

func TestStore_TripsOnWriteFailures(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := New(backend, testConfig("trips"), newTestLogger())

	down := errors.New("connection refused")
	backend.SetWriteError(down)

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), down)
	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), down)
	assert.Equal(t, gobreaker.StateOpen, s.State())

	// Open breaker rejects without touching the backend.
	backend.SetWriteError(nil)
	err := s.Put(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 0, backend.Puts())

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)

	assert.ErrorIs(t, s.Ping(ctx), apperrors.ErrServiceUnavail)
}

func TestStore_PingDelegates(t *testing.T) {
	s := New(memory.New(), testConfig("ping"), newTestLogger())
	assert.NoError(t, s.Ping(context.Background()))
}
