package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/pkg/database"
	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

func setupMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestStore_Get_Success(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordSQL)).
		WithArgs("stride_cart_v1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte(`[]`)))

	got, err := store.Get(context.Background(), "stride_cart_v1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordSQL)).
		WithArgs("stride_cart_v1").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "stride_cart_v1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_QueryError(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordSQL)).
		WithArgs("stride_products_v1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Get(context.Background(), "stride_products_v1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "get record stride_products_v1")
}

// ---------------------------------------------------------------------------
// Put / Delete
// ---------------------------------------------------------------------------

func TestStore_Put_Upserts(t *testing.T) {
	store, mock := setupMockStore(t)
	data := []byte(`[{"id":"p1","qty":1,"size":"-"}]`)

	mock.ExpectExec(regexp.QuoteMeta(upsertRecordSQL)).
		WithArgs("stride_cart_v1", data).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Put(context.Background(), "stride_cart_v1", data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Put_Error(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertRecordSQL)).
		WithArgs("stride_cart_v1", []byte("[]")).
		WillReturnError(errors.New("disk full"))

	err := store.Put(context.Background(), "stride_cart_v1", []byte("[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStore_Delete(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteRecordSQL)).
		WithArgs("stride_cart_v1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, store.Delete(context.Background(), "stride_cart_v1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Ping(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectPing()

	require.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
