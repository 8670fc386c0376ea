// Package postgres stores storefront records as rows of a single key-value
// table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/EcommerceGo/pkg/database"
	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

const (
	selectRecordSQL = `SELECT data FROM storefront_records WHERE key = $1`
	upsertRecordSQL = `INSERT INTO storefront_records (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	deleteRecordSQL = `DELETE FROM storefront_records WHERE key = $1`
)

// Store implements repository.RecordStore using PostgreSQL.
type Store struct {
	db database.DBTX
}

// NewStore creates a new PostgreSQL-backed record store.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Get retrieves a record by key.
func (s *Store) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "GetRecord", selectRecordSQL)
	defer func() { end(err) }()

	if err = s.db.QueryRow(ctx, selectRecordSQL, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("record", key)
		}
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	return data, nil
}

// Put inserts or replaces the record under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "PutRecord", upsertRecordSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, upsertRecordSQL, key, data); err != nil {
		return fmt.Errorf("put record %s: %w", key, err)
	}
	return nil
}

// Delete removes the record under key.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteRecord", deleteRecordSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, deleteRecordSQL, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
