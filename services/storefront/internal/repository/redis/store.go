// Package redis stores storefront records in Redis so several server
// instances can share one catalog and cart.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

// DefaultNamespace prefixes every key written by the storefront.
const DefaultNamespace = "stride:"

// Store implements repository.RecordStore using Redis strings. Records never
// expire.
type Store struct {
	client    *redis.Client
	namespace string
}

// NewStore creates a new Redis-backed record store. An empty namespace falls
// back to DefaultNamespace.
func NewStore(client *redis.Client, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{
		client:    client,
		namespace: namespace,
	}
}

func (s *Store) key(k string) string {
	return s.namespace + k
}

// Get retrieves a record from Redis.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("record", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Put stores a record in Redis without expiry.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a record from Redis.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
