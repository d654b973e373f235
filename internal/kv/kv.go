// Package kv provides a thin, best-effort wrapper around a TTL-capable
// key-value store backing runtime overrides, per-call sessions, and the
// keyed order record.
package kv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/circuitbreaker"
)

// Getter is the subset of Store used by read-mostly components.
type Getter interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
}

// Setter is the subset of Store used by components that also write.
type Setter interface {
	Getter
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

// HashSetter extends Setter with hash-field writes, used by internal/order
// to maintain the orders:index hash.
type HashSetter interface {
	Setter
	HSet(ctx context.Context, key, field string, value interface{})
}

// Store wraps a Redis client with JSON marshal/unmarshal and store-failure
// semantics matching spec.md §7: reads are best-effort (a miss or transport
// error looks like "absent" to the caller), writes surface errors so an
// admin caller can be told the write failed.
type Store struct {
	client  *redis.Client
	logger  *zap.Logger
	breaker *circuitbreaker.CircuitBreaker
}

// New creates a Store from a Redis connection URL, e.g. "redis://host:6379/0".
// Writes are guarded by a circuit breaker so a degraded Redis doesn't stall
// every admin/order write behind the full client timeout.
func New(url string, logger *zap.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Store{
		client:  redis.NewClient(opts),
		logger:  logger,
		breaker: circuitbreaker.New("kv-write", circuitbreaker.DefaultConfig(), logger),
	}, nil
}

// Ping checks store reachability, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get unmarshals the value at key into dest. It returns (false, nil) on a
// cache miss or any transport/decode error — callers treat "not found" and
// "store unavailable" identically, per spec.md §7.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		s.logger.Warn("kv get failed", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		s.logger.Warn("kv decode failed", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Set marshals value and writes it with the given expiry. Errors are
// returned to the caller — admin writes (e.g. Overrides) must know if the
// write failed.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, key, data, ttl).Err()
	})
}

// Delete removes one or more keys. Best-effort: errors are logged, not
// returned, matching the store's overall best-effort write posture for
// non-admin paths.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("kv delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// HSet writes a single field into a hash, used for the orders:index hash.
// Best-effort: failures are logged only.
func (s *Store) HSet(ctx context.Context, key, field string, value interface{}) {
	if err := s.client.HSet(ctx, key, field, value).Err(); err != nil {
		s.logger.Warn("kv hset failed", zap.String("key", key), zap.String("field", field), zap.Error(err))
	}
}
