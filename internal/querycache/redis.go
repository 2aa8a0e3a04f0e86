package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"saludhogar/internal/platform/logger"
)

// RedisStore comparte la cache entre réplicas del servicio. Si Redis falla y
// DisableOnError está activo, pasa a comportarse como cache vacía.
type RedisStore struct {
	client *redis.Client
	log    logger.Logger

	DisableOnError bool

	mu       sync.RWMutex
	disabled bool
}

// NewRedisStore conecta con rawURL (redis://...). Si el ping falla devuelve
// un store deshabilitado, no un error: la cache es opcional.
func NewRedisStore(ctx context.Context, rawURL string, log logger.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("querycache: redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	s := NewRedisStoreFromClient(redis.NewClient(opts), log)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		s.log.Warn("redis unavailable, running without shared cache", map[string]any{"error": err})
		s.disable()
		return s, nil
	}

	s.log.Info("redis query cache initialized", map[string]any{"addr": opts.Addr})
	return s, nil
}

func NewRedisStoreFromClient(client *redis.Client, log logger.Logger) *RedisStore {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStore{
		client:         client,
		log:            log.With(map[string]any{"component": "querycache"}),
		DisableOnError: true,
		disabled:       client == nil,
	}
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.disabled && s.client != nil
}

func (s *RedisStore) disable() {
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
}

func (s *RedisStore) handleError(err error, op string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	s.log.Debug("cache operation failed", map[string]any{"operation": op, "error": err})
	if s.DisableOnError {
		s.disable()
		s.log.Warn("disabling cache due to redis error", nil)
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !s.IsAvailable() {
		return nil, false, nil
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		s.handleError(err, "get")
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.IsAvailable() {
		return nil
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.handleError(err, "set")
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if !s.IsAvailable() || len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.handleError(err, "delete")
		return err
	}
	return nil
}

// DeletePrefix usa SCAN (no KEYS) para no bloquear Redis.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	if !s.IsAvailable() {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			s.handleError(err, "scan")
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				s.handleError(err, "delete_batch")
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
