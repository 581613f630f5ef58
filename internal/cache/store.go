// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
)

// envelope wraps every cached value with its generation and expiry
// timestamps so staleness can be checked at read time even if the backend
// TTL drifted.
type envelope struct {
	Value       json.RawMessage `json:"value"`
	GeneratedAt time.Time       `json:"generated_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Store is a read-through cache over Redis. A nil client disables caching
// entirely; every backend failure is downgraded to a miss so the caller
// always falls through to the provider.
type Store struct {
	client *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log.With(map[string]interface{}{"component": "cache"}),
		now:    time.Now,
	}
}

// Enabled reports whether a backend is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Get loads the value stored under key into out. The boolean result is the
// hit indicator; it is false for absent keys, expired envelopes, disabled
// backends, and backend failures alike.
func (s *Store) Get(ctx context.Context, namespace, key string, out interface{}) bool {
	if !s.Enabled() {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
			metrics.CacheErrors.WithLabelValues(namespace, "get").Inc()
		}
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn("cache entry corrupt", map[string]interface{}{"key": key, "error": err.Error()})
		metrics.CacheErrors.WithLabelValues(namespace, "decode").Inc()
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}

	if s.now().After(env.ExpiresAt) {
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}

	if err := json.Unmarshal(env.Value, out); err != nil {
		metrics.CacheErrors.WithLabelValues(namespace, "decode").Inc()
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(namespace).Inc()
	return true
}

// Set stores value under key for ttl. Write failures are logged and
// swallowed; caching is best-effort and never blocks a response.
func (s *Store) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}

	inner, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value not serializable", map[string]interface{}{"key": key, "error": err.Error()})
		metrics.CacheErrors.WithLabelValues(namespace, "encode").Inc()
		return
	}

	now := s.now()
	raw, _ := json.Marshal(envelope{
		Value:       inner,
		GeneratedAt: now,
		ExpiresAt:   now.Add(ttl),
	})

	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		metrics.CacheErrors.WithLabelValues(namespace, "set").Inc()
	}
}

// GeneratedAt returns the generation timestamp of a live entry, for
// callers that surface content age. The boolean mirrors Get's hit logic.
func (s *Store) GeneratedAt(ctx context.Context, key string) (time.Time, bool) {
	if !s.Enabled() {
		return time.Time{}, false
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return time.Time{}, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, false
	}
	if s.now().After(env.ExpiresAt) {
		return time.Time{}, false
	}
	return env.GeneratedAt, true
}
