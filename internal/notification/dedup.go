package notification

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper suppresses repeated publishes of the same logical event. Keys are
// claimed with SETNX so concurrent publishers race safely; the TTL bounds the
// suppression window.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	// local fallback when Redis is unavailable
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDeduper constructs a deduper. A nil client degrades to an in-process map,
// which suffices for a single instance.
func NewDeduper(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{client: client, ttl: ttl, logger: logger, seen: make(map[string]time.Time)}
}

// Claim returns true exactly once per key within the TTL window. When the
// claim cannot be evaluated the event is allowed through: a duplicate beats a
// silently lost notification.
func (d *Deduper) Claim(ctx context.Context, key string) bool {
	if d.client != nil {
		ok, err := d.client.SetNX(ctx, "notify:dedup:"+key, 1, d.ttl).Result()
		if err == nil {
			return ok
		}
		d.logger.Warn("dedup check failed, delivering anyway", zap.String("key", key), zap.Error(err))
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if expiry, ok := d.seen[key]; ok && now.Before(expiry) {
		return false
	}
	for k, expiry := range d.seen {
		if now.After(expiry) {
			delete(d.seen, k)
		}
	}
	d.seen[key] = now.Add(d.ttl)
	return true
}
