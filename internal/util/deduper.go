package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper suppresses duplicate processing of queue redeliveries.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce tries to acquire a dedup lock for a handler + history id.
// Returns true on first processing, false on a duplicate. If redis is
// unavailable, processing is allowed rather than blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, historyID int) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, historyID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.Int("history_id", historyID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated delivery",
			zap.String("handler", handler),
			zap.Int("history_id", historyID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}
