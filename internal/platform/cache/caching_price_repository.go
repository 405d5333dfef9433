// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/prices/usecase"
)

// CachingPriceRepository decorates a PriceReader with Redis caching.
// Entries are dropped wholesale after each promotion through InvalidateAll.
type CachingPriceRepository struct {
	inner     usecase.PriceReader
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time

	// refresh, when set, caps entry lifetime at the next daily refresh time.
	refresh *dailyClock
}

type dailyClock struct {
	hour, minute int
	loc          *time.Location
}

var _ usecase.PriceReader = (*CachingPriceRepository)(nil)

// NewCachingPriceRepository decorates a PriceReader with Redis caching.
// If ttl is 0, it defaults to 1 hour. If namespace is empty, it uses "prices".
func NewCachingPriceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PriceReader, namespace string) *CachingPriceRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// WithDailyRefresh caps every entry's TTL at the next hour:minute in loc, typically the
// scheduled maintenance time.
func (c *CachingPriceRepository) WithDailyRefresh(hour, minute int, loc *time.Location) *CachingPriceRepository {
	c.refresh = &dailyClock{hour: hour, minute: minute, loc: loc}
	return c
}

// FindByTicker retrieves bars, checking cache first then falling back to the database.
func (c *CachingPriceRepository) FindByTicker(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByTicker(ctx, ticker, limit)
	}

	key := c.cacheKey(ticker, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.PriceBar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByTicker(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.entryTTL()).Err()
	}
	return out, nil
}

// InvalidateAll deletes every key of this namespace.
func (c *CachingPriceRepository) InvalidateAll(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

func (c *CachingPriceRepository) entryTTL() time.Duration {
	if c.refresh == nil {
		return c.ttl
	}
	return min(c.ttl, TimeUntilNext(c.now(), c.refresh.hour, c.refresh.minute, c.refresh.loc))
}

// cacheKey generates a cache key for a specific query.
func (c *CachingPriceRepository) cacheKey(ticker string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", c.namespace, safe(strings.ToUpper(ticker)), limit)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPriceRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
