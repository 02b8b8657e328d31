package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "careercoach:lookup:"

// CachedLookup stores lookup results in Redis. Cache errors fall through to
// the inner lookup; only successful, non-empty results are cached.
type CachedLookup struct {
	inner  ContentLookup
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedLookup wraps inner with a Redis cache.
func NewCachedLookup(inner ContentLookup, rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CachedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedLookup) Search(ctx context.Context, query string) ([]Candidate, error) {
	key := cacheKey(query)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Candidate
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding corrupt lookup cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("lookup cache read failed", zap.Error(err))
	}

	results, err := c.inner.Search(ctx, query)
	if err != nil || len(results) == 0 {
		return results, err
	}

	if b, jerr := json.Marshal(results); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("lookup cache write failed", zap.Error(serr))
		}
	}
	return results, nil
}

func cacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
