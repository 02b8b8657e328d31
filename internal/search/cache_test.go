package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLookup(results []Candidate, err error) (ContentLookup, *atomic.Int32) {
	var calls atomic.Int32
	return LookupFunc(func(context.Context, string) ([]Candidate, error) {
		calls.Add(1)
		return results, err
	}), &calls
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedLookup_HitsCacheOnSecondCall(t *testing.T) {
	mr, rdb := newRedis(t)
	want := []Candidate{{Title: "Deep Learning Specialization", URL: "https://www.coursera.org/specializations/deep-learning"}}
	inner, calls := countingLookup(want, nil)
	c := NewCachedLookup(inner, rdb, time.Hour, nil)
	ctx := context.Background()

	got, err := c.Search(ctx, "best online courses for  Deep Learning")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = c.Search(ctx, "best online courses for deep learning")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load(), "normalized query should hit the cache")

	assert.True(t, mr.Exists(cacheKey("best online courses for deep learning")))
	assert.Equal(t, time.Hour, mr.TTL(cacheKey("best online courses for deep learning")))
}

func TestCachedLookup_DoesNotCacheEmptyOrErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	inner, calls := countingLookup(nil, nil)
	c := NewCachedLookup(inner, rdb, time.Hour, nil)
	ctx := context.Background()

	_, _ = c.Search(ctx, "q")
	_, _ = c.Search(ctx, "q")
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, mr.Keys())

	failing, _ := countingLookup(nil, errors.New("blocked"))
	_, err := NewCachedLookup(failing, rdb, time.Hour, nil).Search(ctx, "q")
	assert.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCachedLookup_FallsThroughWhenRedisIsDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	want := []Candidate{{Title: "t", URL: "https://example.com"}}
	inner, calls := countingLookup(want, nil)
	got, err := NewCachedLookup(inner, rdb, time.Hour, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedLookup_CorruptEntryIsIgnored(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(cacheKey("q"), "{not json"))

	want := []Candidate{{Title: "t", URL: "https://example.com"}}
	inner, calls := countingLookup(want, nil)
	got, err := NewCachedLookup(inner, rdb, time.Hour, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load())
}
